package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/lazypower/lifeclock/internal/store"
	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and storage information",
	Long:  "Print the build version and whether choices are persisted, with the database schema version.",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "lifeclock %s (commit: %s, built: %s)\n", Version, commit(), BuildDate)
	fmt.Fprintf(out, "storage: %s\n", storageState())
	return nil
}

// storageState opens the configured database and reports its path and schema
// version, or why choices would only be kept in memory.
func storageState() string {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Sprintf("unknown (load config: %v)", err)
	}
	path, err := resolveDBPath(cfg)
	if err != nil {
		return fmt.Sprintf("memory only (%v)", err)
	}
	db, err := store.Open(path)
	if err != nil {
		return fmt.Sprintf("memory only (%v)", err)
	}
	defer db.Close()

	v, err := db.SchemaVersion()
	if err != nil {
		return fmt.Sprintf("memory only (%v)", err)
	}
	return fmt.Sprintf("%s (schema v%d)", path, v)
}

// commit falls back to the VCS revision recorded by the Go toolchain.
func commit() string {
	if Commit != "unknown" {
		return Commit
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Commit
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			return s.Value[:12]
		}
	}
	return Commit
}

// VersionString is the version reported by the server's health endpoint.
func VersionString() string {
	return fmt.Sprintf("%s (%s)", Version, commit())
}
