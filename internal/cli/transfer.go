package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lazypower/lifeclock/internal/client"
	"github.com/lazypower/lifeclock/internal/transfer"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	importFormat string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "Export format: json or csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "Import format: json or csv (default from file extension)")
}

// --- export command ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the choice log as JSON or CSV",
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := transfer.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	choices := sess.engine.Choices()
	if format == transfer.FormatCSV {
		err = transfer.ExportCSV(w, choices)
	} else {
		err = transfer.ExportJSON(w, choices, sess.engine.Scores(), time.Now())
	}
	if err != nil {
		return err
	}
	if exportOut != "" {
		fmt.Fprintf(os.Stderr, "exported %d choices to %s\n", len(choices), exportOut)
	}
	return nil
}

// --- import command ---

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import choices from a JSON or CSV export",
	Long:  "Append every record of an export to the choice log. Records before a bad one are kept.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	var (
		format transfer.Format
		err    error
	)
	if importFormat != "" {
		format, err = transfer.ParseFormat(importFormat)
	} else {
		format, err = transfer.FormatFromPath(path)
	}
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if c := client.New(""); c.Healthy(cmd.Context()) {
		n, err := c.Import(cmd.Context(), format, f)
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d choices (via server).\n", n)
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	n, err := transfer.Import(cmd.Context(), format, f, sess.engine)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d choices.\n", n)
	return err
}
