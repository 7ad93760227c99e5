package cli

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lifeclock",
	Short: "Track daily choices and watch their projected effect on your life",
	Long: "Lifeclock records small daily choices, scores them by category, and projects them onto " +
		"life outcomes and a countdown of the time you have left. Single Go binary, local SQLite storage.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.lifeclock/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(chooseCmd)
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(countdownCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}
