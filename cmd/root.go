/*
Copyright © 2025 bizpilot
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bizpilot-be",
	Short: "Lead follow-up backend",
	Long: `bizpilot-be ingests sales leads, classifies their intent against a
business knowledge base, and drafts personalized follow-up messages.

Subcommands start the API server, seed the demo knowledge base, and
rebuild the vector index.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}
