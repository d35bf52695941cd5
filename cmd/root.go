/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docchat-be",
	Short: "Backend for chatting with uploaded PDF documents",
	Long: `docchat-be processes uploaded PDFs (extraction, chunking, embedding)
and answers questions about them through a planner-driven workflow.

Run "docchat-be start" to launch the HTTP server, or use the
process-document and ask subcommands for one-off runs.`,
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
