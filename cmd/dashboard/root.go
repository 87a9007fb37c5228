package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	session    string
}

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Prediction dashboard for the heart disease and banking complaint models",
	Long: "dashboard runs the prediction dashboard API or talks to the inference\n" +
		"service directly, recording every result in the shared history.",
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "configs/config.yml", "Path to config file (defaults apply when missing)")
	pf.StringVar(&rootFlags.session, "session", "cli", "Session ID used for the current result")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(hashPasswordCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
