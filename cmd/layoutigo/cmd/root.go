package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	viewsDir string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "layoutigo",
	Short: "Layoutigo CLI",
	Long:  `Render and serve html/template views wrapped in layouts.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&viewsDir, "dir", "d", "views", "directory containing views and layouts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
