package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/joetifa2003/layoutigo/cmd/layoutigo/generator"
)

var initCmd = &cobra.Command{
	Use:   "init [DIR]",
	Short: "Create a views directory with a starter layout and page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data := generator.TemplateData{
			Title:          "My Site",
			ExtractScripts: true,
		}

		var dir string
		if len(args) == 1 {
			dir = args[0]
		} else {
			cwd, _ := os.Getwd()
			defaultDir := filepath.Join(cwd, "views")

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Views directory").
						Value(&dir).
						Placeholder(defaultDir),

					huh.NewInput().
						Title("Site title").
						Value(&data.Title),

					huh.NewConfirm().
						Title("Place page scripts at the end of the layout?").
						Value(&data.ExtractScripts),
				),
			)

			if err := form.Run(); err != nil {
				return err
			}

			if dir == "" {
				dir = defaultDir
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Generating views in %s...\n", dir)

		if err := generator.Generate(dir, data); err != nil {
			return fmt.Errorf("error generating views: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Views generated successfully!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
