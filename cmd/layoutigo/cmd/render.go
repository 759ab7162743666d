package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	layouts "github.com/joetifa2003/layoutigo"
	"github.com/joetifa2003/layoutigo/tmpl"
)

type extractFlags struct {
	scripts bool
	styles  bool
	metas   bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.scripts, "extract-scripts", false, "move <script> elements into the layout's script")
	cmd.Flags().BoolVar(&f.styles, "extract-styles", false, "move <style> and <link> elements into the layout's style")
	cmd.Flags().BoolVar(&f.metas, "extract-metas", false, "move <meta> tags into the layout's meta")
}

func (f *extractFlags) options() []layouts.Option {
	return []layouts.Option{
		layouts.WithExtractScripts(f.scripts),
		layouts.WithExtractStyles(f.styles),
		layouts.WithExtractMetas(f.metas),
	}
}

var (
	renderLayout   string
	renderNoLayout bool
	renderDataFile string
	renderSet      map[string]string
	renderExtract  extractFlags
)

var renderCmd = &cobra.Command{
	Use:   "render VIEW",
	Short: "Render a view with its layout to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		engine, err := tmpl.New(os.DirFS(viewsDir), tmpl.WithLogger(logger))
		if err != nil {
			return err
		}

		options := append(renderExtract.options(), layouts.WithLogger(logger))
		switch {
		case renderNoLayout:
			options = append(options, layouts.WithDefaultLayout(false))
		case renderLayout != "":
			options = append(options, layouts.WithDefaultLayout(renderLayout))
		}

		l, err := layouts.New(options...)
		if err != nil {
			return err
		}

		data, err := readData(renderDataFile)
		if err != nil {
			return err
		}
		for k, v := range renderSet {
			data[k] = v
		}

		html, err := l.Render(cmd.Context(), engine.Render, nil, args[0], data)
		if err != nil {
			return err
		}

		return writeOutput(cmd, html)
	},
}

// readData loads view data from a YAML (or JSON) file.
func readData(path string) (layouts.Options, error) {
	data := layouts.Options{}
	if path == "" {
		return data, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}

	return data, nil
}

func writeOutput(cmd *cobra.Command, html any) error {
	switch v := html.(type) {
	case string:
		_, err := fmt.Fprint(cmd.OutOrStdout(), v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprint(cmd.OutOrStdout(), v.String())
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(html)
}

func init() {
	renderCmd.Flags().StringVarP(&renderLayout, "layout", "l", "", "layout to wrap the view in (default \"layout\")")
	renderCmd.Flags().BoolVar(&renderNoLayout, "no-layout", false, "render the view without a layout")
	renderCmd.Flags().StringVar(&renderDataFile, "data", "", "YAML or JSON file with view data")
	renderCmd.Flags().StringToStringVar(&renderSet, "set", nil, "view data as key=value pairs, applied after --data")
	renderExtract.register(renderCmd)

	rootCmd.AddCommand(renderCmd)
}
