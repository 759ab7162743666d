package generator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/joetifa2003/layoutigo/cmd/layoutigo/templates"
)

// ErrExists is returned when a generated file would overwrite an existing one.
var ErrExists = errors.New("file already exists")

type TemplateData struct {
	Title          string
	ExtractScripts bool
}

// Generate writes the starter views into dir. Files ending in .tmpl are
// executed with [[ ]] delimiters so the html/template actions they contain
// are copied verbatim.
func Generate(dir string, data TemplateData) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	templateRoot := "starter"

	return fs.WalkDir(templates.FS, templateRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(templateRoot, path)
		if err != nil {
			return err
		}

		if relPath == "." {
			return nil
		}

		destPath := strings.TrimSuffix(filepath.Join(dir, relPath), ".tmpl")

		if d.IsDir() {
			return os.MkdirAll(destPath, 0755)
		}

		if _, err := os.Stat(destPath); err == nil {
			return fmt.Errorf("%s: %w", destPath, ErrExists)
		}

		content, err := fs.ReadFile(templates.FS, path)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", path, err)
		}

		if !strings.HasSuffix(path, ".tmpl") {
			if err := os.WriteFile(destPath, content, 0644); err != nil {
				return fmt.Errorf("failed to write file %s: %w", destPath, err)
			}
			return nil
		}

		tmpl, err := template.New(path).Delims("[[", "]]").Parse(string(content))
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", path, err)
		}

		f, err := os.Create(destPath)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", destPath, err)
		}
		defer f.Close()

		if err := tmpl.Execute(f, data); err != nil {
			return fmt.Errorf("failed to execute template %s: %w", path, err)
		}

		return nil
	})
}
