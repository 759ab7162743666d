// Package tmpl renders views stored in an fs.FS with html/template. Its
// Engine.Render method satisfies layouts.RenderFunc.
package tmpl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"
	"text/template/parse"

	layouts "github.com/joetifa2003/layoutigo"
	"github.com/joetifa2003/layoutigo/internal/pool"
)

// ErrNotFound is returned when no template file matches a view name.
var ErrNotFound = errors.New("template not found")

// default filename extensions for template files
var defaultExts = []string{"html", "gohtml", "tpl", "tmpl"}

var bufferPool = pool.New(
	func() *bytes.Buffer { return new(bytes.Buffer) },
	pool.WithReset(func(b *bytes.Buffer) { b.Reset() }),
)

// Engine renders named views. Parsed templates are cached unless caching is
// disabled.
type Engine struct {
	fs     fs.FS
	exts   []string
	funcs  template.FuncMap
	cache  bool
	logger layouts.Logger

	mu  sync.RWMutex
	set map[string]*template.Template
}

type config struct {
	root   string
	exts   []string
	funcs  template.FuncMap
	cache  bool
	logger layouts.Logger
}

type Option func(*config)

// WithRoot serves views from a subdirectory of the filesystem.
func WithRoot(dir string) Option {
	return func(c *config) {
		c.root = dir
	}
}

// WithExts sets the extensions tried when a view name has none.
// Default: html, gohtml, tpl, tmpl.
func WithExts(exts ...string) Option {
	return func(c *config) {
		c.exts = exts
	}
}

// WithFuncs adds template functions available to every view.
func WithFuncs(funcs template.FuncMap) Option {
	return func(c *config) {
		for k, f := range funcs {
			c.funcs[k] = f
		}
	}
}

// WithCache enables or disables caching of parsed templates. Default: true.
func WithCache(enabled bool) Option {
	return func(c *config) {
		c.cache = enabled
	}
}

func WithLogger(logger layouts.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// New creates an Engine reading views from fsys.
func New(fsys fs.FS, options ...Option) (*Engine, error) {
	cfg := &config{
		exts:  defaultExts,
		funcs: template.FuncMap{},
		cache: true,
	}

	for _, opt := range options {
		opt(cfg)
	}

	if cfg.root != "" {
		sub, err := fs.Sub(fsys, cfg.root)
		if err != nil {
			return nil, fmt.Errorf("error setting subdirectory '%s': %w", cfg.root, err)
		}
		fsys = sub
	}

	e := &Engine{
		fs:     fsys,
		exts:   cfg.exts,
		funcs:  cfg.funcs,
		cache:  cfg.cache,
		logger: cfg.logger,
		set:    map[string]*template.Template{},
	}

	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}

	return e, nil
}

// Render executes the view named view with data and returns the markup as a
// string.
func (e *Engine) Render(ctx context.Context, view string, data layouts.Options) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tpl, err := e.lookup(view)
	if err != nil {
		return nil, err
	}

	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	if err := tpl.Execute(buf, map[string]any(data)); err != nil {
		return nil, fmt.Errorf("error rendering '%s': %w", view, err)
	}

	return buf.String(), nil
}

// Reset drops every cached template.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	clear(e.set)
}

func (e *Engine) lookup(view string) (*template.Template, error) {
	name := strings.TrimPrefix(path.Clean("/"+view), "/")

	if e.cache {
		e.mu.RLock()
		tpl, ok := e.set[name]
		e.mu.RUnlock()
		if ok {
			return tpl, nil
		}
	}

	tpl, err := e.parse(name)
	if err != nil {
		return nil, err
	}

	if e.cache {
		e.mu.Lock()
		e.set[name] = tpl
		e.mu.Unlock()
	}

	return tpl, nil
}

func (e *Engine) parse(name string) (*template.Template, error) {
	file, src, err := e.read(name)
	if err != nil {
		return nil, fmt.Errorf("error parsing view '%s': %w", name, err)
	}

	tpl, err := template.New(file).Funcs(e.funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("error parsing template '%s': %w", file, err)
	}

	// include referenced templates
	seen := map[string]bool{file: true}
	pending := e.refs(tpl)
	for len(pending) > 0 {
		ref := pending[0]
		pending = pending[1:]
		if seen[ref] || tpl.Lookup(ref) != nil {
			continue
		}
		seen[ref] = true

		refFile, refSrc, err := e.read(ref)
		if err != nil {
			return nil, fmt.Errorf("error parsing template '%s' referenced by '%s': %w", ref, file, err)
		}
		if _, err := tpl.New(ref).Parse(refSrc); err != nil {
			return nil, fmt.Errorf("error parsing template '%s': %w", refFile, err)
		}
		pending = append(pending, e.refs(tpl)...)
	}

	e.logger.LogAttrs(
		context.Background(), slog.LevelDebug, "parsed template",
		slog.String("view", name),
		slog.String("file", file),
	)

	return tpl, nil
}

// read finds the file for name, trying each extension when name itself does
// not exist.
func (e *Engine) read(name string) (string, string, error) {
	candidates := []string{name}
	for _, ext := range e.exts {
		candidates = append(candidates, name+"."+strings.TrimPrefix(ext, "."))
	}

	for _, candidate := range candidates {
		b, err := fs.ReadFile(e.fs, candidate)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
		return candidate, string(b), nil
	}

	return "", "", fmt.Errorf("%q: %w", name, ErrNotFound)
}

// refs lists the templates invoked by any tree of tpl that it does not define.
func (e *Engine) refs(tpl *template.Template) []string {
	var out []string
	for _, t := range tpl.Templates() {
		if t.Tree == nil {
			continue
		}
		for _, ref := range fetchRefs(t.Tree.Root) {
			if tpl.Lookup(ref) == nil {
				out = append(out, ref)
			}
		}
	}
	return out
}

// fetchRefs fetches all templates referenced below node.
func fetchRefs(node parse.Node) []string {
	var ts []string
	switch n := node.(type) {
	case *parse.TemplateNode:
		ts = append(ts, n.Name)
	case *parse.ListNode:
		if n == nil {
			return nil
		}
		for _, c := range n.Nodes {
			ts = append(ts, fetchRefs(c)...)
		}
	case *parse.IfNode:
		ts = append(ts, fetchRefs(n.List)...)
		ts = append(ts, fetchRefs(n.ElseList)...)
	case *parse.RangeNode:
		ts = append(ts, fetchRefs(n.List)...)
		ts = append(ts, fetchRefs(n.ElseList)...)
	case *parse.WithNode:
		ts = append(ts, fetchRefs(n.List)...)
		ts = append(ts, fetchRefs(n.ElseList)...)
	}
	return ts
}
