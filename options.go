package layouts

import (
	"context"
	"errors"
	"html/template"
	"maps"
)

var errNoEntry = errors.New("layouts: response has no render entry point")

// Option keys the Renderer reads from, or writes to, the view data.
const (
	LayoutKey         = "layout"
	ExtractScriptsKey = "extractScripts"
	ExtractStylesKey  = "extractStyles"
	ExtractMetasKey   = "extractMetas"

	ContentForKey    = "contentFor"
	DefineContentKey = "defineContent"

	BodyKey   = "body"
	ScriptKey = "script"
	StyleKey  = "style"
	MetaKey   = "meta"
)

// Options is the data passed to a view. It carries user data as well as the
// per-call layout settings.
type Options map[string]any

// RenderFunc renders a single view to markup. It is the capability the
// Renderer wraps; a template engine such as tmpl.Engine provides it.
// Any result that is not a string or template.HTML is treated as
// non-markup output and delivered as is.
type RenderFunc func(ctx context.Context, view string, opts Options) (any, error)

// Callback receives the outcome of a render call. When a render call is made
// without a callback the result is written to the response instead.
type Callback func(html any, err error)

// RenderEntry is a response's public render entry point.
type RenderEntry func(ctx context.Context, res *Response, view string, opts Options, cb Callback) error

// bind turns the entry point into a RenderFunc for res, collecting the
// callback result into a single return value.
func (e RenderEntry) bind(res *Response) RenderFunc {
	return func(ctx context.Context, view string, opts Options) (any, error) {
		if e == nil {
			return nil, errNoEntry
		}

		var (
			html      any
			renderErr error
		)
		if err := e(ctx, res, view, opts, func(h any, err error) {
			html, renderErr = h, err
		}); err != nil {
			return nil, err
		}
		return html, renderErr
	}
}

func (o Options) clone() Options {
	c := make(Options, len(o)+1)
	maps.Copy(c, o)
	return c
}

// markup reports whether v is textual output and returns it as a string.
func markup(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case template.HTML:
		return string(v), true
	}
	return "", false
}

// extractEnabled reads a boolean extraction flag from opts, falling back to
// def when the option is unset.
func extractEnabled(opts Options, key string, def bool) bool {
	v, ok := opts[key]
	if !ok || v == nil {
		return def
	}
	enabled, _ := v.(bool)
	return enabled
}
