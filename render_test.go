package layouts_test

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	layouts "github.com/joetifa2003/layoutigo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renderCall struct {
	view string
	opts layouts.Options
}

// fakeViews renders views from plain functions and records every call.
type fakeViews struct {
	views map[string]func(opts layouts.Options) (any, error)
	calls []renderCall
}

func (f *fakeViews) render(ctx context.Context, view string, opts layouts.Options) (any, error) {
	f.calls = append(f.calls, renderCall{view: view, opts: opts})
	fn, ok := f.views[view]
	if !ok {
		return nil, errors.New("unknown view " + view)
	}
	return fn(opts)
}

func (f *fakeViews) rendered() []string {
	var names []string
	for _, c := range f.calls {
		names = append(names, c.view)
	}
	return names
}

func static(s string) func(layouts.Options) (any, error) {
	return func(layouts.Options) (any, error) { return s, nil }
}

// wrap renders a layout as "[" + body + "]".
func wrap(opts layouts.Options) (any, error) {
	return "[" + string(opts["body"].(template.HTML)) + "]", nil
}

func TestRender_LayoutDisabled(t *testing.T) {
	tests := []struct {
		name    string
		options []layouts.Option
		opts    layouts.Options
	}{
		{
			name:    "Option False",
			options: []layouts.Option{layouts.WithDefaultLayout(true)},
			opts:    layouts.Options{"layout": false},
		},
		{
			name:    "Default False",
			options: []layouts.Option{layouts.WithDefaultLayout(false)},
			opts:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := &fakeViews{views: map[string]func(layouts.Options) (any, error){
				"view":   static("hi"),
				"layout": wrap,
			}}

			l, err := layouts.New(tt.options...)
			require.NoError(t, err)

			html, err := l.Render(context.Background(), views.render, nil, "view", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "hi", html)
			assert.Equal(t, []string{"view"}, views.rendered())
			assert.NotContains(t, views.calls[0].opts, "contentFor")
		})
	}
}

func TestRender_WrapsInLayout(t *testing.T) {
	views := &fakeViews{views: map[string]func(layouts.Options) (any, error){
		"view":   static("VIEW_START bar VIEW_END"),
		"layout": wrap,
		"custom": func(opts layouts.Options) (any, error) {
			return "TEMPLATE_START " + string(opts["body"].(template.HTML)) + " TEMPLATE_END", nil
		},
	}}

	l, err := layouts.New(layouts.WithDefaultLayout("custom"))
	require.NoError(t, err)

	html, err := l.Render(context.Background(), views.render, nil, "view", layouts.Options{"foo": "bar"})
	require.NoError(t, err)
	assert.Equal(t, "TEMPLATE_START VIEW_START bar VIEW_END TEMPLATE_END", html)
	assert.Equal(t, []string{"view", "custom"}, views.rendered())
}

func TestRender_Locals(t *testing.T) {
	enc := func(name string) string { return string(layouts.ContentFor(name)) }

	views := &fakeViews{views: map[string]func(layouts.Options) (any, error){
		"view": func(opts layouts.Options) (any, error) {
			contentFor := opts["contentFor"].(func(string) template.HTML)
			return "main" + string(contentFor("aside")) + "A" + string(contentFor("aside")) +
				enc("title") + "from block", nil
		},
		"layout": static("done"),
	}}

	l, err := layouts.New()
	require.NoError(t, err)

	opts := layouts.Options{"layout": "layout", "title": "from option", "user": "ann"}
	html, err := l.Render(context.Background(), views.render, nil, "view", opts)
	require.NoError(t, err)
	assert.Equal(t, "done", html)

	require.Len(t, views.calls, 2)

	// caller options are not modified
	assert.Equal(t, layouts.Options{"layout": "layout", "title": "from option", "user": "ann"}, opts)
	assert.Contains(t, views.calls[0].opts, "contentFor")

	locals := views.calls[1].opts
	assert.Equal(t, template.HTML("main"), locals["body"])
	assert.Equal(t, template.HTML("A"), locals["aside"])
	assert.Equal(t, "from option", locals["title"])
	assert.Equal(t, "ann", locals["user"])
	assert.NotContains(t, locals, "layout")
	assert.NotContains(t, locals, "contentFor")
	assert.NotContains(t, locals, "script")
	assert.NotContains(t, locals, "style")
	assert.NotContains(t, locals, "meta")

	defineContent := locals["defineContent"].(func(string) template.HTML)
	assert.Equal(t, template.HTML("A"), defineContent("aside"))
	assert.Equal(t, template.HTML("from option"), defineContent("title"))
	assert.Equal(t, template.HTML(""), defineContent("missing"))
}

func TestRender_Extraction(t *testing.T) {
	const body = `<meta charset="utf-8"><style>p{}</style><p>hi</p><script>x()</script>`

	tests := []struct {
		name     string
		content  string
		options  []layouts.Option
		opts     layouts.Options
		expected map[string]template.HTML
		absent   []string
	}{
		{
			name:     "Disabled By Default",
			content:  body,
			expected: map[string]template.HTML{"body": body},
			absent:   []string{"script", "style", "meta"},
		},
		{
			name:    "All Enabled Globally",
			content: body,
			options: []layouts.Option{
				layouts.WithExtractScripts(true),
				layouts.WithExtractStyles(true),
				layouts.WithExtractMetas(true),
			},
			expected: map[string]template.HTML{
				"body":   "<p>hi</p>",
				"script": "<script>x()</script>",
				"style":  "<style>p{}</style>",
				"meta":   `<meta charset="utf-8">`,
			},
		},
		{
			name:    "Option Overrides Global",
			content: body,
			options: []layouts.Option{layouts.WithExtractScripts(true), layouts.WithExtractMetas(true)},
			opts:    layouts.Options{"extractScripts": false, "extractStyles": true},
			expected: map[string]template.HTML{
				"body":  "<p>hi</p><script>x()</script>",
				"style": "<style>p{}</style>",
				"meta":  `<meta charset="utf-8">`,
			},
			absent: []string{"script"},
		},
		{
			name:    "Enabled Without Matches Is Empty",
			content: `<meta charset="utf-8"><p>hi</p>`,
			opts:    layouts.Options{"extractScripts": true},
			expected: map[string]template.HTML{
				"body":   `<meta charset="utf-8"><p>hi</p>`,
				"script": "",
			},
			absent: []string{"style", "meta"},
		},
		{
			name:    "Extraction Runs Before Block Split",
			content: "<p>hi</p>" + string(layouts.ContentFor("foot")) + "<script>late()</script><footer>f</footer>",
			opts:    layouts.Options{"extractScripts": true},
			expected: map[string]template.HTML{
				"body":   "<p>hi</p>",
				"foot":   "<footer>f</footer>",
				"script": "<script>late()</script>",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views := &fakeViews{views: map[string]func(layouts.Options) (any, error){
				"view":   static(tt.content),
				"layout": static("ok"),
			}}

			l, err := layouts.New(tt.options...)
			require.NoError(t, err)

			_, err = l.Render(context.Background(), views.render, nil, "view", tt.opts)
			require.NoError(t, err)
			require.Len(t, views.calls, 2)

			locals := views.calls[1].opts
			for k, v := range tt.expected {
				assert.Equal(t, v, locals[k], "local %q", k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, locals, k)
			}
		})
	}
}

func TestRender_NonTextualContent(t *testing.T) {
	structured := map[string]any{"foo": "bar"}

	tests := []struct {
		name     string
		view     func(layouts.Options) (any, error)
		opts     layouts.Options
		expected any
	}{
		{
			name:     "View Returns Structured Value",
			view:     func(layouts.Options) (any, error) { return structured, nil },
			expected: structured,
		},
		{
			name:     "Body Option Is Not Markup",
			view:     static("{}"),
			opts:     layouts.Options{"body": map[string]any{"foo": "bar"}},
			expected: "{}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			views := &fakeViews{views: map[string]func(layouts.Options) (any, error){
				"view":   tt.view,
				"layout": wrap,
			}}

			l, err := layouts.New(
				layouts.WithDefaultLayout(true),
				layouts.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
			)
			require.NoError(t, err)

			html, err := l.Render(context.Background(), views.render, nil, "view", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, html)
			assert.Equal(t, []string{"view"}, views.rendered())

			assert.Contains(t, logs.String(), "level=WARN")
			assert.Contains(t, logs.String(), "view=view")
			assert.Contains(t, logs.String(), "layout=layout")
		})
	}
}

func TestRender_ResponseLocalLayout(t *testing.T) {
	views := &fakeViews{views: map[string]func(layouts.Options) (any, error){
		"view":  static("v"),
		"admin": wrap,
	}}

	l, err := layouts.New(layouts.WithDefaultLayout("layout"))
	require.NoError(t, err)

	res := layouts.NewResponse(httptest.NewRecorder(), nil, views.render)
	res.Locals["layout"] = "admin"

	html, err := l.Render(context.Background(), views.render, res, "view", nil)
	require.NoError(t, err)
	assert.Equal(t, "[v]", html)
}

func TestRender_Failures(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name     string
		views    map[string]func(layouts.Options) (any, error)
		rendered []string
	}{
		{
			name: "Content Pass Fails",
			views: map[string]func(layouts.Options) (any, error){
				"view":   func(layouts.Options) (any, error) { return nil, errBoom },
				"layout": wrap,
			},
			rendered: []string{"view"},
		},
		{
			name: "Layout Pass Fails",
			views: map[string]func(layouts.Options) (any, error){
				"view":   static("v"),
				"layout": func(layouts.Options) (any, error) { return nil, errBoom },
			},
			rendered: []string{"view", "layout"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := layouts.New()
			require.NoError(t, err)

			t.Run("with callback", func(t *testing.T) {
				views := &fakeViews{views: tt.views}
				w := httptest.NewRecorder()
				res := layouts.NewResponse(w, nil, views.render)

				var (
					gotHTML any
					gotErr  error
					calls   int
				)
				err := l.RenderWithLayout(context.Background(), views.render, res, "view", nil, func(html any, err error) {
					calls++
					gotHTML, gotErr = html, err
				})
				require.NoError(t, err)
				assert.Equal(t, 1, calls)
				assert.Nil(t, gotHTML)
				assert.ErrorIs(t, gotErr, errBoom)
				assert.Equal(t, tt.rendered, views.rendered())
				assert.Empty(t, w.Body.String())
			})

			t.Run("without callback", func(t *testing.T) {
				views := &fakeViews{views: tt.views}
				w := httptest.NewRecorder()
				res := layouts.NewResponse(w, nil, views.render)

				err := l.RenderWithLayout(context.Background(), views.render, res, "view", nil, nil)
				assert.ErrorIs(t, err, errBoom)
				assert.Equal(t, tt.rendered, views.rendered())
				assert.Empty(t, w.Body.String())
				assert.Empty(t, w.Header().Get("Content-Type"))
			})
		})
	}
}

func TestRenderWithLayout_Delivery(t *testing.T) {
	views := &fakeViews{views: map[string]func(layouts.Options) (any, error){
		"view":   static("v"),
		"layout": wrap,
		"data":   func(layouts.Options) (any, error) { return map[string]any{"a": 1}, nil },
	}}

	l, err := layouts.New()
	require.NoError(t, err)

	t.Run("writes html", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := layouts.NewResponse(w, nil, views.render)

		err := l.RenderWithLayout(context.Background(), views.render, res, "view", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Equal(t, "[v]", w.Body.String())
	})

	t.Run("writes structured output as json", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := layouts.NewResponse(w, nil, views.render)

		err := l.RenderWithLayout(context.Background(), views.render, res, "data", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"a":1}`, w.Body.String())
	})

	t.Run("callback receives html", func(t *testing.T) {
		w := httptest.NewRecorder()
		res := layouts.NewResponse(w, nil, views.render)

		var got any
		err := l.RenderWithLayout(context.Background(), views.render, res, "view", nil, func(html any, err error) {
			require.NoError(t, err)
			got = html
		})
		require.NoError(t, err)
		assert.Equal(t, "[v]", got)
		assert.Empty(t, w.Body.String())
	})

	t.Run("no response", func(t *testing.T) {
		err := l.RenderWithLayout(context.Background(), views.render, nil, "view", nil, nil)
		assert.ErrorIs(t, err, layouts.ErrNoResponse)
	})
}
