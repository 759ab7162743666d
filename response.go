package layouts

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/peterbourgon/mergemap"
)

// ErrNoResponse is returned when output has to be written but the render
// call has neither a callback nor a response writer.
var ErrNoResponse = errors.New("layouts: no response to write to")

// Response is the per-request render surface handlers use. Locals holds data
// shared by every view rendered for this response, including an optional
// "layout" setting.
type Response struct {
	Writer  http.ResponseWriter
	Request *http.Request
	Locals  Options

	entry    RenderEntry
	original RenderEntry
	onError  ErrorHandler
}

// NewResponse creates a response whose render entry point merges Locals into
// the view data and renders with views.
func NewResponse(w http.ResponseWriter, r *http.Request, views RenderFunc) *Response {
	return &Response{
		Writer:  w,
		Request: r,
		Locals:  Options{},
		entry:   nativeEntry(views),
	}
}

func nativeEntry(views RenderFunc) RenderEntry {
	return func(ctx context.Context, res *Response, view string, opts Options, cb Callback) error {
		if views == nil {
			return errors.New("layouts: response has no views to render with")
		}
		html, err := views(ctx, view, res.data(opts))
		if cb != nil {
			cb(html, err)
			return nil
		}
		if err != nil {
			return err
		}
		return res.send(html)
	}
}

// data merges the response locals with opts, opts taking precedence.
func (res *Response) data(opts Options) Options {
	merged := map[string]any{}
	mergemap.Merge(merged, res.Locals)
	mergemap.Merge(merged, opts)
	return merged
}

// Intercept returns a copy of res whose render entry point goes through l.
// The entry point res had before its first interception is kept as the
// original, so intercepting an already intercepted response never wraps the
// wrapper.
func (l *Renderer) Intercept(res *Response) *Response {
	wrapped := *res
	if wrapped.original == nil {
		wrapped.original = res.entry
	}
	if wrapped.onError == nil {
		wrapped.onError = l.errorHandler
	}
	wrapped.entry = l.entry
	return &wrapped
}

func (l *Renderer) entry(ctx context.Context, res *Response, view string, opts Options, cb Callback) error {
	return l.RenderWithLayout(ctx, res.original.bind(res), res, view, opts, cb)
}

// Intercepted reports whether res renders through a Renderer.
func (res *Response) Intercepted() bool {
	return res.original != nil
}

// Original returns the entry point saved by the first interception bound to
// res, or nil when res was never intercepted.
func (res *Response) Original() RenderFunc {
	if res.original == nil {
		return nil
	}
	return res.original.bind(res)
}

// Render renders view. With a callback the outcome goes to cb; without one
// the output is written to the response and failures go to the error handler
// the response was intercepted with.
func (res *Response) Render(ctx context.Context, view string, opts Options, cb Callback) {
	if res.entry == nil {
		res.fail(errNoEntry)
		return
	}
	if err := res.entry(ctx, res, view, opts, cb); err != nil {
		res.fail(err)
	}
}

func (res *Response) fail(err error) {
	if res.onError == nil {
		return
	}
	res.onError(res.Writer, res.Request, err)
}

func (res *Response) send(html any) error {
	if res == nil || res.Writer == nil {
		return ErrNoResponse
	}

	var (
		body        []byte
		contentType = "text/html; charset=utf-8"
	)
	switch v := html.(type) {
	case string:
		body = []byte(v)
	case template.HTML:
		body = []byte(v)
	case []byte:
		body = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		body = b
		contentType = "application/json"
	}

	res.Writer.Header().Set("Content-Type", contentType)
	res.Writer.WriteHeader(http.StatusOK)
	_, err := res.Writer.Write(body)
	return err
}
