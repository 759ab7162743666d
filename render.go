package layouts

import (
	"context"
	"html/template"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// render outcomes, used as metric labels
const (
	outcomeDirect   = "direct"
	outcomeLayout   = "layout"
	outcomeFallback = "fallback"
)

// RenderWithLayout renders view through render, wrapping it in a layout when
// one applies, and delivers the result.
//
// With a callback the result or error goes to cb and RenderWithLayout returns
// nil. Without one the result is written to res with status 200, and a render
// error is returned without writing anything.
func (l *Renderer) RenderWithLayout(ctx context.Context, render RenderFunc, res *Response, view string, opts Options, cb Callback) error {
	html, err := l.Render(ctx, render, res, view, opts)
	if cb != nil {
		if err != nil {
			cb(nil, err)
			return nil
		}
		cb(html, nil)
		return nil
	}
	if err != nil {
		return err
	}

	return res.send(html)
}

// Render runs the two render passes and returns the final output without
// delivering it. res may be nil, in which case no response-local layout is
// consulted.
func (l *Renderer) Render(ctx context.Context, render RenderFunc, res *Response, view string, opts Options) (html any, err error) {
	if opts == nil {
		opts = Options{}
	}

	var local any
	if res != nil {
		local = res.Locals[LayoutKey]
	}
	decision := ResolveLayout(opts, local, l.defaultLayout)

	ctx, span := l.tracer.Start(ctx, "layouts.Render", trace.WithAttributes(
		attribute.String("layouts.view", view),
		attribute.String("layouts.layout", decision.Name),
	))
	defer span.End()

	start := time.Now()
	outcome := outcomeDirect
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("layouts.outcome", outcome))
		l.metrics.observe(outcome, err, time.Since(start))
	}()

	if decision.Disabled {
		return l.pass(ctx, render, "view", view, opts)
	}

	outcome = outcomeLayout
	contentOpts := opts.clone()
	contentOpts[ContentForKey] = ContentFor

	content, err := l.pass(ctx, render, "view", view, contentOpts)
	if err != nil {
		return nil, err
	}

	locals, ok := l.contentLocals(opts, content)
	if !ok {
		outcome = outcomeFallback
		l.logger.LogAttrs(
			ctx, slog.LevelWarn, "view did not render to markup, rendering without layout",
			slog.String("view", view),
			slog.String("layout", decision.Name),
		)
		return content, nil
	}

	return l.pass(ctx, render, "layout", decision.Name, locals)
}

// contentLocals builds the layout's data from the options and the rendered
// content. It reports false when the body is not markup.
func (l *Renderer) contentLocals(opts Options, content any) (Options, bool) {
	locals := make(Options, len(opts)+4)
	locals[BodyKey] = content
	locals[DefineContentKey] = func(name string) template.HTML {
		s, _ := markup(locals[name])
		return template.HTML(s)
	}

	for k, v := range opts {
		if k == LayoutKey || k == ContentForKey {
			continue
		}
		locals[k] = v
	}

	body, ok := markup(locals[BodyKey])
	if !ok {
		return nil, false
	}

	if extractEnabled(opts, ExtractScriptsKey, l.extractScripts) {
		var script string
		body, script = ExtractScripts(body)
		locals[ScriptKey] = template.HTML(script)
	}

	if extractEnabled(opts, ExtractStylesKey, l.extractStyles) {
		var style string
		body, style = ExtractStyles(body)
		locals[StyleKey] = template.HTML(style)
	}

	if extractEnabled(opts, ExtractMetasKey, l.extractMetas) {
		var meta string
		body, meta = ExtractMetas(body)
		locals[MetaKey] = template.HTML(meta)
	}

	body, blocks := SplitContent(body)
	locals[BodyKey] = template.HTML(body)
	for name, block := range blocks {
		if _, exists := locals[name]; exists {
			continue
		}
		locals[name] = template.HTML(block)
	}

	return locals, true
}

func (l *Renderer) pass(ctx context.Context, render RenderFunc, kind, name string, opts Options) (any, error) {
	ctx, span := l.tracer.Start(ctx, "layouts.render."+kind, trace.WithAttributes(
		attribute.String("layouts.template", name),
	))
	defer span.End()

	l.logger.LogAttrs(
		ctx, slog.LevelDebug, "rendering "+kind,
		slog.String("name", name),
	)

	html, err := render(ctx, name, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		l.metrics.passFailed(kind)
		return nil, err
	}

	return html, nil
}
