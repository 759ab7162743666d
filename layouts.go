// Package layouts wraps rendered views in layout templates.
//
// A [Renderer] renders the requested view first, then renders a layout with
// the view's markup available as "body". Views can declare named content
// blocks with the "contentFor" helper, and script, style and meta tags can be
// moved out of the body so the layout places them itself.
package layouts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/joetifa2003/layoutigo"

type Renderer struct {
	logger Logger

	defaultLayout  any
	extractScripts bool
	extractStyles  bool
	extractMetas   bool

	views        RenderFunc
	locals       Options
	errorHandler ErrorHandler

	metrics *metrics
	tracer  trace.Tracer
}

type rendererConfig struct {
	defaultLayout  any
	extractScripts bool
	extractStyles  bool
	extractMetas   bool

	views        RenderFunc
	locals       Options
	errorHandler ErrorHandler

	logger Logger

	registerer       prometheus.Registerer
	metricsNamespace string
	tracer           trace.Tracer
}

type Option func(config *rendererConfig) error

// ErrorHandler receives render failures that no callback was given for.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// WithDefaultLayout sets the layout used when neither the render call nor the
// response names one. Pass false to disable layouts unless a call asks for one.
func WithDefaultLayout(layout any) Option {
	return func(config *rendererConfig) error {
		config.defaultLayout = layout
		return nil
	}
}

// WithExtractScripts moves <script> elements out of the body into "script"
// unless a render call overrides it.
func WithExtractScripts(enabled bool) Option {
	return func(config *rendererConfig) error {
		config.extractScripts = enabled
		return nil
	}
}

// WithExtractStyles moves <style> and <link> elements into "style".
func WithExtractStyles(enabled bool) Option {
	return func(config *rendererConfig) error {
		config.extractStyles = enabled
		return nil
	}
}

// WithExtractMetas moves <meta> tags into "meta".
func WithExtractMetas(enabled bool) Option {
	return func(config *rendererConfig) error {
		config.extractMetas = enabled
		return nil
	}
}

// WithViews sets the render capability responses created by Middleware use.
func WithViews(views RenderFunc) Option {
	return func(config *rendererConfig) error {
		config.views = views
		return nil
	}
}

// WithLocals sets data shared by every view rendered through Middleware.
func WithLocals(locals Options) Option {
	return func(config *rendererConfig) error {
		config.locals = locals
		return nil
	}
}

func WithErrorHandler(handler ErrorHandler) Option {
	return func(config *rendererConfig) error {
		config.errorHandler = handler
		return nil
	}
}

func WithLogger(logger Logger) Option {
	return func(config *rendererConfig) error {
		config.logger = logger
		return nil
	}
}

// WithMetrics registers render metrics with registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(config *rendererConfig) error {
		config.registerer = registerer
		return nil
	}
}

// WithMetricsNamespace sets the metrics namespace. Default: "layoutigo".
func WithMetricsNamespace(namespace string) Option {
	return func(config *rendererConfig) error {
		config.metricsNamespace = namespace
		return nil
	}
}

// WithTracer sets the tracer for render spans. By default the global
// OpenTelemetry tracer provider is used.
func WithTracer(tracer trace.Tracer) Option {
	return func(config *rendererConfig) error {
		config.tracer = tracer
		return nil
	}
}

type Logger interface {
	Log(ctx context.Context, level slog.Level, msg string, args ...any)
	LogAttrs(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr)
}

// New creates a Renderer. A Renderer is immutable and safe for concurrent use.
func New(options ...Option) (*Renderer, error) {
	var err error

	config := &rendererConfig{
		metricsNamespace: "layoutigo",
	}

	for _, option := range options {
		err = option(config)
		if err != nil {
			return nil, err
		}
	}

	r := Renderer{
		logger:         config.logger,
		defaultLayout:  config.defaultLayout,
		extractScripts: config.extractScripts,
		extractStyles:  config.extractStyles,
		extractMetas:   config.extractMetas,
		views:          config.views,
		locals:         config.locals,
		errorHandler:   config.errorHandler,
		tracer:         config.tracer,
	}

	if r.logger == nil {
		r.logger = slog.New(slog.DiscardHandler)
	}

	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}

	if r.errorHandler == nil {
		r.errorHandler = r.defaultErrorHandler
	}

	if config.registerer != nil {
		r.metrics, err = newMetrics(config.registerer, config.metricsNamespace)
		if err != nil {
			return nil, err
		}
	}

	return &r, nil
}

func (l *Renderer) Logger() Logger {
	return l.logger
}

func (l *Renderer) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	ctx := context.Background()
	attrs := []slog.Attr{slog.String("err", err.Error())}
	if r != nil {
		ctx = r.Context()
		attrs = append(attrs, slog.String("url", r.URL.String()))
	}
	l.logger.LogAttrs(ctx, slog.LevelError, "render failed", attrs...)

	if w != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
