package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	layouts "github.com/joetifa2003/layoutigo"
	"github.com/joetifa2003/layoutigo/tmpl"
)

var (
	serveAddr    string
	serveLayout  string
	serveWatch   bool
	serveExtract extractFlags
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve views over HTTP, wrapped in their layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := newLogger()

		engine, err := tmpl.New(os.DirFS(viewsDir), tmpl.WithLogger(logger), tmpl.WithCache(true))
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())

		handler, err := newServer(engine, logger, reg, serveLayout, serveExtract.options()...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			logger.LogAttrs(ctx, slog.LevelInfo, "serving views",
				slog.String("addr", serveAddr),
				slog.String("dir", viewsDir),
			)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		if serveWatch {
			g.Go(func() error {
				return engine.Watch(ctx, viewsDir)
			})
		}

		return g.Wait()
	},
}

// newServer routes GET /{view...} through the layout middleware and exposes
// metrics on /metrics.
func newServer(engine *tmpl.Engine, logger *slog.Logger, reg *prometheus.Registry, layout string, options ...layouts.Option) (http.Handler, error) {
	options = append(options,
		layouts.WithViews(engine.Render),
		layouts.WithLogger(logger),
		layouts.WithMetrics(reg),
		layouts.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			if errors.Is(err, tmpl.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			logger.LogAttrs(r.Context(), slog.LevelError, "render failed",
				slog.String("url", r.URL.Path),
				slog.String("err", err.Error()),
			)
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}),
	)
	if layout != "" {
		options = append(options, layouts.WithDefaultLayout(layout))
	}

	l, err := layouts.New(options...)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(l.Middleware)
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			view := strings.Trim(chi.URLParam(r, "*"), "/")
			if view == "" {
				view = "index"
			}

			opts := layouts.Options{
				"path":  r.URL.Path,
				"query": r.URL.Query(),
			}
			if r.URL.Query().Has("nolayout") {
				opts[layouts.LayoutKey] = false
			}

			layouts.ResponseFrom(r).Render(r.Context(), view, opts, nil)
		})
	})

	return r, nil
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVarP(&serveLayout, "layout", "l", "", "default layout (default \"layout\")")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "reload templates when files change")
	serveExtract.register(serveCmd)

	rootCmd.AddCommand(serveCmd)
}
