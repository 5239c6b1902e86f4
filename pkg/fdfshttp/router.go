package fdfshttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/fdfskit/pkg/binder"
	"github.com/dmitrymomot/fdfskit/pkg/fdfs"
	"github.com/dmitrymomot/fdfskit/pkg/handler"
	"github.com/dmitrymomot/fdfskit/pkg/httpserver"
	"github.com/dmitrymomot/fdfskit/pkg/logger"
)

const defaultMaxUploadSize = 32 << 20

type Option func(*api)

func WithLogger(l *slog.Logger) Option {
	return func(a *api) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMaxUploadSize limits the request body of uploads. Larger requests
// get 413.
func WithMaxUploadSize(n int64) Option {
	return func(a *api) {
		if n > 0 {
			a.maxUpload = n
		}
	}
}

// WithAllowedTypes restricts uploads to the given sniffed MIME types.
func WithAllowedTypes(types ...string) Option {
	return func(a *api) { a.allowedTypes = append(a.allowedTypes, types...) }
}

type api struct {
	client       *fdfs.Client
	log          *slog.Logger
	maxUpload    int64
	allowedTypes []string
	errHandler   handler.ErrorHandler
}

// NewRouter returns the file API:
//
//	POST   /files            multipart upload, field "file", thumb=true for images
//	GET    /files/*          download
//	DELETE /files/*          delete
//	GET    /info/*           file info
//	GET    /normalize?path=  path normalization
//	GET    /health, /ready   probes
func NewRouter(client *fdfs.Client, opts ...Option) chi.Router {
	a := &api{
		client:    client,
		log:       logger.Nop(),
		maxUpload: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(logger.Component("fdfshttp"))
	a.errHandler = handler.NewErrorHandler(a.log, classify)

	query := binder.BindQuery()
	ref := binder.Path(chi.URLParam)
	form := binder.File(min(a.maxUpload, binder.DefaultMaxMemory))

	r := chi.NewRouter()
	r.Use(requestIDMiddleware, middleware.Recoverer, a.accessLog)

	r.Get("/health", httpserver.HealthCheckHandler(a.log))
	r.Get("/ready", httpserver.HealthCheckHandler(a.log, checks(client)...))
	r.Get("/normalize", handler.Wrap(a.normalize, a.wrap(query)...))

	r.Route("/files", func(files chi.Router) {
		files.With(a.limitBody).Post("/", handler.Wrap(a.upload, a.wrap(form, query)...))
		files.Get("/*", handler.Wrap(a.download, a.wrap(ref, query)...))
		files.Delete("/*", handler.Wrap(a.delete, a.wrap(ref)...))
	})
	r.Get("/info/*", handler.Wrap(a.info, a.wrap(ref)...))

	return r
}

func (a *api) wrap(binders ...handler.Bind) []handler.WrapOption {
	return []handler.WrapOption{
		handler.WithBinders(binders...),
		handler.WithErrorHandler(a.errHandler),
	}
}

// limitBody caps the request body at the upload limit.
func (a *api) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, a.maxUpload)
		next.ServeHTTP(w, r)
	})
}

func checks(client *fdfs.Client) []httpserver.Check {
	fns := client.Checks()
	out := make([]httpserver.Check, len(fns))
	for i, fn := range fns {
		out[i] = fn
	}
	return out
}

func (a *api) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		a.log.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			logger.Path(r.URL.Path),
			slog.Int("status", ww.Status()),
			logger.Size(int64(ww.BytesWritten())),
			logger.Duration(time.Since(start)),
		)
	})
}
