package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/aimage"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Service is the image store the handler exposes. *aimage.ImageService satisfies it.
type Service interface {
	Create(ctx context.Context, payload []byte, mediaType string) (aimage.Identifier, error)
	Read(ctx context.Context, id string) ([]byte, error)
	Stat(ctx context.Context, id string) (aimage.Identifier, error)
	Delete(ctx context.Context, id string) error
	Collect(ctx context.Context) ([]aimage.Identifier, error)
}

// CredentialVerifier checks HTTP Basic credentials. *aimage.CredentialVerifier satisfies it.
type CredentialVerifier interface {
	Verify(username, password string) bool
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Verifier CredentialVerifier
	// Realm is sent in the WWW-Authenticate challenge.
	Realm string
	// ContentType is served for stored image bytes (default image/png).
	ContentType string
	// MaxUploadSize limits upload bodies in bytes. Zero means unlimited.
	MaxUploadSize int64
	CORS          CORSConfig
	// Metrics enables GET /metrics and request instrumentation when set.
	Metrics *Metrics
	Logger  *slog.Logger
}

// Handler provides HTTP handlers for image operations.
type Handler struct {
	config  HandlerConfig
	service Service
	logger  *slog.Logger
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	cfg := *config
	if cfg.Realm == "" {
		cfg.Realm = "aimage"
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "image/png"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		config:  cfg,
		service: service,
		logger:  logger,
	}
}

// Router returns an http.Handler with every route configured.
// The landing page and API documentation are public; everything else
// requires HTTP Basic credentials.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(RequestLogger(h.logger))
	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeDefaultNotFound(w)
	})

	r.Get("/", h.handleHome)
	r.Get("/api_v1.json", h.handleOpenAPI)
	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/index.html", http.StatusMovedPermanently)
	})
	r.Get("/api/*", httpSwagger.Handler(httpSwagger.URL("/api_v1.json")))

	r.Group(func(r chi.Router) {
		r.Use(BasicAuth(h.config.Verifier, h.config.Realm))

		r.Route("/images", func(r chi.Router) {
			r.Get("/", h.handleList)
			r.Post("/", h.handleCreate)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.handleGet)
				r.Delete("/", h.handleDelete)
				r.Get("/metadata", h.handleMetadata)
				r.Get("/data", h.handleGet)
			})
		})

		if h.config.Metrics != nil {
			r.Handle("/metrics", h.config.Metrics.Handler())
		}
	})

	return r
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Collect(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = id.String()
	}

	writeText(w, http.StatusOK, strings.Join(lines, "\n"))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.config.MaxUploadSize > 0 {
		body = http.MaxBytesReader(w, body, h.config.MaxUploadSize)
	}

	payload, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Upload exceeds the size limit")
			return
		}
		WriteError(w, http.StatusBadRequest, "bad_request", "Could not read request body")
		return
	}

	id, err := h.service.Create(r.Context(), payload, r.Header.Get("Content-Type"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if h.config.Metrics != nil {
		h.config.Metrics.ObserveUpload(len(payload))
	}

	w.Header().Set("Location", "/images/"+id.String())
	writeText(w, http.StatusCreated, "Image uploaded successfully!\nID: "+id.String())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	content, err := h.service.Read(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeImage(w, h.config.ContentType, content)
}

func (h *Handler) handleMetadata(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.Stat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	writeText(w, http.StatusOK, id.String())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, err)
		return
	}

	if h.config.Metrics != nil {
		h.config.Metrics.ObserveDelete()
	}

	writeText(w, http.StatusOK, "Image deleted successfully!")
}
