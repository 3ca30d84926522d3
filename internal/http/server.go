package httpapp

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/felixge/httpsnoop"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/swaggo/swag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/alphabot-ai/slashboard/internal/auth"
	"github.com/alphabot-ai/slashboard/internal/feed"
	"github.com/alphabot-ai/slashboard/internal/model"
	"github.com/alphabot-ai/slashboard/internal/store"

	_ "github.com/alphabot-ai/slashboard/docs" // swagger docs
)

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "slashboard_http_request_duration_seconds",
	Help:    "HTTP request latency by route group and status.",
	Buckets: prometheus.DefBuckets,
}, []string{"method", "route", "status"})

var tracer = otel.Tracer("slashboard.http")

type Server struct {
	store    store.Store
	feed     *feed.Service
	auth     *auth.Service
	logger   *slog.Logger
	validate *validator.Validate
	metrics  http.Handler
	tracer   trace.Tracer
}

func NewServer(st store.Store, feedSvc *feed.Service, authSvc *auth.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:    st,
		feed:     feedSvc,
		auth:     authSvc,
		logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  promhttp.Handler(),
		tracer:   tracer,
	}
}

// Handler wraps the server with a server span and request logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := routeGroup(r.URL.Path)
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := s.tracer.Start(ctx, r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			))
		defer span.End()
		r = r.WithContext(ctx)

		m := httpsnoop.CaptureMetrics(s, w, r)
		span.SetAttributes(attribute.Int("http.status_code", m.Code))
		if m.Code >= 500 {
			span.SetStatus(codes.Error, http.StatusText(m.Code))
		}
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(m.Code)).Observe(m.Duration.Seconds())

		level := slog.LevelInfo
		switch {
		case m.Code >= 500:
			level = slog.LevelError
		case route == "health" || route == "metrics":
			level = slog.LevelDebug
		}
		s.logger.Log(r.Context(), level, "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.Code,
			"bytes", m.Written,
			"duration", m.Duration)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/health":
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case r.URL.Path == "/metrics":
		s.metrics.ServeHTTP(w, r)
	case strings.HasPrefix(r.URL.Path, "/swagger/"):
		httpSwagger.WrapHandler.ServeHTTP(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/"):
		s.handleAPI(w, r)
	default:
		notFound(w)
	}
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")
	segments := splitPath(path)

	switch {
	case len(segments) == 1 && segments[0] == "boards":
		if r.Method == http.MethodGet {
			s.handleListBoards(w, r)
			return
		}
		if r.Method == http.MethodPost {
			s.handleCreateBoard(w, r)
			return
		}
	case len(segments) == 3 && segments[0] == "boards" && segments[2] == "posts":
		if r.Method == http.MethodGet {
			s.handleBoardPosts(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "posts":
		if r.Method == http.MethodPost {
			s.handleCreatePost(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "posts":
		if r.Method == http.MethodGet {
			s.handleGetPost(w, r, segments[1])
			return
		}
	case len(segments) == 3 && segments[0] == "posts" && segments[2] == "comments":
		if r.Method == http.MethodGet {
			s.handlePostComments(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "comments":
		if r.Method == http.MethodPost {
			s.handleCreateComment(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "votes":
		if r.Method == http.MethodPost {
			s.handleVote(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "items":
		if r.Method == http.MethodDelete {
			s.handleDeleteItem(w, r, segments[1])
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "challenge":
		if r.Method == http.MethodPost {
			s.handleAuthChallenge(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "auth" && segments[1] == "verify":
		if r.Method == http.MethodPost {
			s.handleAuthVerify(w, r)
			return
		}
	case len(segments) == 1 && segments[0] == "accounts":
		if r.Method == http.MethodPost {
			s.handleCreateAccount(w, r)
			return
		}
	case len(segments) == 2 && segments[0] == "accounts":
		if r.Method == http.MethodGet {
			s.handleGetAccount(w, r, segments[1])
			return
		}
	case len(segments) == 3 && segments[0] == "accounts" && segments[2] == "feed":
		if r.Method == http.MethodGet {
			s.handleAccountFeed(w, r, segments[1])
			return
		}
	case len(segments) == 1 && segments[0] == "openapi.json":
		if r.Method == http.MethodGet {
			s.serveOpenAPIJSON(w, r)
			return
		}
	default:
		notFound(w)
		return
	}

	methodNotAllowed(w)
}

// viewer resolves the bearer token if one is sent. Reads never fail on a
// bad token; they fall back to the anonymous view.
func (s *Server) viewer(r *http.Request) model.ViewerID {
	bearer, ok := bearerToken(r)
	if !ok {
		return model.Anonymous
	}
	viewer, err := s.auth.Authenticate(r.Context(), bearer)
	if err != nil {
		return model.Anonymous
	}
	return viewer
}

func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request) (model.ViewerID, bool) {
	bearer, ok := bearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
		return model.Anonymous, false
	}
	viewer, err := s.auth.Authenticate(r.Context(), bearer)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return model.Anonymous, false
	}
	return viewer, true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// decode reads a JSON body into dest and validates it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := readJSON(r.Body, dest); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	if err := s.validate.Struct(dest); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func readJSON(body io.ReadCloser, dest any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

// writeFailure maps domain errors to a status code.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, feed.ErrRetrieval):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, errors.New("content temporarily unavailable"))
	case errors.Is(err, store.ErrNotFound):
		notFound(w)
	case errors.Is(err, store.ErrForbidden):
		writeError(w, http.StatusForbidden, err)
	case errors.Is(err, store.ErrDuplicateSlug),
		errors.Is(err, store.ErrDuplicateName),
		errors.Is(err, store.ErrDuplicateKey):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, store.ErrInvalidParent):
		writeError(w, http.StatusBadRequest, err)
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
	}
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, errors.New("not found"))
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func parseID(value string) (int64, bool) {
	id, err := strconv.ParseInt(value, 10, 64)
	return id, err == nil && id > 0
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// routeGroup keeps metric cardinality bounded by dropping ids.
func routeGroup(path string) string {
	segments := splitPath(path)
	switch {
	case len(segments) == 0:
		return "root"
	case segments[0] != "api":
		return segments[0]
	case len(segments) == 1:
		return "api"
	case len(segments) >= 3:
		return segments[1] + "/" + segments[len(segments)-1]
	}
	return segments[1]
}
