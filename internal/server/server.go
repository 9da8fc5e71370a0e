// Package server exposes the engine to a local front end over HTTP. Uploads
// are processed in memory and never written to disk; the listener refuses
// non-loopback addresses.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/unformat/shredder/internal/classify"
	"github.com/unformat/shredder/internal/engine"
	"github.com/unformat/shredder/internal/session"
	"github.com/unformat/shredder/internal/types"
)

// ErrNotLoopback is returned by ListenAndServe for a non-local address.
var ErrNotLoopback = errors.New("server: refusing to bind a non-loopback address")

// Server holds the HTTP dependencies.
type Server struct {
	eng      *engine.Engine
	log      *slog.Logger
	maxBytes int64
	origins  []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// WithMaxBytes caps the upload size.
func WithMaxBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// WithOrigins sets the CORS allow-list.
func WithOrigins(origins ...string) Option { return func(s *Server) { s.origins = origins } }

// New creates a Server.
func New(eng *engine.Engine, opts ...Option) *Server {
	s := &Server{
		eng:      eng,
		log:      slog.Default(),
		maxBytes: 64 << 20,
		origins:  []string{"http://localhost:*", "http://127.0.0.1:*"},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Shredder-Category"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Post("/inspect", s.inspect)
		r.Post("/shred", s.shred)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// CheckLoopback reports whether addr binds only a local interface.
func CheckLoopback(addr string) error {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if host == "localhost" {
		return nil
	}
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLoopback() {
		return fmt.Errorf("%w: %q", ErrNotLoopback, addr)
	}
	return nil
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := CheckLoopback(addr); err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type inspectResponse struct {
	SessionID string             `json:"session_id"`
	File      string             `json:"file"`
	Size      int64              `json:"size"`
	Category  types.Category     `json:"category"`
	Findings  []types.Finding    `json:"findings"`
	Log       []session.LogEntry `json:"log"`
}

func (s *Server) inspect(w http.ResponseWriter, r *http.Request) {
	f, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	sess := session.New(s.eng)
	if _, err := sess.Load(f); err != nil {
		s.fail(w, err)
		return
	}
	st := sess.Snapshot()
	writeJSON(w, http.StatusOK, inspectResponse{
		SessionID: st.ID,
		File:      st.File,
		Size:      st.Size,
		Category:  st.Category,
		Findings:  st.Findings,
		Log:       st.Log,
	})
}

func (s *Server) shred(w http.ResponseWriter, r *http.Request) {
	f, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	sess := session.New(s.eng)
	if _, err := sess.Load(f); err != nil {
		s.fail(w, err)
		return
	}
	art, err := sess.Shred()
	if err != nil {
		s.fail(w, err)
		return
	}
	st := sess.Snapshot()
	w.Header().Set("Content-Type", art.MIME)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": art.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Data)))
	w.Header().Set("X-Shredder-Category", st.Category.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.Data)
}

// readUpload reads the multipart "file" field into memory. The declared
// content type is kept unless the client sent a generic one.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (engine.File, bool) {
	limit := s.maxBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	// The whole body fits under the memory limit, so no part spills to a temp file.
	if err := r.ParseMultipartForm(limit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return engine.File{}, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return engine.File{}, false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return engine.File{}, false
	}
	defer file.Close()

	if header.Size > s.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return engine.File{}, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read file")
		return engine.File{}, false
	}
	mt := header.Header.Get("Content-Type")
	if mt == "" || mt == "application/octet-stream" {
		mt = classify.Sniff(data, header.Filename)
	}
	return engine.File{Name: header.Filename, MIME: mt, Data: data}, true
}

// fail maps engine errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var de *engine.DecodeError
	var ee *engine.EncodeError
	switch {
	case errors.Is(err, engine.ErrUnsupportedFileType):
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.As(err, &de):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &ee):
		s.log.Error("encode failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.log.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
