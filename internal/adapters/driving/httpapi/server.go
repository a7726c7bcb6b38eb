// Package httpapi implements the HTTP driving adapter: document
// upload, status polling, source file serving and passage search.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hardwick-labs/paperbase/internal/core/domain"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driven"
	"github.com/hardwick-labs/paperbase/internal/core/ports/driving"
	"github.com/hardwick-labs/paperbase/internal/logger"
)

// Default configuration values.
const (
	DefaultAddr = ":8093"

	// maxUploadBytes bounds multipart uploads held in memory.
	maxUploadBytes = 64 << 20

	shutdownTimeout = 5 * time.Second
)

// Services groups the collaborators the server exposes.
type Services struct {
	Library   driven.Library
	Statuses  driven.StatusStore
	Ingestor  driving.Ingestor
	Retriever driving.Retriever
}

// Server is the HTTP front end. Uploads return immediately with a
// queued status; ingestion continues in the background and is observed
// through the status endpoint.
type Server struct {
	library   driven.Library
	statuses  driven.StatusStore
	ingestor  driving.Ingestor
	retriever driving.Retriever
}

// New creates a server over the given services.
func New(s Services) *Server {
	return &Server{
		library:   s.Library,
		statuses:  s.Statuses,
		ingestor:  s.Ingestor,
		retriever: s.Retriever,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/documents", s.handleUpload)
	mux.HandleFunc("GET /api/documents", s.handleList)
	mux.HandleFunc("GET /api/documents/{slug}/status", s.handleStatus)
	mux.HandleFunc("GET /api/documents/{slug}/file", s.handleFile)
	mux.HandleFunc("GET /api/documents/{slug}/search", s.handleSearch)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http api listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handleUpload accepts a multipart PDF upload, stores it and kicks off
// ingestion in the background. The response carries the assigned slug;
// progress is polled via the status endpoint.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	name := header.Filename
	if name == "" {
		name = "upload-" + uuid.NewString() + ".pdf"
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		writeError(w, http.StatusBadRequest, "only PDF uploads are accepted")
		return
	}

	slug, err := s.library.Add(r.Context(), name, file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "storing document failed")
		return
	}
	if err := s.statuses.Create(r.Context(), domain.StatusRecord{
		Slug:   slug,
		Status: domain.StatusQueued,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, "recording status failed")
		return
	}

	// Ingestion outlives the request; failures land in the status
	// record, not the response.
	go func() {
		if err := s.ingestor.Ingest(context.Background(), slug); err != nil {
			logger.Error("[%s] background ingestion failed: %v", slug, err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"slug":   slug,
		"status": string(domain.StatusQueued),
	})
}

// handleList returns the status records of all stored documents.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	slugs, err := s.library.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing documents failed")
		return
	}

	records := make([]domain.StatusRecord, 0, len(slugs))
	for _, slug := range slugs {
		rec, err := s.statuses.Read(r.Context(), slug)
		if err != nil {
			// A directory without a record is mid-creation; skip it.
			continue
		}
		records = append(records, *rec)
	}
	writeJSON(w, http.StatusOK, records)
}

// handleStatus returns one document's status record.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	rec, err := s.statuses.Read(r.Context(), slug)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("document %q not found", slug))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "reading status failed")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleFile serves the stored source document.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if !s.library.Exists(slug) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("document %q not found", slug))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	http.ServeFile(w, r, s.library.DocumentPath(slug))
}

// handleSearch answers a free-text query against one document.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}
	topK := 0
	if k := r.URL.Query().Get("k"); k != "" {
		parsed, err := strconv.Atoi(k)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "parameter k must be a positive integer")
			return
		}
		topK = parsed
	}

	hits, err := s.retriever.Retrieve(r.Context(), slug, query, topK)
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("document %q not found", slug))
		return
	}
	if err != nil {
		logger.Warn("[%s] search failed: %v", slug, err)
		writeError(w, http.StatusBadGateway, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": hits,
	})
}
