package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"git.home.luguber.info/inful/blogfreeze/internal/feed"
	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/post"
	"git.home.luguber.info/inful/blogfreeze/internal/server/responses"
	"git.home.luguber.info/inful/blogfreeze/internal/version"
)

const (
	postRoute       = post.PagePrefix + "*"
	htmlContentType = "text/html; charset=utf-8"
	pageSuffix      = ".html"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := s.site.RenderIndex()
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeBody(w, htmlContentType, body)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	if !strings.HasSuffix(raw, pageSuffix) {
		s.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("page not found").
			WithContext("path", r.URL.Path).
			Build())
		return
	}

	p, err := s.site.Post(strings.TrimSuffix(raw, pageSuffix))
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	etag := `"` + p.Fingerprint + `"`
	if p.Fingerprint != "" {
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	body, err := s.site.RenderPost(p)
	if err != nil {
		w.Header().Del("ETag")
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeBody(w, htmlContentType, body)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	body, err := s.site.RenderFeed()
	if err != nil {
		s.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	writeBody(w, feed.ContentType, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := responses.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.startTime).Seconds(),
		Posts:     s.site.Index().Len(),
		Visible:   len(s.site.Posts()),
		Debug:     s.site.Preview(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(resp)
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// etagMatches implements the weak comparison of If-None-Match.
func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
