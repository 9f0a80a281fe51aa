package httpserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogfreeze/internal/config"
	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/index"
	"git.home.luguber.info/inful/blogfreeze/internal/metrics"
	"git.home.luguber.info/inful/blogfreeze/internal/post"
	"git.home.luguber.info/inful/blogfreeze/internal/server/responses"
	"git.home.luguber.info/inful/blogfreeze/internal/site"
)

func newTestSite(t *testing.T) *site.Site {
	t.Helper()
	root := filepath.Join(t.TempDir(), "posts")
	files := map[string]string{
		"jan.md":       "title: January\ndate: 2021-01-01\npublished: true\n\nJanuary body.\n",
		"notes/mar.md": "title: March\ndate: 2021-03-01\npublished: true\n\nMarch body.\n",
		"feb.md":       "title: February\ndate: 2021-02-01\npublished: false\n\nDraft.\n",
	}
	for name, body := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	}

	cfg := config.Defaults()
	cfg.Content.Root = root
	cfg.Site.BaseURL = "http://octocat-cafe.me"
	s, err := site.Load(cfg, nil)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, h http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestIndex(t *testing.T) {
	h := New(newTestSite(t), Options{}).Handler()

	w := get(t, h, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, htmlContentType, w.Header().Get("Content-Type"))

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	var hrefs []string
	doc.Find("ul.posts a").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		hrefs = append(hrefs, href)
	})
	require.Equal(t, []string{"/blog/notes/mar.html", "/blog/jan.html"}, hrefs)
}

func TestPost(t *testing.T) {
	h := New(newTestSite(t), Options{}).Handler()

	w := get(t, h, "/blog/notes/mar.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "<p>March body.</p>")
	require.NotEmpty(t, w.Header().Get("ETag"))

	notModified := get(t, h, "/blog/notes/mar.html", http.Header{"If-None-Match": {w.Header().Get("ETag")}})
	require.Equal(t, http.StatusNotModified, notModified.Code)
	require.Empty(t, notModified.Body.String())

	stale := get(t, h, "/blog/notes/mar.html", http.Header{"If-None-Match": {`"other"`}})
	require.Equal(t, http.StatusOK, stale.Code)
}

func TestPost_UnpublishedReachable(t *testing.T) {
	h := New(newTestSite(t), Options{}).Handler()
	require.Equal(t, http.StatusOK, get(t, h, "/blog/feb.html", nil).Code)
}

func TestPost_NotFound(t *testing.T) {
	h := New(newTestSite(t), Options{}).Handler()

	for _, path := range []string{"/blog/missing.html", "/blog/jan", "/blog/", "/nope"} {
		w := get(t, h, path, nil)
		require.Equal(t, http.StatusNotFound, w.Code, path)
	}

	w := get(t, h, "/blog/missing.html", http.Header{"Accept": {"application/json"}})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

type failingRenderer struct{}

func (failingRenderer) Render([]byte) ([]byte, error) { return nil, stderrors.New("boom") }

func TestPost_RenderFailureIsIsolated(t *testing.T) {
	good := newTestSite(t)
	idx := index.New()
	for _, p := range good.Index().Ordered(true) {
		idx.Insert(p)
	}
	broken := post.New("broken", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), []byte("x"), failingRenderer{})
	broken.Title = "Broken"
	idx.Insert(broken)

	tpl, err := site.LoadTemplates("")
	require.NoError(t, err)
	h := New(site.New(good.Config(), idx, tpl), Options{}).Handler()

	w := get(t, h, "/blog/broken.html", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Empty(t, w.Header().Get("ETag"))

	require.Equal(t, http.StatusOK, get(t, h, "/blog/jan.html", nil).Code)
	require.Equal(t, http.StatusOK, get(t, h, "/", nil).Code)
}

func TestFeed(t *testing.T) {
	h := New(newTestSite(t), Options{}).Handler()

	w := get(t, h, "/feed.atom", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/atom+xml; charset=utf-8", w.Header().Get("Content-Type"))
	require.Contains(t, w.Body.String(), "<title>Recent Articles</title>")
	require.Equal(t, 2, strings.Count(w.Body.String(), "<entry>"))
}

func TestHead(t *testing.T) {
	h := New(newTestSite(t), Options{}).Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealth(t *testing.T) {
	h := New(newTestSite(t), Options{}).Handler()

	w := get(t, h, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp responses.HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, 3, resp.Posts)
	require.Equal(t, 2, resp.Visible)
	require.False(t, resp.Debug)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(reg)
	h := New(newTestSite(t), Options{Recorder: rec, MetricsHandler: metrics.HTTPHandler(reg)}).Handler()

	require.Equal(t, http.StatusOK, get(t, h, "/blog/jan.html", nil).Code)

	w := get(t, h, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `blogfreeze_http_requests_total{route="/blog/*",status="200"} 1`)

	withoutMetrics := New(newTestSite(t), Options{}).Handler()
	require.Equal(t, http.StatusNotFound, get(t, withoutMetrics, "/metrics", nil).Code)
}

func TestStartStop(t *testing.T) {
	srv := New(newTestSite(t), Options{Addr: "127.0.0.1:0"})
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Stop(ctx))
	})

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStart_AddressInUse(t *testing.T) {
	first := New(newTestSite(t), Options{Addr: "127.0.0.1:0"})
	require.NoError(t, first.Start(context.Background()))
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := New(newTestSite(t), Options{Addr: first.Addr()})
	err := second.Start(context.Background())
	require.True(t, errors.HasCategory(err, errors.CategoryRuntime), "got %v", err)
}
