// Package index keeps parsed posts ordered by date, newest first.
package index

import (
	"log/slog"
	"slices"
	"sort"
	"sync"

	"git.home.luguber.info/inful/blogfreeze/internal/content"
	"git.home.luguber.info/inful/blogfreeze/internal/foundation/errors"
	"git.home.luguber.info/inful/blogfreeze/internal/logfields"
	"git.home.luguber.info/inful/blogfreeze/internal/markdown"
	"git.home.luguber.info/inful/blogfreeze/internal/post"
)

// Index maps urlpaths to posts and iterates them in non-increasing date
// order. Posts with the same date are ordered by urlpath.
//
// An Index is safe for concurrent use. In practice it is written once during
// Build and only read afterwards.
type Index struct {
	mu    sync.RWMutex
	posts map[string]*post.Post
	keys  []string // sorted by (date desc, urlpath asc)
}

// New returns an empty index.
func New() *Index {
	return &Index{posts: make(map[string]*post.Post)}
}

// Build parses every file and indexes the result. The first file that fails
// to parse aborts the build; no partial index is returned. Two files that
// map to the same urlpath are a configuration error.
func Build(files []content.File, ext string, r markdown.Renderer) (*Index, error) {
	idx := New()
	sources := make(map[string]string, len(files))

	for _, f := range files {
		p, err := post.Parse(f, ext, r)
		if err != nil {
			return nil, err
		}
		if prev, ok := sources[p.URLPath]; ok {
			return nil, errors.ConfigError("two content files map to the same urlpath").
				WithContext("urlpath", p.URLPath).
				WithContext("file", f.Path).
				WithContext("other_file", prev).
				Build()
		}
		sources[p.URLPath] = f.Path
		idx.Insert(p)
	}

	slog.Debug("Built post index", logfields.Count(idx.Len()))
	return idx, nil
}

// Insert adds p under p.URLPath, replacing any post already stored there.
func (idx *Index) Insert(p *post.Post) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.posts[p.URLPath]; exists {
		idx.removeKey(p.URLPath)
	}
	idx.posts[p.URLPath] = p

	i := idx.search(p)
	idx.keys = append(idx.keys, "")
	copy(idx.keys[i+1:], idx.keys[i:])
	idx.keys[i] = p.URLPath
}

// Get returns the post stored under urlpath, or a NotFoundError.
func (idx *Index) Get(urlpath string) (*post.Post, error) {
	idx.mu.RLock()
	p, ok := idx.posts[urlpath]
	idx.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundError("post not found").
			WithContext("urlpath", urlpath).
			Build()
	}
	return p, nil
}

// Ordered returns a snapshot of the posts, newest first. Unpublished posts
// are left out unless includeUnpublished is set.
func (idx *Index) Ordered(includeUnpublished bool) []*post.Post {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]*post.Post, 0, len(idx.keys))
	for _, k := range idx.keys {
		p := idx.posts[k]
		if p.Visible(includeUnpublished) {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of indexed posts, published or not.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.keys)
}

// FilePaths returns the source file of every indexed post in index order.
func (idx *Index) FilePaths() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]string, 0, len(idx.keys))
	for _, k := range idx.keys {
		if fp := idx.posts[k].FilePath; fp != "" {
			out = append(out, fp)
		}
	}
	return out
}

// search returns the insertion position for p. Callers hold the write lock.
func (idx *Index) search(p *post.Post) int {
	return sort.Search(len(idx.keys), func(i int) bool {
		return !before(idx.posts[idx.keys[i]], p)
	})
}

// removeKey drops urlpath from the key slice.
func (idx *Index) removeKey(urlpath string) {
	if i := slices.Index(idx.keys, urlpath); i >= 0 {
		idx.keys = slices.Delete(idx.keys, i, i+1)
	}
}

// before reports whether a sorts ahead of b.
func before(a, b *post.Post) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.URLPath < b.URLPath
}
