package openlibraryrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"librarymgmt/model"
	"librarymgmt/util/httpx"
)

type httpRepo struct {
	baseURL string
	client  *http.Client
	group   singleflight.Group
}

// NewHTTP returns an Open Library client. Identical lookups issued while
// one is already in flight share a single upstream request.
func NewHTTP(baseURL string) Repo {
	return &httpRepo{baseURL: strings.TrimRight(baseURL, "/"), client: httpx.Client()}
}

func (r *httpRepo) GetWork(ctx context.Context, key string) (*model.BookDetail, error) {
	v, err, _ := r.group.Do("work:"+key, func() (any, error) {
		return r.fetchWork(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.BookDetail), nil
}

func (r *httpRepo) fetchWork(ctx context.Context, key string) (*model.BookDetail, error) {
	u := fmt.Sprintf("%s/works/%s.json", r.baseURL, url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openlibrary work fetch failed: %s", resp.Status)
	}

	var raw struct {
		Key         string   `json:"key"`
		Title       string   `json:"title"`
		Description any      `json:"description"`
		Subjects    []string `json:"subjects"`
		Authors     []struct {
			Author struct {
				Key string `json:"key"`
			} `json:"author"`
			Name string `json:"name"`
		} `json:"authors"`
		FirstPublishYear int     `json:"first_publish_year"`
		Covers           []int64 `json:"covers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	out := &model.BookDetail{
		Key:              raw.Key,
		Title:            raw.Title,
		Description:      extractDescription(raw.Description),
		Subjects:         raw.Subjects,
		FirstPublishYear: raw.FirstPublishYear,
		Covers:           raw.Covers,
	}
	for _, a := range raw.Authors {
		name := a.Name
		if name == "" {
			name = a.Author.Key
		}
		if name != "" {
			out.Authors = append(out.Authors, name)
		}
	}
	return out, nil
}

func (r *httpRepo) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	key := "search:" + query + ":" + strconv.Itoa(limit)
	v, err, _ := r.group.Do(key, func() (any, error) {
		return r.fetchSearch(ctx, query, limit)
	})
	if err != nil {
		return nil, err
	}
	return v.(*SearchResult), nil
}

func (r *httpRepo) fetchSearch(ctx context.Context, query string, limit int) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))
	u := r.baseURL + "/search.json?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openlibrary search failed: %s", resp.Status)
	}

	var raw struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			Key              string   `json:"key"`
			Title            string   `json:"title"`
			AuthorName       []string `json:"author_name"`
			FirstPublishYear int      `json:"first_publish_year"`
			ISBN             []string `json:"isbn"`
		} `json:"docs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	out := &SearchResult{NumFound: raw.NumFound}
	for _, d := range raw.Docs {
		out.Docs = append(out.Docs, SearchDoc{
			Key:              d.Key,
			Title:            d.Title,
			AuthorNames:      d.AuthorName,
			FirstPublishYear: d.FirstPublishYear,
			ISBNs:            d.ISBN,
		})
	}
	return out, nil
}

func extractDescription(d any) string {
	switch v := d.(type) {
	case string:
		return v
	case map[string]any:
		if s, ok := v["value"].(string); ok {
			return s
		}
	}
	return ""
}
