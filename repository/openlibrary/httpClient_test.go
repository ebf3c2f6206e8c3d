package openlibraryrepo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetWork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/works/OL45883W.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"key": "/works/OL45883W",
			"title": "Dune",
			"description": {"value": "Desert planet."},
			"subjects": ["Science fiction"],
			"covers": [123]
		}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	d, err := repo.GetWork(context.Background(), "OL45883W")
	require.NoError(t, err)
	require.Equal(t, "Dune", d.Title)
	require.Equal(t, "Desert planet.", d.Description)
	require.Equal(t, []string{"Science fiction"}, d.Subjects)
	require.Equal(t, []int64{123}, d.Covers)
}

func TestGetWork_StringDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"key": "/works/OL1W", "title": "T", "description": "plain"}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	d, err := repo.GetWork(context.Background(), "OL1W")
	require.NoError(t, err)
	require.Equal(t, "plain", d.Description)
}

func TestGetWork_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	_, err := repo.GetWork(context.Background(), "OL1W")
	require.Error(t, err)
}

func TestGetWork_CollapsesConcurrentLookups(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"key": "/works/OL1W", "title": "T"}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)

	const n = 5
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			d, err := repo.GetWork(context.Background(), "OL1W")
			require.NoError(t, err)
			require.Equal(t, "T", d.Title)
		}()
	}
	close(start)
	// let the callers pile onto the in-flight request before releasing it
	for hits.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.Equal(t, int64(1), hits.Load())
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search.json", r.URL.Path)
		require.Equal(t, "dune", r.URL.Query().Get("q"))
		require.Equal(t, "3", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{
			"numFound": 1,
			"docs": [{"key": "/works/OL45883W", "title": "Dune", "author_name": ["Frank Herbert"], "first_publish_year": 1965}]
		}`))
	}))
	defer srv.Close()

	repo := NewHTTP(srv.URL)
	res, err := repo.Search(context.Background(), "dune", 3)
	require.NoError(t, err)
	require.Equal(t, 1, res.NumFound)
	require.Len(t, res.Docs, 1)
	require.Equal(t, "Dune", res.Docs[0].Title)
	require.Equal(t, []string{"Frank Herbert"}, res.Docs[0].AuthorNames)
	require.Equal(t, 1965, res.Docs[0].FirstPublishYear)
}
