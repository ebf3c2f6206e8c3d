package openlibraryrepo

import (
	"context"

	"librarymgmt/model"
)

type SearchResult struct {
	NumFound int         `json:"num_found"`
	Docs     []SearchDoc `json:"docs"`
}

type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorNames      []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBNs            []string `json:"isbn,omitempty"`
}

type Repo interface {
	GetWork(ctx context.Context, key string) (*model.BookDetail, error)
	Search(ctx context.Context, query string, limit int) (*SearchResult, error)
}
