package model

import "time"

type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Category  string    `json:"category"`
	Quantity  int64     `json:"quantity"`
	Available int64     `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// BookPage is one page of catalog results.
type BookPage struct {
	Books       []Book `json:"books"`
	TotalPages  int64  `json:"total_pages"`
	CurrentPage int64  `json:"current_page"`
}

// BookDetail is bibliographic metadata fetched from Open Library.
type BookDetail struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	Description      string   `json:"description"`
	Subjects         []string `json:"subjects,omitempty"`
	FirstPublishYear int      `json:"first_publish_year,omitempty"`
	Covers           []int64  `json:"covers,omitempty"`
}
