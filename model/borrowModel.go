package model

import "time"

type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusReturned BorrowStatus = "returned"
)

// BorrowRecord links one Book and one User for a bounded period.
// State machine: borrowed -> returned, terminal.
type BorrowRecord struct {
	ID         int64        `json:"id"`
	BookID     int64        `json:"book_id"`
	UserID     int64        `json:"user_id"`
	BorrowDate time.Time    `json:"borrow_date"`
	ReturnDate time.Time    `json:"return_date"`
	Status     BorrowStatus `json:"status"`
}

// BorrowRow is a ledger row joined with book and user info for listings.
type BorrowRow struct {
	ID         int64        `json:"id"`
	BookID     int64        `json:"book_id"`
	BookTitle  string       `json:"book_title"`
	BookAuthor string       `json:"book_author"`
	UserID     int64        `json:"user_id"`
	UserName   string       `json:"user_name"`
	UserEmail  string       `json:"user_email"`
	BorrowDate time.Time    `json:"borrow_date"`
	ReturnDate time.Time    `json:"return_date"`
	Status     BorrowStatus `json:"status"`
}

type BorrowPage struct {
	BorrowRecords []BorrowRow `json:"borrow_records"`
	TotalPages    int64       `json:"total_pages"`
	CurrentPage   int64       `json:"current_page"`
}
