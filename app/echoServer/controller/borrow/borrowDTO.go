package borrow

type BorrowReq struct {
	BookID     int64  `json:"bookId" validate:"required,gt=0"`
	UserID     int64  `json:"userId" validate:"omitempty,gt=0"`
	ReturnDate string `json:"returnDate" validate:"required"`
}
