package book

type CreateBookReq struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
	Category string `json:"category" validate:"required"`
	Quantity int64  `json:"quantity" validate:"required,gte=0"`
}

type UpdateBookReq struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
	Category string `json:"category" validate:"required"`
}
