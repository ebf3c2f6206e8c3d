package book

import (
	"log/slog"
	"net/http"
	"strconv"

	booksvc "librarymgmt/service/book"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/books  (manage_books)
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	b, err := h.Svc.Create(c.Request().Context(), req.Title, req.Author, req.ISBN, req.Category, req.Quantity)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrISBNTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book with this ISBN already exists"})
		case booksvc.ErrBadInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad input"})
		default:
			h.Log.Error("book create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "created", "book": b})
}

// PUT /v1/books/:id  (manage_books)
func (h *Controller) Update(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid json"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	b, err := h.Svc.Update(c.Request().Context(), id, req.Title, req.Author, req.ISBN, req.Category)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrISBNTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book with this ISBN already exists"})
		default:
			h.Log.Error("book update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated", "book": b})
}

// DELETE /v1/books/:id  (manage_books)
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case booksvc.ErrHasActiveLoans:
			return c.JSON(http.StatusConflict, echo.Map{"message": "book has active loans"})
		default:
			h.Log.Error("book delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	out, err := h.Svc.List(c.Request().Context(),
		c.QueryParam("search"), c.QueryParam("category"), page, limit)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/books/search
func (h *Controller) Search(c echo.Context) error {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	out, err := h.Svc.Search(c.Request().Context(),
		c.QueryParam("query"), c.QueryParam("category"), c.QueryParam("author"), page, limit)
	if err != nil {
		h.Log.Error("book search", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	b, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("book detail", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// GET /v1/books/lookup  (Open Library search)
func (h *Controller) RemoteSearch(c echo.Context) error {
	q := c.QueryParam("query")
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "query is required"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	res, err := h.Svc.SearchRemote(c.Request().Context(), q, limit)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "metadata service unavailable"})
		default:
			h.Log.Error("book remote search", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, res)
}

// GET /v1/books/lookup/:key  (Open Library work key)
func (h *Controller) Lookup(c echo.Context) error {
	key := c.Param("key")
	if key == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid key"})
	}
	d, err := h.Svc.Lookup(c.Request().Context(), key)
	if err != nil {
		switch booksvc.Code(err) {
		case booksvc.ErrUpstream:
			return c.JSON(http.StatusBadGateway, echo.Map{"message": "metadata service unavailable"})
		default:
			h.Log.Error("book lookup", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, d)
}
