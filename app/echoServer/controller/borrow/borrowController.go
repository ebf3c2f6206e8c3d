package borrow

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"librarymgmt/app/echoServer/jwtx"
	"librarymgmt/model"
	bs "librarymgmt/service/borrow"
	"librarymgmt/util/permission"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc bs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/borrows/borrow
func (h *Controller) Borrow(c echo.Context) error {
	var req BorrowReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	due, err := parseDue(req.ReturnDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid returnDate"})
	}

	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	// Readers may only borrow for themselves; librarians and admins may
	// issue a loan on behalf of any user.
	userID := req.UserID
	role := model.Role(jwtx.RoleFromContext(c))
	if !permission.Allowed(role, permission.ManageBorrows) || userID == 0 {
		userID = uid
	}

	rec, err := h.Svc.Borrow(c.Request().Context(), req.BookID, userID, due)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case bs.ErrUserNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "user not found"})
		case bs.ErrNoCopies:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "no copies available"})
		case bs.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "write conflict, retry"})
		default:
			h.Log.Error("borrow create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message":       "borrowed",
		"borrow_record": rec,
	})
}

// PATCH /v1/borrows/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	rec, err := h.Svc.Return(c.Request().Context(), id)
	if err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrow record not found"})
		case bs.ErrAlreadyReturned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already returned"})
		case bs.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "write conflict, retry"})
		default:
			h.Log.Error("borrow return", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "returned",
		"borrow_record": rec,
	})
}

// GET /v1/borrows
func (h *Controller) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" &&
		status != string(model.BorrowStatusBorrowed) &&
		status != string(model.BorrowStatusReturned) {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
	}
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)

	out, err := h.Svc.List(c.Request().Context(), status, page, limit)
	if err != nil {
		h.Log.Error("borrow list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/borrows/my
func (h *Controller) MyHistory(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.ListByUser(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("borrow history", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// DELETE /v1/borrows/:id
func (h *Controller) Delete(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		switch bs.Code(err) {
		case bs.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "borrow record not found"})
		default:
			h.Log.Error("borrow delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
