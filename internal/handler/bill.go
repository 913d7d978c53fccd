package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// BillHandler serves CRUD for bills. Bills are aggregates over their item
// lines; the stored total is always recomputed from the items server-side,
// so a client-sent totalamount is ignored.
type BillHandler struct {
	Bills *repository.BillRepo
}

func NewBillHandler(bills *repository.BillRepo) *BillHandler {
	return &BillHandler{Bills: bills}
}

// Create handles POST /api/bills/create.
func (h *BillHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var b model.Bill
	if err := c.Bind(&b); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(b.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	b.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Bills.Create(ctx, &b); err != nil {
		return writeRepoErr(c, err, "failed to create bill")
	}
	return c.JSON(http.StatusCreated, b)
}

// Get handles GET /api/bills/:id, items included.
func (h *BillHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	b, err := h.Bills.GetByID(ctx, c.Param("id"), uid)
	if err != nil {
		return writeRepoErr(c, err, "failed to fetch bill")
	}
	return c.JSON(http.StatusOK, b)
}

// List handles GET /api/bills with the shared filter set; status filters on
// paymentstatus.
func (h *BillHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Bills.List(ctx, uid, parseListQuery(c))
	if err != nil {
		return writeRepoErr(c, err, "failed to list bills")
	}
	return c.JSON(http.StatusOK, list)
}

// Update handles PUT /api/bills/modify/update/:id. The request carries the
// full desired item set; previous items are discarded and the total is
// recomputed from the new set.
func (h *BillHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var b model.Bill
	if err := c.Bind(&b); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(b.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	b.ID = c.Param("id")
	b.UserID = uid

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Bills.Update(ctx, &b, uid); err != nil {
		return writeRepoErr(c, err, "failed to update bill")
	}
	return c.JSON(http.StatusOK, b)
}

// Delete handles DELETE /api/bills/modify/delete/:id.
func (h *BillHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Bills.Delete(ctx, c.Param("id"), uid); err != nil {
		return writeRepoErr(c, err, "failed to delete bill")
	}
	return c.NoContent(http.StatusNoContent)
}
