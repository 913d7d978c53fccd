package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/model"
	"github.com/ritualplanner/ritualplanner/internal/repository"
)

// PaymentHandler serves read and edit access to payment records. Payments
// are created through the task aggregate, never directly; ownership is
// resolved through the task linking each payment.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
}

func NewPaymentHandler(payments *repository.PaymentRepo) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

// Get handles GET /api/payment/:id.
func (h *PaymentHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Payments.GetByID(ctx, c.Param("id"), uid)
	if err != nil {
		return writeRepoErr(c, err, "failed to fetch payment")
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /api/payment: every payment reachable from the user's
// tasks, whether main or assistant payments.
func (h *PaymentHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.Payments.ListForUser(ctx, uid, parseListQuery(c))
	if err != nil {
		return writeRepoErr(c, err, "failed to list payments")
	}
	return c.JSON(http.StatusOK, list)
}

// Update handles PUT /api/payment/modify/update/:id, typically to record a
// paid amount or flip the payment status after settlement.
func (h *PaymentHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var p model.Payment
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p.ID = c.Param("id")

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Payments.Update(ctx, &p, uid); err != nil {
		return writeRepoErr(c, err, "failed to update payment")
	}
	return c.JSON(http.StatusOK, p)
}

// Delete handles DELETE /api/payment/modify/delete/:id. Payments still
// linked to a task respond 409; detach them through a task update first.
func (h *PaymentHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Payments.Delete(ctx, c.Param("id"), uid); err != nil {
		return writeRepoErr(c, err, "failed to delete payment")
	}
	return c.NoContent(http.StatusNoContent)
}
