package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ritualplanner/ritualplanner/internal/config"
	"github.com/ritualplanner/ritualplanner/internal/notify"
	"github.com/ritualplanner/ritualplanner/internal/queue"
)

// ContactHandler forwards contact-form submissions to the operator inbox.
// The endpoint is public; submissions go through the notification queue like
// every other outbound mail.
type ContactHandler struct {
	Cfg config.Config
}

func NewContactHandler(cfg config.Config) *ContactHandler {
	return &ContactHandler{Cfg: cfg}
}

type contactReq struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(c echo.Context) error {
	var req contactReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Email == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and message are required"})
	}

	go func(r contactReq, inbox string) {
		_ = notify.PublishEmail(context.Background(), queue.EmailRequestedEvent{
			Kind: queue.EmailContact,
			To:   inbox,
			Data: map[string]string{"Name": r.Name, "Email": r.Email, "Message": r.Message},
		})
	}(req, h.Cfg.ContactInbox)

	return c.JSON(http.StatusAccepted, echo.Map{"message": "thanks, we received your message"})
}
