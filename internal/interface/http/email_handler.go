package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/foundly/foundly-api/pkg/helpers"
	"github.com/foundly/foundly-api/pkg/mailer"
	"github.com/foundly/foundly-api/pkg/response"
	"github.com/foundly/foundly-api/pkg/validation"
)

type EmailHandler struct {
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
}

func NewEmailHandler(pub *helpers.RabbitPublisher, logger *logrus.Logger) *EmailHandler {
	return &EmailHandler{Pub: pub, Logger: logger}
}

type sendEmailRequest struct {
	To       string         `json:"to" binding:"required,email"`
	Subject  string         `json:"subject"`
	Text     string         `json:"text"`
	HTML     string         `json:"html"`
	Template string         `json:"template" binding:"omitempty,oneof=welcome verify_email forgot_password"`
	Data     map[string]any `json:"data"`
}

// Send POST /admin/emails enqueues a job for the worker. Either a
// template name or a raw subject/body must be present.
func (h *EmailHandler) Send(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if req.Template == "" && req.Subject == "" {
		response.Error[any](c, http.StatusBadRequest, "template or subject required", nil)
		return
	}
	if h.Pub == nil {
		response.Error[any](c, http.StatusServiceUnavailable, "email queue unavailable", nil)
		return
	}

	job := mailer.EmailJob{
		To:       req.To,
		Subject:  req.Subject,
		Text:     req.Text,
		HTML:     req.HTML,
		Template: req.Template,
		Data:     req.Data,
	}
	if err := h.Pub.PublishJSON(c.Request.Context(), job); err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).Error("email enqueue failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "enqueue failed", nil)
		return
	}
	response.Success[any](c, http.StatusAccepted, gin.H{"queued": true}, "email queued", nil)
}
