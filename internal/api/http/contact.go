package http

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/portfolio/internal/api/response"
	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
)

// SubmitContact stores a contact form submission and queues notifications.
func (h *Handlers) SubmitContact(c *gin.Context) {
	var sub contact.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.metrics.RecordContact("invalid")
		response.Invalid(c, bindErrors(err)...)
		return
	}

	msg, err := h.contacts.Submit(c.Request.Context(), sub, contact.Meta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		if errors.Is(err, contact.ErrValidation) {
			h.metrics.RecordContact("invalid")
		} else {
			h.metrics.RecordContact("failed")
		}
		h.fail(c, err)
		return
	}

	h.metrics.RecordContact("accepted")
	response.OK(c, contact.SuccessMessage, gin.H{
		"id":           msg.ID,
		"submitted_at": msg.DateSubmitted,
	})
}
