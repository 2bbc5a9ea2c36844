// internal/interfaces/http/handlers/response.go
package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/your-org/brewflow-storefront/internal/pkg/apperr"
	"github.com/your-org/brewflow-storefront/internal/pkg/notify"
)

// envelope is the body of every successful JSON response
type envelope struct {
	Message string          `json:"message,omitempty"`
	Data    interface{}     `json:"data,omitempty"`
	Notices []notify.Notice `json:"notices"`
}

// errorBody is the body of every failed JSON response
type errorBody struct {
	Error          string          `json:"error"`
	ReauthRequired bool            `json:"reauthRequired,omitempty"`
	Notices        []notify.Notice `json:"notices"`
}

func respond(c *gin.Context, status int, v *visitor, message string, data interface{}) {
	c.JSON(status, envelope{
		Message: message,
		Data:    data,
		Notices: v.notices.Notices(),
	})
}

// respondError maps err to its HTTP status. Authorization failures tell the
// client to send the admin back to the login page.
func respondError(c *gin.Context, v *visitor, err error) {
	_ = c.Error(err)
	c.JSON(apperr.HTTPStatus(err), errorBody{
		Error:          apperr.MessageOf(err),
		ReauthRequired: apperr.Is(err, apperr.KindAuthorization),
		Notices:        v.notices.Notices(),
	})
}

// fail records a notice for err under title, then responds with it.
// Validation problems are warnings, everything else an error.
func fail(c *gin.Context, v *visitor, title string, err error) {
	notice := notify.Error(title, apperr.MessageOf(err))
	if apperr.Is(err, apperr.KindValidation) {
		notice.Level = notify.LevelWarning
	}
	v.notices.Notify(c.Request.Context(), notice)
	respondError(c, v, err)
}

// bindJSON decodes the request body into dst. An empty body leaves dst zeroed
// for the domain layer to validate; a malformed one fails the request.
func bindJSON(c *gin.Context, v *visitor, op, title string, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	v.logger.WithError(err).WithField("op", op).Debug("Rejected request body")
	fail(c, v, title, apperr.Validation(op, "Invalid request data"))
	return false
}
