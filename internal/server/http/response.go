// Package http is the gin transport layer: JSON envelopes, bearer-token
// middleware and handlers over the identity and room services.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/talkroom/talkroom/internal/common"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, envelope{Status: "success", Message: message, Data: data})
}

// fail maps a service error to a response without leaking internals: the
// message is always the fixed text of the sentinel kind.
func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), envelope{Status: "fail", Message: publicMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrDuplicateMemberID):
		return http.StatusConflict
	case errors.Is(err, common.ErrMemberNotFound), errors.Is(err, common.ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrCredentialMismatch),
		errors.Is(err, common.ErrInvalidRoomPassword),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func publicMessage(err error) string {
	for _, sentinel := range []error{
		common.ErrValidation,
		common.ErrDuplicateMemberID,
		common.ErrMemberNotFound,
		common.ErrCredentialMismatch,
		common.ErrRoomNotFound,
		common.ErrInvalidRoomPassword,
		common.ErrInvalidToken,
		common.ErrTokenExpired,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return common.ErrInternal.Error()
}
