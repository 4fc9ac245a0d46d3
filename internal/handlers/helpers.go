package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cohort-chat-service/internal/apperr"
	"cohort-chat-service/internal/auth"
	"cohort-chat-service/internal/repositories"
)

const requestIDContextKey = "request_id"

// groupAuthorizer is the central capability check every group-scoped
// endpoint consults.
type groupAuthorizer interface {
	CanAccessGroup(ctx context.Context, id auth.Identity, groupID int) (auth.Access, error)
}

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func auditUserID(c *gin.Context) *int64 {
	if id, ok := auth.IdentityFromContext(c); ok && id.UserID != 0 {
		value := int64(id.UserID)
		return &value
	}
	return nil
}

// renderError writes the stable error shape: {"error": msg, "kind": kind}.
func renderError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{
		"error": apperr.Message(err),
		"kind":  string(apperr.KindOf(err)),
	})
}

// wrapRepoError translates repository sentinels into client-facing kinds.
func wrapRepoError(err error, internalMsg string) error {
	switch {
	case errors.Is(err, repositories.ErrGroupNotFound):
		return apperr.NotFound("group not found")
	case errors.Is(err, repositories.ErrMessageNotFound):
		return apperr.NotFound("message not found")
	case errors.Is(err, repositories.ErrUserNotFound):
		return apperr.NotFound("user not found")
	default:
		return apperr.Internal(internalMsg, err)
	}
}
