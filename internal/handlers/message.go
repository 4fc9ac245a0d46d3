package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cohort-chat-service/internal/apperr"
	"cohort-chat-service/internal/auth"
	"cohort-chat-service/internal/models"
	"cohort-chat-service/internal/repositories"
	"cohort-chat-service/internal/storage"
	"cohort-chat-service/internal/telemetry"
	"cohort-chat-service/internal/ws"
)

// MessageHandler owns the message ingest and retrieval endpoints. Persist
// always happens before publish: the broadcast is a best-effort side effect
// of a committed write, never the other way around.
type MessageHandler struct {
	messages    repositories.GroupMessageRepository
	authz       groupAuthorizer
	media       storage.MediaStore
	broadcaster ws.Broadcaster
	audit       *telemetry.AuditEmitter
	logger      *zap.Logger
}

// NewMessageHandler constructs a MessageHandler.
func NewMessageHandler(messages repositories.GroupMessageRepository, authz groupAuthorizer, media storage.MediaStore, broadcaster ws.Broadcaster, audit *telemetry.AuditEmitter, logger *zap.Logger) *MessageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageHandler{
		messages:    messages,
		authz:       authz,
		media:       media,
		broadcaster: broadcaster,
		audit:       audit,
		logger:      logger,
	}
}

// PostMessage handles POST /api/v1/groups/:group_id/messages. A JSON body
// carries text; a multipart body carries a media file with optional text.
func (m *MessageHandler) PostMessage(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	access, err := m.authz.CanAccessGroup(c.Request.Context(), identity, groupID)
	if err != nil {
		m.logger.Error("membership check failed", zap.Int("group_id", groupID), zap.Error(err))
		renderError(c, apperr.Internal("membership check failed", err))
		return
	}
	if !access.Write {
		renderError(c, apperr.Authorization("not allowed to post in this group"))
		return
	}

	text, media, err := m.extractBody(c)
	if err != nil {
		renderError(c, err)
		return
	}
	if text == "" && media == nil {
		renderError(c, apperr.Validation("message requires text or media"))
		return
	}

	msg, err := m.messages.CreateMessage(c.Request.Context(), groupID, identity.UserID, text, media)
	if err != nil {
		m.logger.Error("store message failed", zap.Int("group_id", groupID), zap.Error(err))
		renderError(c, apperr.Internal("failed to store message", err))
		return
	}

	// The message is committed; subscribers hear about it regardless of
	// what happens to this response.
	m.broadcaster.BroadcastMessageCreated(groupID, msg)
	m.emitAudit(c, "INFO", fmt.Sprintf("message %d posted to group %d", msg.ID, groupID))
	c.JSON(http.StatusCreated, msg)
}

// extractBody pulls text and an optional media upload from the request.
func (m *MessageHandler) extractBody(c *gin.Context) (string, *models.Media, error) {
	contentType := c.ContentType()
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var req struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", nil, apperr.Validation("invalid request payload")
		}
		return strings.TrimSpace(req.Text), nil, nil
	}

	text := strings.TrimSpace(c.PostForm("text"))

	fileHeader, err := c.FormFile("media")
	if err != nil {
		if text == "" {
			return "", nil, apperr.Validation("message requires text or media")
		}
		return text, nil, nil
	}

	if m.media == nil {
		return "", nil, apperr.Internal("media storage unavailable", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, apperr.Validation("unreadable media upload")
	}
	defer file.Close()

	media, err := m.media.Upload(c.Request.Context(), fileHeader.Filename, file, fileHeader.Size, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		m.logger.Error("media upload failed", zap.Error(err))
		return "", nil, apperr.Internal("failed to store media", err)
	}
	return text, &media, nil
}

// ListMessages handles GET /api/v1/groups/:group_id/messages?page=&limit=.
// A page past the end of data returns an empty list, never an error.
func (m *MessageHandler) ListMessages(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}

	identity, _ := auth.IdentityFromContext(c)
	access, err := m.authz.CanAccessGroup(c.Request.Context(), identity, groupID)
	if err != nil {
		m.logger.Error("membership check failed", zap.Int("group_id", groupID), zap.Error(err))
		renderError(c, apperr.Internal("membership check failed", err))
		return
	}
	if !access.Read {
		renderError(c, apperr.Authorization("not a member"))
		return
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", repositories.DefaultPageSize)

	msgs, err := m.messages.ListMessages(c.Request.Context(), groupID, page, limit)
	if err != nil {
		m.logger.Error("list messages failed", zap.Int("group_id", groupID), zap.Error(err))
		renderError(c, apperr.Internal("failed to load messages", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// DeleteMessage handles DELETE /api/v1/group-messages/:message_id. Admin
// only, regardless of the original sender.
func (m *MessageHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := parseIDParam(c, "message_id")
	if !ok {
		return
	}

	msg, err := m.messages.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		renderError(c, wrapRepoError(err, "message lookup failed"))
		return
	}

	if err := m.messages.DeleteMessage(c.Request.Context(), messageID); err != nil {
		renderError(c, wrapRepoError(err, "could not delete message"))
		return
	}

	m.broadcaster.BroadcastMessageDeleted(msg.GroupID, messageID)
	m.emitAudit(c, "INFO", fmt.Sprintf("message %d deleted from group %d", messageID, msg.GroupID))
	c.JSON(http.StatusOK, gin.H{})
}

func (m *MessageHandler) emitAudit(c *gin.Context, level, text string) {
	if m.audit == nil {
		return
	}
	m.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUserID(c))
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		return fallback
	}
	return val
}
