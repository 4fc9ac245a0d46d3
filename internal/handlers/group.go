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
	"cohort-chat-service/internal/repositories"
	"cohort-chat-service/internal/telemetry"
)

// GroupHandler manages the group administration endpoints. All of them are
// admin-only and mounted behind auth.RequireAdmin, except ListGroups which
// serves the member view too.
type GroupHandler struct {
	groups repositories.GroupRepository
	users  repositories.UserRepository
	audit  *telemetry.AuditEmitter
	logger *zap.Logger
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groups repositories.GroupRepository, users repositories.UserRepository, audit *telemetry.AuditEmitter, logger *zap.Logger) *GroupHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupHandler{groups: groups, users: users, audit: audit, logger: logger}
}

// CreateGroup handles POST /api/v1/groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, apperr.Validation("invalid request payload"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		renderError(c, apperr.Validation("group name is required"))
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		h.logger.Error("create group failed", zap.Error(err))
		renderError(c, apperr.Internal("could not create group", err))
		return
	}

	h.emitAudit(c, "INFO", fmt.Sprintf("group %d created", group.ID))
	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// ListGroups handles GET /api/v1/groups. Admins see every group, members
// see the groups they belong to.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	identity, _ := auth.IdentityFromContext(c)

	var err error
	var groups any
	if identity.IsAdmin() {
		groups, err = h.groups.ListGroups(c.Request.Context())
	} else {
		groups, err = h.groups.ListGroupsForUser(c.Request.Context(), identity.UserID)
	}
	if err != nil {
		h.logger.Error("list groups failed", zap.Error(err))
		renderError(c, apperr.Internal("failed to load groups", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// AddMember handles POST /api/v1/groups/:group_id/members. The member is
// looked up by email; adding an existing member is a no-op, not an error.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		renderError(c, apperr.Validation("email is required"))
		return
	}

	if _, err := h.groups.GetGroup(c.Request.Context(), groupID); err != nil {
		renderError(c, wrapRepoError(err, "group lookup failed"))
		return
	}

	user, err := h.users.FindByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		renderError(c, wrapRepoError(err, "user lookup failed"))
		return
	}

	if err := h.groups.AddMember(c.Request.Context(), groupID, user.ID); err != nil {
		h.logger.Error("add member failed", zap.Int("group_id", groupID), zap.Error(err))
		renderError(c, apperr.Internal("could not add member", err))
		return
	}

	members, err := h.groups.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("list members failed", zap.Int("group_id", groupID), zap.Error(err))
		renderError(c, apperr.Internal("could not load members", err))
		return
	}

	h.emitAudit(c, "INFO", fmt.Sprintf("user %d added to group %d", user.ID, groupID))
	c.JSON(http.StatusOK, gin.H{"group_id": groupID, "members": members})
}

// RemoveMember handles DELETE /api/v1/groups/:group_id/members/:user_id.
// Removing a non-member is a no-op.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	if _, err := h.groups.GetGroup(c.Request.Context(), groupID); err != nil {
		renderError(c, wrapRepoError(err, "group lookup failed"))
		return
	}

	if err := h.groups.RemoveMember(c.Request.Context(), groupID, userID); err != nil {
		h.logger.Error("remove member failed", zap.Int("group_id", groupID), zap.Error(err))
		renderError(c, apperr.Internal("could not remove member", err))
		return
	}

	h.emitAudit(c, "INFO", fmt.Sprintf("user %d removed from group %d", userID, groupID))
	c.JSON(http.StatusOK, gin.H{})
}

// DeleteGroup handles DELETE /api/v1/groups/:group_id. Deleting a group
// cascades to all of its messages.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID, ok := parseIDParam(c, "group_id")
	if !ok {
		return
	}

	if err := h.groups.DeleteGroup(c.Request.Context(), groupID); err != nil {
		renderError(c, wrapRepoError(err, "could not delete group"))
		return
	}

	h.emitAudit(c, "INFO", fmt.Sprintf("group %d deleted", groupID))
	c.JSON(http.StatusOK, gin.H{})
}

func (h *GroupHandler) emitAudit(c *gin.Context, level, text string) {
	if h.audit == nil {
		return
	}
	h.audit.Emit(c.Request.Context(), level, text, requestIDFromContext(c), auditUserID(c))
}

func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		renderError(c, apperr.Validation("invalid "+name))
		return 0, false
	}
	return id, true
}
