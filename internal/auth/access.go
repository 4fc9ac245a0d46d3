package auth

import (
	"context"

	"cohort-chat-service/internal/models"
)

// Access is the capability set a caller holds on one group. Every
// group-scoped endpoint and the websocket join path consult this single
// check instead of re-deriving role rules.
type Access struct {
	Read     bool
	Write    bool
	Moderate bool
}

// MembershipChecker is the slice of the group repository the authorizer
// needs.
type MembershipChecker interface {
	IsMember(ctx context.Context, groupID int, userID int) (bool, error)
}

// Authorizer resolves group capabilities for an identity.
type Authorizer struct {
	members MembershipChecker
}

// NewAuthorizer constructs an Authorizer.
func NewAuthorizer(members MembershipChecker) *Authorizer {
	return &Authorizer{members: members}
}

// CanAccessGroup computes the caller's capabilities on a group.
// Admins hold every capability on every group. Members read; premium
// members also write. Everyone else gets nothing.
func (a *Authorizer) CanAccessGroup(ctx context.Context, id Identity, groupID int) (Access, error) {
	if id.IsAdmin() {
		return Access{Read: true, Write: true, Moderate: true}, nil
	}

	member, err := a.members.IsMember(ctx, groupID, id.UserID)
	if err != nil {
		return Access{}, err
	}
	if !member {
		return Access{}, nil
	}

	return Access{Read: true, Write: id.Role == models.RolePremium}, nil
}
