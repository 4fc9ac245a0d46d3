package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cohort-chat-service/internal/models"
)

// GroupRepository abstracts group and membership persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, name string) (models.Group, error)
	GetGroup(ctx context.Context, groupID int) (models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error)
	DeleteGroup(ctx context.Context, groupID int) error
	AddMember(ctx context.Context, groupID int, userID int) error
	RemoveMember(ctx context.Context, groupID int, userID int) error
	ListMembers(ctx context.Context, groupID int) ([]models.GroupMember, error)
	IsMember(ctx context.Context, groupID int, userID int) (bool, error)
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup creates a group with no members.
func (r *GroupRepo) CreateGroup(ctx context.Context, name string) (models.Group, error) {
	var group models.Group
	err := r.db.QueryRowxContext(ctx, `INSERT INTO groups (name) VALUES ($1) RETURNING id, name, created_at`, name).
		Scan(&group.ID, &group.Name, &group.CreatedAt)
	return group, err
}

// GetGroup fetches a single group.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID int) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group, `SELECT id, name, created_at FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// ListGroups returns every group, newest first. Admin overview.
func (r *GroupRepo) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}
	err := r.db.SelectContext(ctx, &groups, `SELECT id, name, created_at FROM groups ORDER BY created_at DESC`)
	return groups, err
}

// ListGroupsForUser returns groups that include the user.
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID int) ([]models.Group, error) {
	groups := []models.Group{}
	err := r.db.SelectContext(ctx, &groups, `SELECT g.id, g.name, g.created_at FROM groups g INNER JOIN group_members gm ON gm.group_id = g.id WHERE gm.user_id=$1 ORDER BY g.created_at DESC`, userID)
	return groups, err
}

// DeleteGroup removes a group, its membership rows and all of its messages
// in one transaction.
func (r *GroupRepo) DeleteGroup(ctx context.Context, groupID int) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM group_messages WHERE group_id=$1`, groupID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id=$1`, groupID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id=$1`, groupID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		err = ErrGroupNotFound
		return err
	}

	return tx.Commit()
}

// AddMember inserts a membership row. Adding an existing member is a no-op.
func (r *GroupRepo) AddMember(ctx context.Context, groupID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT (group_id, user_id) DO NOTHING`, groupID, userID)
	return err
}

// RemoveMember deletes a membership row. Removing a non-member is a no-op.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupID int, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM group_members WHERE group_id=$1 AND user_id=$2`, groupID, userID)
	return err
}

// ListMembers returns the membership rows of a group.
func (r *GroupRepo) ListMembers(ctx context.Context, groupID int) ([]models.GroupMember, error) {
	members := []models.GroupMember{}
	err := r.db.SelectContext(ctx, &members, `SELECT group_id, user_id, added_at FROM group_members WHERE group_id=$1 ORDER BY added_at ASC`, groupID)
	return members, err
}

// IsMember checks membership.
func (r *GroupRepo) IsMember(ctx context.Context, groupID int, userID int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`, groupID, userID)
	return exists, err
}
