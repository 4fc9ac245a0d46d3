package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"cohort-chat-service/internal/models"
)

// Pagination bounds for ListMessages.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// GroupMessageRepository defines persistence for group messages.
type GroupMessageRepository interface {
	CreateMessage(ctx context.Context, groupID int, senderID int, text string, media *models.Media) (models.GroupMessage, error)
	ListMessages(ctx context.Context, groupID int, page int, limit int) ([]models.GroupMessage, error)
	GetMessage(ctx context.Context, messageID int) (models.GroupMessage, error)
	DeleteMessage(ctx context.Context, messageID int) error
}

// GroupMessageRepo is a sqlx-backed implementation.
type GroupMessageRepo struct {
	db *sqlx.DB
}

// NewGroupMessageRepo constructs a GroupMessageRepo.
func NewGroupMessageRepo(db *sqlx.DB) *GroupMessageRepo {
	return &GroupMessageRepo{db: db}
}

// CreateMessage persists a group message with text, media, or both.
func (r *GroupMessageRepo) CreateMessage(ctx context.Context, groupID int, senderID int, text string, media *models.Media) (models.GroupMessage, error) {
	var mediaURL, mediaType *string
	if media != nil {
		mediaURL = &media.URL
		mediaType = &media.Type
	}

	var msg models.GroupMessage
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO group_messages (group_id, sender_id, text, media_url, media_type)
         VALUES ($1, $2, $3, $4, $5)
         RETURNING id, group_id, sender_id, text, media_url, media_type, created_at`,
		groupID, senderID, text, mediaURL, mediaType).
		Scan(&msg.ID, &msg.GroupID, &msg.SenderID, &msg.Text, &msg.MediaURL, &msg.MediaType, &msg.CreatedAt)
	if err != nil {
		return models.GroupMessage{}, err
	}
	msg.HydrateMedia()
	return msg, nil
}

// ListMessages returns one page of a group's messages. Pages are carved
// newest-first so page 1 always holds the latest messages, then each page is
// reversed so callers see chronological order within the page. A page past
// the end of data yields an empty slice.
func (r *GroupMessageRepo) ListMessages(ctx context.Context, groupID int, page int, limit int) ([]models.GroupMessage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	msgs := []models.GroupMessage{}
	err := r.db.SelectContext(ctx, &msgs,
		`SELECT id, group_id, sender_id, text, media_url, media_type, created_at
         FROM group_messages WHERE group_id=$1
         ORDER BY created_at DESC, id DESC
         LIMIT $2 OFFSET $3`,
		groupID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	for i := range msgs {
		msgs[i].HydrateMedia()
	}
	return msgs, nil
}

// GetMessage fetches a single message.
func (r *GroupMessageRepo) GetMessage(ctx context.Context, messageID int) (models.GroupMessage, error) {
	var msg models.GroupMessage
	err := r.db.GetContext(ctx, &msg,
		`SELECT id, group_id, sender_id, text, media_url, media_type, created_at FROM group_messages WHERE id=$1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.GroupMessage{}, ErrMessageNotFound
	}
	if err != nil {
		return models.GroupMessage{}, err
	}
	msg.HydrateMedia()
	return msg, nil
}

// DeleteMessage removes a message permanently.
func (r *GroupMessageRepo) DeleteMessage(ctx context.Context, messageID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM group_messages WHERE id=$1`, messageID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}
