package models

import "time"

// Group is an administrator-defined chat cohort.
type Group struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// GroupMember is a row in the group membership table.
type GroupMember struct {
	GroupID int       `db:"group_id" json:"group_id"`
	UserID  int       `db:"user_id" json:"user_id"`
	AddedAt time.Time `db:"added_at" json:"added_at"`
}

// Media kinds for group message attachments.
const (
	MediaImage = "image"
	MediaFile  = "file"
)

// Media describes an uploaded attachment referenced by a message.
type Media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// GroupMessage is a message sent in a group. At least one of Text and
// Media is always present; the database enforces the same constraint.
type GroupMessage struct {
	ID        int       `db:"id" json:"id"`
	GroupID   int       `db:"group_id" json:"group_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Text      string    `db:"text" json:"text,omitempty"`
	MediaURL  *string   `db:"media_url" json:"-"`
	MediaType *string   `db:"media_type" json:"-"`
	Media     *Media    `db:"-" json:"media,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HydrateMedia fills the JSON-facing Media view from the scanned columns.
// Repositories call this after every read.
func (m *GroupMessage) HydrateMedia() {
	if m.MediaURL == nil || *m.MediaURL == "" {
		m.Media = nil
		return
	}
	kind := MediaFile
	if m.MediaType != nil && *m.MediaType != "" {
		kind = *m.MediaType
	}
	m.Media = &Media{URL: *m.MediaURL, Type: kind}
}

// Group event actions pushed over websocket connections.
const (
	ActionCreated = "created"
	ActionDeleted = "deleted"
)

// GroupEvent is emitted to every subscriber of a group's topic.
type GroupEvent struct {
	Event     string        `json:"event"`
	Action    string        `json:"action"`
	Message   *GroupMessage `json:"message,omitempty"`
	MessageID int           `json:"message_id,omitempty"`
}
