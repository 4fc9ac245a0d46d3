package ws

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ConnInfo carries per-connection metadata kept alongside each subscription.
type ConnInfo struct {
	ConnID      string
	UserID      int
	Role        string
	IP          string
	RequestID   string
	ConnectedAt time.Time
}

func newConnID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return ""
	}
	return hex.EncodeToString(buf)
}
