package repositories

import "errors"

var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUserNotFound    = errors.New("user not found")
)
