package room

import "errors"

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNoPlayback       = errors.New("no playback")
	ErrQueueEmpty       = errors.New("queue empty")
)
