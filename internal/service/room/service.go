package room

import (
	"time"

	"github.com/gorilla/websocket"
	roomrepo "github.com/tunesync/server/internal/repository/room"
)

// Service-level sentinels alias the repository's so callers can match with
// errors.Is at either layer.
var (
	ErrPermissionDenied = roomrepo.ErrPermissionDenied
	ErrRoomNotFound     = roomrepo.ErrRoomNotFound
	ErrMemberNotFound   = roomrepo.ErrMemberNotFound
	ErrQueueEmpty       = roomrepo.ErrQueueEmpty
)

type iRoomRepo interface {
	JoinRoom(*roomrepo.JoinRoomParams) (roomrepo.JoinRoomResult, error)
	StartPlayback(*roomrepo.StartPlaybackParams) ([]string, error)
	EndPlayback(*roomrepo.EndPlaybackParams) error
	EnqueueSong(*roomrepo.EnqueueSongParams) (roomrepo.EnqueueSongResult, error)
	DequeueSong(*roomrepo.DequeueSongParams) (roomrepo.DequeueSongResult, error)
	RemoveSession(sessionId string) (roomrepo.RemoveSessionResult, error)
	GetPlayback(roomName string) (roomrepo.Playback, error)
	RoomCount() int
	SessionCount() int
}

type iConnRepo interface {
	RemoveBySessionId(sessionId string) error
	GetConn(sessionId string) (*websocket.Conn, error)
}

type service struct {
	roomRepo iRoomRepo
	connRepo iConnRepo
	// now is the engine's single clock source. All playback start instants
	// and elapsed-time arithmetic live in this clock domain, never in the
	// clients'.
	now func() time.Time
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo) *service {
	return &service{
		roomRepo: roomRepo,
		connRepo: connRepo,
		now:      time.Now,
	}
}
