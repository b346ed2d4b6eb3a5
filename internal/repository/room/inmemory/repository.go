package inmemory

import (
	"sync"

	"github.com/tunesync/server/internal/repository/room"
)

// Repo is the process-scoped room table. Rooms are memory-resident and
// ephemeral: a room exists exactly while it has at least one member, and
// every record is discarded on process restart.
//
// Each exported method performs a complete state transition under the store
// mutex, so concurrent sessions never observe a half-applied mutation.
type Repo struct {
	mu          sync.RWMutex
	rooms       map[string]*roomState
	sessionRoom map[string]string
}

type roomState struct {
	members  map[string]struct{}
	adminId  string
	playback *room.Playback
	queue    []room.QueuedSong
}

func NewRepo() *Repo {
	return &Repo{
		rooms:       make(map[string]*roomState),
		sessionRoom: make(map[string]string),
	}
}

// JoinRoom adds the session to the named room, creating the room when it is
// unseen. An admin claim always succeeds, superseding any previous admin.
// A session already present in another room leaves that room first; the
// result carries the left room's remaining state for notification fan-out.
func (r *Repo) JoinRoom(params *room.JoinRoomParams) (room.JoinRoomResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result room.JoinRoomResult

	if prevRoom, ok := r.sessionRoom[params.SessionId]; ok {
		if prevRoom == params.RoomName {
			// Re-join of the same room: refresh the admin claim only.
			state := r.rooms[prevRoom]
			if params.IsAdmin {
				state.adminId = params.SessionId
			}
			result.MemberIds = memberIds(state)
			result.MemberCount = len(state.members)
			result.Playback = state.playback.Clone()
			result.Queue = cloneQueue(state.queue)
			return result, nil
		}

		left := r.removeSessionLocked(params.SessionId)
		result.Left = &left
	}

	state, ok := r.rooms[params.RoomName]
	if !ok {
		state = &roomState{members: make(map[string]struct{})}
		r.rooms[params.RoomName] = state
	}

	state.members[params.SessionId] = struct{}{}
	if params.IsAdmin {
		state.adminId = params.SessionId
	}
	r.sessionRoom[params.SessionId] = params.RoomName

	result.MemberIds = memberIds(state)
	result.MemberCount = len(state.members)
	result.Playback = state.playback.Clone()
	result.Queue = cloneQueue(state.queue)

	return result, nil
}

// StartPlayback replaces the room's playback descriptor wholesale. Only the
// room's current admin may start playback.
func (r *Repo) StartPlayback(params *room.StartPlaybackParams) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomName]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	if state.adminId == "" || state.adminId != params.SenderId {
		return nil, room.ErrPermissionDenied
	}

	state.playback = &room.Playback{
		URL:      params.URL,
		SongInfo: params.SongInfo,
		StartAt:  params.StartAt,
		Duration: params.Duration,
	}

	return memberIds(state), nil
}

// EndPlayback clears the room's playback descriptor. Gated on the admin the
// same way as StartPlayback.
func (r *Repo) EndPlayback(params *room.EndPlaybackParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomName]
	if !ok {
		return room.ErrRoomNotFound
	}

	if state.adminId == "" || state.adminId != params.SenderId {
		return room.ErrPermissionDenied
	}

	state.playback = nil

	return nil
}

// EnqueueSong appends a song to the room's queue. Any member may queue.
func (r *Repo) EnqueueSong(params *room.EnqueueSongParams) (room.EnqueueSongResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomName]
	if !ok {
		return room.EnqueueSongResult{}, room.ErrRoomNotFound
	}

	if _, ok := state.members[params.SenderId]; !ok {
		return room.EnqueueSongResult{}, room.ErrMemberNotFound
	}

	state.queue = append(state.queue, room.QueuedSong{
		URL:      params.URL,
		SongInfo: params.SongInfo,
		Duration: params.Duration,
		AddedBy:  params.SenderId,
	})

	return room.EnqueueSongResult{
		Queue:     cloneQueue(state.queue),
		MemberIds: memberIds(state),
	}, nil
}

// DequeueSong pops the head of the room's queue and promotes it to the
// room's current playback in the same transition. Admin-gated like
// StartPlayback.
func (r *Repo) DequeueSong(params *room.DequeueSongParams) (room.DequeueSongResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.rooms[params.RoomName]
	if !ok {
		return room.DequeueSongResult{}, room.ErrRoomNotFound
	}

	if state.adminId == "" || state.adminId != params.SenderId {
		return room.DequeueSongResult{}, room.ErrPermissionDenied
	}

	if len(state.queue) == 0 {
		return room.DequeueSongResult{}, room.ErrQueueEmpty
	}

	popped := state.queue[0]
	state.queue = append([]room.QueuedSong(nil), state.queue[1:]...)
	state.playback = &room.Playback{
		URL:      popped.URL,
		SongInfo: popped.SongInfo,
		StartAt:  params.StartAt,
		Duration: popped.Duration,
	}

	return room.DequeueSongResult{
		Popped:    popped,
		Queue:     cloneQueue(state.queue),
		Playback:  *state.playback,
		MemberIds: memberIds(state),
	}, nil
}

// RemoveSession retires the session's membership. The room's admin slot is
// revoked (not transferred) when the admin leaves, and the room record is
// deleted the moment its membership becomes empty.
func (r *Repo) RemoveSession(sessionId string) (room.RemoveSessionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessionRoom[sessionId]; !ok {
		return room.RemoveSessionResult{}, room.ErrSessionNotFound
	}

	return r.removeSessionLocked(sessionId), nil
}

func (r *Repo) removeSessionLocked(sessionId string) room.RemoveSessionResult {
	roomName := r.sessionRoom[sessionId]
	delete(r.sessionRoom, sessionId)

	state := r.rooms[roomName]
	delete(state.members, sessionId)

	result := room.RemoveSessionResult{RoomName: roomName}

	if state.adminId == sessionId {
		state.adminId = ""
		result.WasAdmin = true
	}

	if len(state.members) == 0 {
		delete(r.rooms, roomName)
		result.RoomDeleted = true
		return result
	}

	result.MemberIds = memberIds(state)
	result.MemberCount = len(state.members)

	return result
}

// GetPlayback returns a copy of the room's current playback descriptor.
func (r *Repo) GetPlayback(roomName string) (room.Playback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomName]
	if !ok {
		return room.Playback{}, room.ErrRoomNotFound
	}

	if state.playback == nil {
		return room.Playback{}, room.ErrNoPlayback
	}

	return *state.playback, nil
}

func (r *Repo) GetMemberIds(roomName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomName]
	if !ok {
		return nil, room.ErrRoomNotFound
	}

	return memberIds(state), nil
}

// GetAdminId returns the room's admin session id, or an empty string while
// the room is adminless.
func (r *Repo) GetAdminId(roomName string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.rooms[roomName]
	if !ok {
		return "", room.ErrRoomNotFound
	}

	return state.adminId, nil
}

func (r *Repo) GetSessionRoom(sessionId string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roomName, ok := r.sessionRoom[sessionId]
	if !ok {
		return "", room.ErrSessionNotFound
	}

	return roomName, nil
}

func (r *Repo) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.rooms)
}

func (r *Repo) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessionRoom)
}

func memberIds(state *roomState) []string {
	ids := make([]string, 0, len(state.members))
	for id := range state.members {
		ids = append(ids, id)
	}
	return ids
}

func cloneQueue(queue []room.QueuedSong) []room.QueuedSong {
	if len(queue) == 0 {
		return nil
	}
	return append([]room.QueuedSong(nil), queue...)
}
