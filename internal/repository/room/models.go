package room

import "encoding/json"

// Playback is the authoritative record of what a room is playing. It is
// replaced wholesale on each play event and never partially mutated.
type Playback struct {
	URL      string
	SongInfo json.RawMessage
	// StartAt is the playback start instant in epoch milliseconds, recorded
	// in the coordinating server's clock domain.
	StartAt int64
	// Duration is the song length in seconds. Zero means unknown.
	Duration float64
}

func (p *Playback) Clone() *Playback {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

type QueuedSong struct {
	URL      string          `json:"url"`
	SongInfo json.RawMessage `json:"song_info"`
	Duration float64         `json:"duration,omitempty"`
	AddedBy  string          `json:"added_by"`
}

type JoinRoomParams struct {
	SessionId string
	RoomName  string
	IsAdmin   bool
}

type JoinRoomResult struct {
	MemberIds   []string
	MemberCount int
	Playback    *Playback
	Queue       []QueuedSong
	// Left is set when the joining session was a member of another room and
	// had to leave it first.
	Left *RemoveSessionResult
}

type StartPlaybackParams struct {
	SenderId string
	RoomName string
	URL      string
	SongInfo json.RawMessage
	StartAt  int64
	Duration float64
}

type EndPlaybackParams struct {
	SenderId string
	RoomName string
}

type EnqueueSongParams struct {
	SenderId string
	RoomName string
	URL      string
	SongInfo json.RawMessage
	Duration float64
}

type EnqueueSongResult struct {
	Queue     []QueuedSong
	MemberIds []string
}

type DequeueSongParams struct {
	SenderId string
	RoomName string
	// StartAt is the playback start instant assigned to the popped song.
	StartAt int64
}

type DequeueSongResult struct {
	Popped    QueuedSong
	Queue     []QueuedSong
	Playback  Playback
	MemberIds []string
}

type RemoveSessionResult struct {
	RoomName    string
	WasAdmin    bool
	RoomDeleted bool
	MemberIds   []string
	MemberCount int
}
