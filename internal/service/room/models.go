package room

import "encoding/json"

// CurrentSong is the outward view of a room's playback descriptor.
type CurrentSong struct {
	URL      string          `json:"url"`
	SongInfo json.RawMessage `json:"song_info"`
	StartAt  int64           `json:"start_at"`
	Duration float64         `json:"duration,omitempty"`
}

type QueuedSong struct {
	URL      string          `json:"url"`
	SongInfo json.RawMessage `json:"song_info"`
	Duration float64         `json:"duration,omitempty"`
	AddedBy  string          `json:"added_by"`
}

// RoomState is the snapshot unicast to a session right after it joins.
type RoomState struct {
	CurrentSong *CurrentSong `json:"current_song"`
	IsPlaying   bool         `json:"is_playing"`
	Queue       []QueuedSong `json:"queue"`
	MemberCount int          `json:"member_count"`
}

// SyncToCurrent tells a late joiner where playback currently stands.
// SeekTo is the offset in seconds to seek to; StartTime echoes the original
// start instant (epoch ms) so the client can keep recomputing elapsed time
// on its own.
type SyncToCurrent struct {
	URL       string          `json:"url"`
	SeekTo    float64         `json:"seek_to"`
	SongInfo  json.RawMessage `json:"song_info"`
	StartTime int64           `json:"start_time"`
}

type Stats struct {
	Rooms    int `json:"rooms"`
	Sessions int `json:"sessions"`
}
