package catalog

import "time"

// SongMetadata mirrors the metadata block of songs_database.json. Every
// field is optional in the source data.
type SongMetadata struct {
	TrackName         string  `json:"track_name"`
	ArtistsString     string  `json:"artists_string"`
	AlbumName         string  `json:"album_name"`
	DurationFormatted string  `json:"duration_formatted"`
	DurationMs        float64 `json:"duration_ms"`
	Playcount         int64   `json:"playcount"`
	CoverArtURL       string  `json:"cover_art_url"`
	CoverArtFilename  string  `json:"cover_art_filename"`
	ReleaseDate       string  `json:"release_date"`
}

type Song struct {
	Filename         string       `json:"filename"`
	OriginalFilename string       `json:"original_filename"`
	Playlists        []string     `json:"playlists"`
	Metadata         SongMetadata `json:"metadata"`
}

type Playlist struct {
	TotalTracks         int      `json:"total_tracks"`
	SuccessfulDownloads int      `json:"successful_downloads"`
	UniqueSongCount     int      `json:"unique_song_count"`
	SourceURL           string   `json:"source_url"`
	Timestamp           string   `json:"timestamp"`
	Songs               []string `json:"songs"`
}

// Snapshot is one immutable parse of the two catalog documents. Readers
// share it without locking; a refresh swaps in a whole new snapshot.
type Snapshot struct {
	Songs       map[string]Song
	Playlists   map[string]Playlist
	GeneratedAt string
	LoadedAt    time.Time
}
