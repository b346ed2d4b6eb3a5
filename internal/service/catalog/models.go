package catalog

import catalogrepo "github.com/tunesync/server/internal/repository/catalog"

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// Song is the list-item view of a catalog song. GithubURL is derived, the
// rest comes straight from the songs document.
type Song struct {
	SongId            string   `json:"song_id"`
	Filename          string   `json:"filename"`
	TrackName         string   `json:"track_name"`
	ArtistsString     string   `json:"artists_string"`
	AlbumName         string   `json:"album_name,omitempty"`
	DurationFormatted string   `json:"duration_formatted,omitempty"`
	Playcount         int64    `json:"playcount,omitempty"`
	CoverArtURL       string   `json:"cover_art_url,omitempty"`
	CoverArtFilename  string   `json:"cover_art_filename,omitempty"`
	Playlists         []string `json:"playlists"`
	GithubURL         string   `json:"github_url"`
}

// SongDetails is the single-song view, carrying the raw metadata block too.
type SongDetails struct {
	Song
	Metadata catalogrepo.SongMetadata `json:"metadata"`
}

type Playlist struct {
	Name                string `json:"name"`
	TotalTracks         int    `json:"total_tracks"`
	SuccessfulDownloads int    `json:"successful_downloads"`
	UniqueSongCount     int    `json:"unique_song_count"`
	SourceURL           string `json:"source_url"`
	Timestamp           string `json:"timestamp"`
	HasSongs            bool   `json:"has_songs"`
}

type SongsPage struct {
	Songs      []Song     `json:"songs"`
	TotalSongs int        `json:"total_songs"`
	Pagination Pagination `json:"pagination"`
}

type PlaylistSongsPage struct {
	Playlist    string     `json:"playlist"`
	Songs       []Song     `json:"songs"`
	TotalSongs  int        `json:"total_songs"`
	UniqueSongs int        `json:"unique_songs"`
	Pagination  Pagination `json:"pagination"`
}

type SearchResult struct {
	Song
	RelevanceScore int `json:"relevance_score"`
}

type SearchPage struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"total_results"`
	Results      []SearchResult `json:"results"`
	Pagination   Pagination     `json:"pagination"`
}

type Suggestion struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	TrackName string `json:"track_name,omitempty"`
	Artist    string `json:"artist"`
	SongId    string `json:"song_id,omitempty"`
}

type SongsByIdsResult struct {
	RequestedIds []string `json:"requested_ids"`
	FoundSongs   int      `json:"found_songs"`
	Songs        []Song   `json:"songs"`
}

type RandomSongIdsResult struct {
	Count          int      `json:"count"`
	SongIds        []string `json:"song_ids"`
	TotalAvailable int      `json:"total_available"`
}

type Stats struct {
	TotalUniqueSongs     int    `json:"total_unique_songs"`
	TotalPlaylists       int    `json:"total_playlists"`
	TotalOriginalSongs   int    `json:"total_original_songs"`
	DuplicatesRemoved    int    `json:"duplicates_removed"`
	SpaceSavedPercentage int    `json:"space_saved_percentage"`
	GeneratedAt          string `json:"generated_at,omitempty"`
	GithubBaseURL        string `json:"github_base_url"`
}
