package stream

import "time"

// Thumbnails are predictable img.youtube.com variants derived from the
// video id, no extractor round trip needed.
type Thumbnails struct {
	Default  string `json:"default"`
	Medium   string `json:"medium"`
	High     string `json:"high"`
	Standard string `json:"standard"`
	Maxres   string `json:"maxres"`
}

type SearchResult struct {
	Id                string     `json:"id"`
	Title             string     `json:"title"`
	Duration          float64    `json:"duration"`
	DurationString    string     `json:"duration_string"`
	Uploader          string     `json:"uploader"`
	ViewCount         int64      `json:"view_count"`
	Thumbnail         string     `json:"thumbnail"`
	Thumbnails        Thumbnails `json:"thumbnails"`
	OriginalThumbnail string     `json:"original_thumbnail,omitempty"`
	URL               string     `json:"url"`
	StreamURL         string     `json:"stream_url"`
	Description       string     `json:"description,omitempty"`
	UploadDate        string     `json:"upload_date,omitempty"`
	UploaderId        string     `json:"uploader_id,omitempty"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

type VideoInfo struct {
	Id             string     `json:"id"`
	Title          string     `json:"title"`
	Duration       float64    `json:"duration"`
	DurationString string     `json:"duration_string,omitempty"`
	Uploader       string     `json:"uploader"`
	ViewCount      int64      `json:"view_count,omitempty"`
	Thumbnail      string     `json:"thumbnail"`
	Thumbnails     Thumbnails `json:"thumbnails"`
	URL            string     `json:"url"`
	StreamURL      string     `json:"stream_url"`
	Description    string     `json:"description,omitempty"`
	// Source is "yt-dlp" normally, "oembed" when the extractor failed and
	// the metadata came from the fallback.
	Source string `json:"source"`
}

type CookiesStatus struct {
	Exists     bool      `json:"exists"`
	Size       int64     `json:"size,omitempty"`
	ModifiedAt time.Time `json:"modified_at,omitempty"`
}
