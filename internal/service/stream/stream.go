package stream

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	streamcache "github.com/tunesync/server/internal/repository/streamcache/redis"
	"github.com/tunesync/server/pkg/ytoembed"
)

const defaultSearchLimit = 10

// Search runs a flat-playlist ytsearch, one JSON object per output line.
// Responses are cached whole since the extractor call dominates latency.
func (s service) Search(ctx context.Context, query string, limit int) (SearchResponse, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if payload, err := s.cache.GetSearch(ctx, query, limit); err == nil {
		var cached SearchResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
	} else if !errors.Is(err, streamcache.ErrCacheMiss) {
		slog.Warn("search cache read failed", "error", err)
	}

	args := s.withCookies(
		"--dump-json",
		"--flat-playlist",
		"--no-warnings",
		fmt.Sprintf("ytsearch%d:%s", limit, query),
	)
	output, err := s.runner.Run(ctx, s.ytdlpPath, args...)
	if err != nil {
		return SearchResponse{}, err
	}

	results := make([]SearchResult, 0, limit)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry struct {
			Id             string  `json:"id"`
			Title          string  `json:"title"`
			Duration       float64 `json:"duration"`
			DurationString string  `json:"duration_string"`
			Uploader       string  `json:"uploader"`
			ViewCount      int64   `json:"view_count"`
			Thumbnail      string  `json:"thumbnail"`
			Description    string  `json:"description"`
			UploadDate     string  `json:"upload_date"`
			UploaderId     string  `json:"uploader_id"`
		}
		if err := json.Unmarshal(line, &entry); err != nil {
			slog.Warn("skipping unparseable search entry", "error", err)
			continue
		}
		if entry.Id == "" || entry.Title == "" {
			continue
		}

		thumbnails := thumbnailsFor(entry.Id)
		durationString := entry.DurationString
		if durationString == "" {
			durationString = "Unknown"
		}
		uploader := entry.Uploader
		if uploader == "" {
			uploader = "Unknown"
		}

		results = append(results, SearchResult{
			Id:                entry.Id,
			Title:             entry.Title,
			Duration:          entry.Duration,
			DurationString:    durationString,
			Uploader:          uploader,
			ViewCount:         entry.ViewCount,
			Thumbnail:         thumbnails.High,
			Thumbnails:        thumbnails,
			OriginalThumbnail: entry.Thumbnail,
			URL:               watchURL(entry.Id),
			StreamURL:         streamPath(entry.Id),
			Description:       entry.Description,
			UploadDate:        entry.UploadDate,
			UploaderId:        entry.UploaderId,
		})
	}

	response := SearchResponse{
		Query:   query,
		Results: results,
		Total:   len(results),
	}

	if payload, err := json.Marshal(response); err == nil {
		if err := s.cache.SetSearch(ctx, query, limit, payload); err != nil {
			slog.Warn("search cache write failed", "error", err)
		}
	}

	return response, nil
}

// StreamURL resolves the direct audio URL for a video. The upstream signs
// these URLs with a short lifetime, so cache hits and the extractor path
// share one ttl.
func (s service) StreamURL(ctx context.Context, videoId string) (string, error) {
	if url, err := s.cache.GetStreamURL(ctx, videoId); err == nil {
		return url, nil
	} else if !errors.Is(err, streamcache.ErrCacheMiss) {
		slog.Warn("stream cache read failed", "error", err)
	}

	args := s.withCookies(
		"--get-url",
		"--format", "bestaudio[ext=m4a]/bestaudio[ext=webm]/bestaudio",
		"--no-warnings",
		watchURL(videoId),
	)
	output, err := s.runner.Run(ctx, s.ytdlpPath, args...)
	if err != nil {
		return "", err
	}

	url := strings.TrimSpace(string(output))
	if url == "" {
		return "", ErrStreamNotFound
	}

	if err := s.cache.SetStreamURL(ctx, videoId, url); err != nil {
		slog.Warn("stream cache write failed", "error", err)
	}

	return url, nil
}

// Info fetches full metadata for one video. When the extractor fails the
// public oEmbed endpoint still yields title and uploader, which is enough
// for the player UI.
func (s service) Info(ctx context.Context, videoId string) (VideoInfo, error) {
	args := s.withCookies(
		"--dump-json",
		"--no-warnings",
		watchURL(videoId),
	)
	output, err := s.runner.Run(ctx, s.ytdlpPath, args...)
	if err != nil {
		slog.Warn("yt-dlp info failed, trying oembed fallback", "video_id", videoId, "error", err)
		return s.infoFromOEmbed(videoId)
	}

	var entry struct {
		Id             string  `json:"id"`
		Title          string  `json:"title"`
		Duration       float64 `json:"duration"`
		DurationString string  `json:"duration_string"`
		Uploader       string  `json:"uploader"`
		ViewCount      int64   `json:"view_count"`
		Description    string  `json:"description"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(output), &entry); err != nil {
		return VideoInfo{}, fmt.Errorf("parse video info: %w", err)
	}

	thumbnails := thumbnailsFor(videoId)

	return VideoInfo{
		Id:             videoId,
		Title:          entry.Title,
		Duration:       entry.Duration,
		DurationString: entry.DurationString,
		Uploader:       entry.Uploader,
		ViewCount:      entry.ViewCount,
		Thumbnail:      thumbnails.High,
		Thumbnails:     thumbnails,
		URL:            watchURL(videoId),
		StreamURL:      streamPath(videoId),
		Description:    entry.Description,
		Source:         "yt-dlp",
	}, nil
}

func (s service) infoFromOEmbed(videoId string) (VideoInfo, error) {
	videoData, err := ytoembed.Get(videoId)
	if err != nil {
		if errors.Is(err, ytoembed.ErrVideoNotFound) {
			return VideoInfo{}, ErrVideoNotFound
		}
		return VideoInfo{}, err
	}

	thumbnails := thumbnailsFor(videoId)

	return VideoInfo{
		Id:         videoId,
		Title:      videoData.Title,
		Uploader:   videoData.AuthorName,
		Thumbnail:  thumbnails.High,
		Thumbnails: thumbnails,
		URL:        watchURL(videoId),
		StreamURL:  streamPath(videoId),
		Source:     "oembed",
	}, nil
}

// withCookies appends the cookies flag when the configured file exists, so
// a freshly uploaded cookie file takes effect without a restart.
func (s service) withCookies(args ...string) []string {
	if s.cookiesPath == "" {
		return args
	}
	if _, err := os.Stat(s.cookiesPath); err != nil {
		return args
	}

	return append(args, "--cookies", s.cookiesPath)
}

func watchURL(videoId string) string {
	return "https://youtube.com/watch?v=" + videoId
}

func streamPath(videoId string) string {
	return "/api/v1/yt/stream/" + videoId
}

func thumbnailsFor(videoId string) Thumbnails {
	base := "https://img.youtube.com/vi/" + videoId + "/"
	return Thumbnails{
		Default:  base + "default.jpg",
		Medium:   base + "mqdefault.jpg",
		High:     base + "hqdefault.jpg",
		Standard: base + "sddefault.jpg",
		Maxres:   base + "maxresdefault.jpg",
	}
}
