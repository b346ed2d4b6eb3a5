package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// repo caches yt-dlp lookups. Stream URLs and search payloads both expire
// on a fixed ttl since the upstream signs its URLs with a short lifetime.
type repo struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewRepo(rc *redis.Client, ttl time.Duration) *repo {
	return &repo{
		rc:  rc,
		ttl: ttl,
	}
}

func searchKey(query string, limit int) string {
	return fmt.Sprintf("yt:search:%s:%d", query, limit)
}

func streamKey(videoId string) string {
	return "yt:stream:" + videoId
}

func (r repo) GetSearch(ctx context.Context, query string, limit int) ([]byte, error) {
	payload, err := r.rc.Get(ctx, searchKey(query, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	return payload, nil
}

func (r repo) SetSearch(ctx context.Context, query string, limit int, payload []byte) error {
	return r.rc.Set(ctx, searchKey(query, limit), payload, r.ttl).Err()
}

func (r repo) GetStreamURL(ctx context.Context, videoId string) (string, error) {
	url, err := r.rc.Get(ctx, streamKey(videoId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}

	return url, nil
}

func (r repo) SetStreamURL(ctx context.Context, videoId string, url string) error {
	return r.rc.Set(ctx, streamKey(videoId), url, r.ttl).Err()
}
