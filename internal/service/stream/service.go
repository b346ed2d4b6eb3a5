package stream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	ErrStreamNotFound = errors.New("stream url not found")
	ErrVideoNotFound  = errors.New("video not found")
	ErrInvalidCookies = errors.New("invalid cookies file")
)

type iStreamCache interface {
	GetSearch(ctx context.Context, query string, limit int) ([]byte, error)
	SetSearch(ctx context.Context, query string, limit int, payload []byte) error
	GetStreamURL(ctx context.Context, videoId string) (string, error)
	SetStreamURL(ctx context.Context, videoId string, url string) error
}

// commandRunner abstracts the yt-dlp subprocess so tests can stub it.
type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return stdout.Bytes(), nil
}

type service struct {
	cache       iStreamCache
	runner      commandRunner
	ytdlpPath   string
	cookiesPath string
}

func NewService(cache iStreamCache, ytdlpPath, cookiesPath string) *service {
	return &service{
		cache:       cache,
		runner:      execRunner{},
		ytdlpPath:   ytdlpPath,
		cookiesPath: cookiesPath,
	}
}

// Version reports the yt-dlp binary version, probing that the extractor is
// actually installed.
func (s service) Version(ctx context.Context) (string, error) {
	output, err := s.runner.Run(ctx, s.ytdlpPath, "--version")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(output)), nil
}
