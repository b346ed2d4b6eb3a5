package catalog

import (
	"strings"
	"time"

	catalogrepo "github.com/tunesync/server/internal/repository/catalog"
)

var (
	ErrSongNotFound     = catalogrepo.ErrSongNotFound
	ErrPlaylistNotFound = catalogrepo.ErrPlaylistNotFound
)

type iCatalogRepo interface {
	Snapshot() *catalogrepo.Snapshot
}

type service struct {
	catalogRepo iCatalogRepo
	// githubBaseURL is the raw-content prefix audio files are served from.
	// The API never streams bytes itself, it hands out these URLs.
	githubBaseURL string
}

func NewService(catalogRepo iCatalogRepo, githubBaseURL string) *service {
	return &service{
		catalogRepo:   catalogRepo,
		githubBaseURL: strings.TrimSuffix(githubBaseURL, "/"),
	}
}

func (s service) AudioURL(filename string) string {
	return s.githubBaseURL + "/" + filename
}

// LoadedAt reports when the current catalog snapshot was read from disk.
func (s service) LoadedAt() time.Time {
	return s.catalogRepo.Snapshot().LoadedAt
}
