package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	catalogrepo "github.com/tunesync/server/internal/repository/catalog"
)

type staticRepo struct {
	snapshot *catalogrepo.Snapshot
}

func (r staticRepo) Snapshot() *catalogrepo.Snapshot { return r.snapshot }

func newTestService() *service {
	snapshot := &catalogrepo.Snapshot{
		Songs: map[string]catalogrepo.Song{
			"take-five": {
				Filename:  "Take Five - Dave Brubeck.m4a",
				Playlists: []string{"cool-jazz"},
				Metadata: catalogrepo.SongMetadata{
					TrackName:         "Take Five",
					ArtistsString:     "The Dave Brubeck Quartet",
					AlbumName:         "Time Out",
					DurationFormatted: "5:24",
					Playcount:         120533104,
				},
			},
			"so-what": {
				Filename:  "So What - Miles Davis.m4a",
				Playlists: []string{"cool-jazz", "late-night"},
				Metadata: catalogrepo.SongMetadata{
					TrackName:         "So What",
					ArtistsString:     "Miles Davis",
					AlbumName:         "Kind of Blue",
					DurationFormatted: "9:05",
				},
			},
			"blue-in-green": {
				Filename:  "Blue in Green - Miles Davis.m4a",
				Playlists: []string{"late-night"},
				Metadata: catalogrepo.SongMetadata{
					TrackName:     "Blue in Green",
					ArtistsString: "Miles Davis",
					AlbumName:     "Kind of Blue",
				},
			},
			"untagged": {
				Filename:  "Hidden Gem.m4a",
				Playlists: []string{"late-night"},
			},
		},
		Playlists: map[string]catalogrepo.Playlist{
			"cool-jazz": {
				TotalTracks:         3,
				SuccessfulDownloads: 2,
				UniqueSongCount:     2,
				SourceURL:           "https://open.spotify.com/playlist/cool-jazz",
				Songs:               []string{"take-five", "so-what", "missing-id"},
			},
			"late-night": {
				TotalTracks:     3,
				UniqueSongCount: 3,
				Songs:           []string{"so-what", "blue-in-green", "untagged"},
			},
		},
		GeneratedAt: "2025-03-14T09:00:00Z",
		LoadedAt:    time.Now(),
	}

	return NewService(staticRepo{snapshot: snapshot}, "https://raw.example.com/songs/")
}

func TestListPlaylists(t *testing.T) {
	s := newTestService()

	playlists := s.ListPlaylists(context.Background())
	require.Len(t, playlists, 2)

	coolJazz := playlists["cool-jazz"]
	assert.Equal(t, "cool-jazz", coolJazz.Name)
	assert.Equal(t, 3, coolJazz.TotalTracks)
	assert.Equal(t, 2, coolJazz.UniqueSongCount)
	assert.True(t, coolJazz.HasSongs)
}

func TestListSongsPagination(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	page := s.ListSongs(ctx, 1, 3)
	assert.Equal(t, 4, page.TotalSongs)
	assert.Len(t, page.Songs, 3)
	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNext)
	assert.False(t, page.Pagination.HasPrev)

	page = s.ListSongs(ctx, 2, 3)
	assert.Len(t, page.Songs, 1)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	// Out-of-range pages are empty, not an error.
	page = s.ListSongs(ctx, 9, 3)
	assert.Empty(t, page.Songs)
}

func TestListSongsDefaultsAndDerivedFields(t *testing.T) {
	s := newTestService()

	page := s.ListSongs(context.Background(), 0, 0)
	assert.Equal(t, 30, page.Pagination.PerPage)
	assert.Equal(t, 1, page.Pagination.CurrentPage)

	byId := make(map[string]Song)
	for _, song := range page.Songs {
		byId[song.SongId] = song
	}

	assert.Equal(t, "https://raw.example.com/songs/Take Five - Dave Brubeck.m4a", byId["take-five"].GithubURL)

	// Songs without metadata fall back to the filename.
	assert.Equal(t, "Hidden Gem", byId["untagged"].TrackName)
	assert.Equal(t, "Unknown Artist", byId["untagged"].ArtistsString)
}

func TestPlaylistSongsSkipsUnknownIds(t *testing.T) {
	s := newTestService()

	page, err := s.PlaylistSongs(context.Background(), "cool-jazz", 1, 30)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalSongs, "missing-id must be skipped")
	assert.Equal(t, "take-five", page.Songs[0].SongId, "playlist order must be preserved")

	_, err = s.PlaylistSongs(context.Background(), "nope", 1, 30)
	assert.ErrorIs(t, err, ErrPlaylistNotFound)
}

func TestGetSong(t *testing.T) {
	s := newTestService()

	details, err := s.GetSong(context.Background(), "take-five")
	require.NoError(t, err)
	assert.Equal(t, "Take Five", details.TrackName)
	assert.Equal(t, "Time Out", details.Metadata.AlbumName)

	_, err = s.GetSong(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSongNotFound)
}

func TestSongsByIds(t *testing.T) {
	s := newTestService()

	result := s.SongsByIds(context.Background(), []string{" take-five", "ghost", "so-what ", ""})
	assert.Equal(t, []string{"take-five", "ghost", "so-what"}, result.RequestedIds)
	assert.Equal(t, 2, result.FoundSongs)
	require.Len(t, result.Songs, 2)
	assert.Equal(t, "take-five", result.Songs[0].SongId)
	assert.Equal(t, "so-what", result.Songs[1].SongId)
}

func TestRandomSongIds(t *testing.T) {
	s := newTestService()

	result := s.RandomSongIds(context.Background(), 2, []string{"untagged"})
	assert.Equal(t, 2, result.Count)
	assert.Len(t, result.SongIds, 2)
	assert.Equal(t, 3, result.TotalAvailable)
	assert.NotContains(t, result.SongIds, "untagged")
}

func TestSearchRelevanceOrdering(t *testing.T) {
	s := newTestService()

	page := s.Search(context.Background(), "miles", 1, 30)
	assert.Equal(t, 2, page.TotalResults)
	for _, result := range page.Results {
		assert.Equal(t, "Miles Davis", result.ArtistsString)
		assert.Greater(t, result.RelevanceScore, 0)
	}

	// A track-name prefix match must outrank an artist match.
	page = s.Search(context.Background(), "blue", 1, 30)
	require.NotEmpty(t, page.Results)
	assert.Equal(t, "blue-in-green", page.Results[0].SongId)
}

func TestSearchAllTermsMustMatch(t *testing.T) {
	s := newTestService()

	page := s.Search(context.Background(), "miles what", 1, 30)
	require.Equal(t, 1, page.TotalResults)
	assert.Equal(t, "so-what", page.Results[0].SongId)

	page = s.Search(context.Background(), "miles zeppelin", 1, 30)
	assert.Zero(t, page.TotalResults)

	page = s.Search(context.Background(), "", 1, 30)
	assert.Zero(t, page.TotalResults)
	assert.Empty(t, page.Results)
}

func TestQuickSearch(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	assert.Empty(t, s.QuickSearch(ctx, "m", 10), "single-char query must return nothing")

	suggestions := s.QuickSearch(ctx, "miles", 10)
	require.NotEmpty(t, suggestions)

	artists := 0
	for _, suggestion := range suggestions {
		if suggestion.Type == "artist" {
			artists++
			assert.Equal(t, "Miles Davis", suggestion.Text)
		}
	}
	assert.Equal(t, 1, artists, "artist suggestions must be deduplicated")

	assert.Len(t, s.QuickSearch(ctx, "miles", 1), 1)
}

func TestGetStats(t *testing.T) {
	s := newTestService()

	stats := s.GetStats(context.Background())
	assert.Equal(t, 4, stats.TotalUniqueSongs)
	assert.Equal(t, 2, stats.TotalPlaylists)
	assert.Equal(t, 6, stats.TotalOriginalSongs)
	assert.Equal(t, 2, stats.DuplicatesRemoved)
	assert.Equal(t, 33, stats.SpaceSavedPercentage)
	assert.Equal(t, "https://raw.example.com/songs", stats.GithubBaseURL)
}
