package catalog

import (
	"context"
	"math/rand"
	"path"
	"strings"

	catalogrepo "github.com/tunesync/server/internal/repository/catalog"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	defaultPageSize        = 30
	defaultSuggestionLimit = 10
	defaultRandomCount     = 50
	minQuickSearchQuery    = 2
)

// ListPlaylists returns every playlist without its song id array, keeping
// the payload small enough for an initial page load.
func (s service) ListPlaylists(ctx context.Context) map[string]Playlist {
	snapshot := s.catalogRepo.Snapshot()

	playlists := make(map[string]Playlist, len(snapshot.Playlists))
	for name, playlist := range snapshot.Playlists {
		playlists[name] = Playlist{
			Name:                name,
			TotalTracks:         playlist.TotalTracks,
			SuccessfulDownloads: playlist.SuccessfulDownloads,
			UniqueSongCount:     playlist.UniqueSongCount,
			SourceURL:           playlist.SourceURL,
			Timestamp:           playlist.Timestamp,
			HasSongs:            len(playlist.Songs) > 0,
		}
	}

	return playlists
}

func (s service) ListSongs(ctx context.Context, page, limit int) SongsPage {
	snapshot := s.catalogRepo.Snapshot()

	songs := make([]Song, 0, len(snapshot.Songs))
	for _, songId := range sortedSongIds(snapshot) {
		songs = append(songs, s.songView(songId, snapshot.Songs[songId]))
	}

	pageSongs, pagination := paginate(songs, page, limit)

	return SongsPage{
		Songs:      pageSongs,
		TotalSongs: len(songs),
		Pagination: pagination,
	}
}

func (s service) PlaylistSongs(ctx context.Context, name string, page, limit int) (PlaylistSongsPage, error) {
	snapshot := s.catalogRepo.Snapshot()

	playlist, ok := snapshot.Playlists[name]
	if !ok {
		return PlaylistSongsPage{}, ErrPlaylistNotFound
	}

	// Ids without a songs-document entry are skipped, the documents may be
	// regenerated independently.
	songs := make([]Song, 0, len(playlist.Songs))
	for _, songId := range playlist.Songs {
		song, ok := snapshot.Songs[songId]
		if !ok {
			continue
		}
		songs = append(songs, s.songView(songId, song))
	}

	pageSongs, pagination := paginate(songs, page, limit)

	return PlaylistSongsPage{
		Playlist:    name,
		Songs:       pageSongs,
		TotalSongs:  len(songs),
		UniqueSongs: playlist.UniqueSongCount,
		Pagination:  pagination,
	}, nil
}

func (s service) GetSong(ctx context.Context, songId string) (SongDetails, error) {
	snapshot := s.catalogRepo.Snapshot()

	song, ok := snapshot.Songs[songId]
	if !ok {
		return SongDetails{}, ErrSongNotFound
	}

	return SongDetails{
		Song:     s.songView(songId, song),
		Metadata: song.Metadata,
	}, nil
}

// SongsByIds resolves a client-supplied id list, silently skipping ids the
// catalog does not know. Order follows the request.
func (s service) SongsByIds(ctx context.Context, songIds []string) SongsByIdsResult {
	snapshot := s.catalogRepo.Snapshot()

	requested := make([]string, 0, len(songIds))
	songs := make([]Song, 0, len(songIds))
	for _, songId := range songIds {
		songId = strings.TrimSpace(songId)
		if songId == "" {
			continue
		}
		requested = append(requested, songId)

		song, ok := snapshot.Songs[songId]
		if !ok {
			continue
		}
		songs = append(songs, s.songView(songId, song))
	}

	return SongsByIdsResult{
		RequestedIds: requested,
		FoundSongs:   len(songs),
		Songs:        songs,
	}
}

func (s service) RandomSongIds(ctx context.Context, count int, exclude []string) RandomSongIdsResult {
	if count <= 0 {
		count = defaultRandomCount
	}

	snapshot := s.catalogRepo.Snapshot()

	excluded := make(map[string]struct{}, len(exclude))
	for _, songId := range exclude {
		excluded[strings.TrimSpace(songId)] = struct{}{}
	}

	songIds := make([]string, 0, len(snapshot.Songs))
	for _, songId := range sortedSongIds(snapshot) {
		if _, ok := excluded[songId]; ok {
			continue
		}
		songIds = append(songIds, songId)
	}

	available := len(songIds)
	rand.Shuffle(len(songIds), func(i, j int) {
		songIds[i], songIds[j] = songIds[j], songIds[i]
	})
	if count < len(songIds) {
		songIds = songIds[:count]
	}

	return RandomSongIdsResult{
		Count:          len(songIds),
		SongIds:        songIds,
		TotalAvailable: available,
	}
}

// Search matches every whitespace-separated query term against track,
// artist, album and filename. A song qualifies only when all terms match
// somewhere; results are ordered by a prefix-beats-substring relevance
// score with track matches weighted above artist, artist above album.
func (s service) Search(ctx context.Context, query string, page, limit int) SearchPage {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		_, pagination := paginate([]SearchResult{}, page, limit)
		return SearchPage{Query: query, Results: []SearchResult{}, Pagination: pagination}
	}

	snapshot := s.catalogRepo.Snapshot()

	results := make([]SearchResult, 0)
	for _, songId := range sortedSongIds(snapshot) {
		song := snapshot.Songs[songId]
		score, ok := relevance(song, terms)
		if !ok {
			continue
		}

		results = append(results, SearchResult{
			Song:           s.songView(songId, song),
			RelevanceScore: score,
		})
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return b.RelevanceScore - a.RelevanceScore
	})

	pageResults, pagination := paginate(results, page, limit)

	return SearchPage{
		Query:        query,
		TotalResults: len(results),
		Results:      pageResults,
		Pagination:   pagination,
	}
}

// QuickSearch produces deduplicated autocomplete suggestions. Queries
// shorter than two characters return nothing, mirroring how the endpoint
// is driven keystroke by keystroke.
func (s service) QuickSearch(ctx context.Context, query string, limit int) []Suggestion {
	query = strings.ToLower(strings.TrimSpace(query))
	if len(query) < minQuickSearchQuery {
		return []Suggestion{}
	}
	if limit <= 0 {
		limit = defaultSuggestionLimit
	}

	snapshot := s.catalogRepo.Snapshot()

	suggestions := make([]Suggestion, 0, limit)
	seen := make(map[string]struct{})
	for _, songId := range sortedSongIds(snapshot) {
		if len(suggestions) >= limit {
			break
		}

		song := snapshot.Songs[songId]
		trackName := song.Metadata.TrackName
		artist := song.Metadata.ArtistsString

		if strings.Contains(strings.ToLower(trackName), query) {
			text := trackName + " - " + artist
			if _, ok := seen[text]; !ok {
				seen[text] = struct{}{}
				suggestions = append(suggestions, Suggestion{
					Type:      "track",
					Text:      text,
					TrackName: trackName,
					Artist:    artist,
					SongId:    songId,
				})
			}
		}

		if len(suggestions) < limit && strings.Contains(strings.ToLower(artist), query) {
			if _, ok := seen[artist]; !ok {
				seen[artist] = struct{}{}
				suggestions = append(suggestions, Suggestion{
					Type:   "artist",
					Text:   artist,
					Artist: artist,
				})
			}
		}
	}

	return suggestions
}

func (s service) GetStats(ctx context.Context) Stats {
	snapshot := s.catalogRepo.Snapshot()

	totalOriginal := 0
	for _, playlist := range snapshot.Playlists {
		totalOriginal += playlist.TotalTracks
	}

	unique := len(snapshot.Songs)
	spaceSaved := 0
	if totalOriginal > 0 {
		spaceSaved = int(float64(totalOriginal-unique)/float64(totalOriginal)*100 + 0.5)
	}

	return Stats{
		TotalUniqueSongs:     unique,
		TotalPlaylists:       len(snapshot.Playlists),
		TotalOriginalSongs:   totalOriginal,
		DuplicatesRemoved:    totalOriginal - unique,
		SpaceSavedPercentage: spaceSaved,
		GeneratedAt:          snapshot.GeneratedAt,
		GithubBaseURL:        s.githubBaseURL,
	}
}

func (s service) songView(songId string, song catalogrepo.Song) Song {
	trackName := song.Metadata.TrackName
	if trackName == "" {
		trackName = strings.TrimSuffix(song.Filename, path.Ext(song.Filename))
	}
	artists := song.Metadata.ArtistsString
	if artists == "" {
		artists = "Unknown Artist"
	}

	return Song{
		SongId:            songId,
		Filename:          song.Filename,
		TrackName:         trackName,
		ArtistsString:     artists,
		AlbumName:         song.Metadata.AlbumName,
		DurationFormatted: song.Metadata.DurationFormatted,
		Playcount:         song.Metadata.Playcount,
		CoverArtURL:       song.Metadata.CoverArtURL,
		CoverArtFilename:  song.Metadata.CoverArtFilename,
		Playlists:         song.Playlists,
		GithubURL:         s.AudioURL(song.Filename),
	}
}

// relevance scores one song against the query terms. Every term must match
// at least one field or the song is out.
func relevance(song catalogrepo.Song, terms []string) (int, bool) {
	trackName := strings.ToLower(song.Metadata.TrackName)
	artists := strings.ToLower(song.Metadata.ArtistsString)
	album := strings.ToLower(song.Metadata.AlbumName)
	filename := strings.ToLower(song.Filename)

	total := 0
	for _, term := range terms {
		score := 0
		switch {
		case strings.HasPrefix(trackName, term):
			score += 15
		case strings.Contains(trackName, term):
			score += 10
		}
		switch {
		case strings.HasPrefix(artists, term):
			score += 12
		case strings.Contains(artists, term):
			score += 8
		}
		switch {
		case strings.HasPrefix(album, term):
			score += 8
		case strings.Contains(album, term):
			score += 5
		}
		if strings.Contains(filename, term) {
			score += 3
		}

		if score == 0 {
			return 0, false
		}
		total += score
	}

	return total, true
}

func sortedSongIds(snapshot *catalogrepo.Snapshot) []string {
	songIds := maps.Keys(snapshot.Songs)
	slices.Sort(songIds)
	return songIds
}

func paginate[T any](items []T, page, limit int) ([]T, Pagination) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	offset := (page - 1) * limit
	end := offset + limit
	if offset > len(items) {
		offset = len(items)
	}
	if end > len(items) {
		end = len(items)
	}

	totalPages := (len(items) + limit - 1) / limit

	return items[offset:end], Pagination{
		CurrentPage: page,
		PerPage:     limit,
		TotalItems:  len(items),
		TotalPages:  totalPages,
		HasNext:     (page-1)*limit+limit < len(items),
		HasPrev:     page > 1,
	}
}
