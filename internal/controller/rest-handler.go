package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tunesync/server/internal/service/catalog"
	"github.com/tunesync/server/pkg/rest"
)

func (c *controller) healthz(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"status":            "ok",
		"timestamp":         time.Now().UTC().Format(time.RFC3339),
		"catalog_loaded_at": c.catalogService.LoadedAt().UTC().Format(time.RFC3339),
	})
}

func (c *controller) stats(w http.ResponseWriter, r *http.Request) {
	catalogStats := c.catalogService.GetStats(r.Context())
	roomStats := c.roomService.GetStats(r.Context())

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"catalog": catalogStats,
		"rooms":   roomStats,
	})
}

func (c *controller) listPlaylists(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, c.catalogService.ListPlaylists(r.Context()))
}

func (c *controller) listSongs(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 30)

	rest.WriteJSON(w, http.StatusOK, c.catalogService.ListSongs(r.Context(), page, limit))
}

func (c *controller) playlistSongs(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "playlist")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 30)

	songsPage, err := c.catalogService.PlaylistSongs(r.Context(), name, page, limit)
	if err != nil {
		if errors.Is(err, catalog.ErrPlaylistNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "playlist not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to list playlist songs", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, songsPage)
}

func (c *controller) getSong(w http.ResponseWriter, r *http.Request) {
	songId := chi.URLParam(r, "song-id")

	song, err := c.catalogService.GetSong(r.Context(), songId)
	if err != nil {
		if errors.Is(err, catalog.ErrSongNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "song not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get song", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, song)
}

func (c *controller) songsByIds(w http.ResponseWriter, r *http.Request) {
	songIds := queryList(r, "ids")

	rest.WriteJSON(w, http.StatusOK, c.catalogService.SongsByIds(r.Context(), songIds))
}

func (c *controller) randomSongIds(w http.ResponseWriter, r *http.Request) {
	count := queryInt(r, "count", 50)
	exclude := queryList(r, "exclude")

	rest.WriteJSON(w, http.StatusOK, c.catalogService.RandomSongIds(r.Context(), count, exclude))
}

func (c *controller) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 30)

	rest.WriteJSON(w, http.StatusOK, c.catalogService.Search(r.Context(), query, page, limit))
}

func (c *controller) quickSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 10)

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"query":       query,
		"suggestions": c.catalogService.QuickSearch(r.Context(), query, limit),
	})
}

// songAudio hands the client off to the GitHub raw URL, the server never
// proxies audio bytes.
func (c *controller) songAudio(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	http.Redirect(w, r, c.catalogService.AudioURL(filename), http.StatusFound)
}

func (c *controller) songURL(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	githubURL := c.catalogService.AudioURL(filename)

	rest.WriteJSON(w, http.StatusOK, rest.Envelope{
		"filename":   filename,
		"github_url": githubURL,
		"direct_url": githubURL,
	})
}
