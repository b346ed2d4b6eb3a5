package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(c.rateLimitMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", c.healthz)
		r.Get("/stats", c.stats)

		r.Get("/playlists", c.listPlaylists)
		r.Get("/playlists/{playlist}/songs", c.playlistSongs)
		r.Get("/songs", c.listSongs)
		r.Get("/songs-by-ids", c.songsByIds)
		r.Get("/random-song-ids", c.randomSongIds)
		r.Get("/search", c.search)
		r.Get("/search/quick", c.quickSearch)
		r.Get("/songs/{song-id}", c.getSong)
		r.Get("/audio/{filename}", c.songAudio)
		r.Get("/audio/{filename}/url", c.songURL)

		r.Route("/yt", func(r chi.Router) {
			r.Get("/search", c.ytSearch)
			r.Get("/stream/{video-id}", c.ytStream)
			r.Get("/info/{video-id}", c.ytInfo)
			r.Get("/cookies", c.getCookies)
			r.Put("/cookies", c.putCookies)
		})

		r.Get("/ws", c.ws)
	})

	return r
}
