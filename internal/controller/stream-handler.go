package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tunesync/server/internal/service/stream"
	"github.com/tunesync/server/pkg/rest"
)

func (c *controller) ytSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "query parameter is required"})
		return
	}
	limit := queryInt(r, "limit", 10)

	response, err := c.streamService.Search(r.Context(), query, limit)
	if err != nil {
		c.logger.WarnContext(r.Context(), "youtube search failed", "query", query, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "search failed"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, response)
}

func (c *controller) ytStream(w http.ResponseWriter, r *http.Request) {
	videoId := chi.URLParam(r, "video-id")

	url, err := c.streamService.StreamURL(r.Context(), videoId)
	if err != nil {
		if errors.Is(err, stream.ErrStreamNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "stream url not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to resolve stream url", "video_id", videoId, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get stream url"})
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

func (c *controller) ytInfo(w http.ResponseWriter, r *http.Request) {
	videoId := chi.URLParam(r, "video-id")

	info, err := c.streamService.Info(r.Context(), videoId)
	if err != nil {
		if errors.Is(err, stream.ErrVideoNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"error": "video not found"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to get video info", "video_id", videoId, "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "failed to get video info"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, info)
}

func (c *controller) putCookies(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "failed to read body"})
		return
	}

	if err := c.streamService.SaveCookies(data); err != nil {
		if errors.Is(err, stream.ErrInvalidCookies) {
			rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": "expected a Netscape-format cookies file"})
			return
		}
		c.logger.WarnContext(r.Context(), "failed to save cookies", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": err.Error()})
		return
	}

	rest.WriteJSON(w, http.StatusOK, c.streamService.Cookies())
}

func (c *controller) getCookies(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, c.streamService.Cookies())
}
