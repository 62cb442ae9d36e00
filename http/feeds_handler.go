package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/yourorg/listing-api/internal/config"
	"github.com/yourorg/listing-api/internal/refresh"
)

type FeedsDeps struct {
	Config    *config.Config
	Refresher *refresh.Refresher
}

func RegisterFeeds(r chi.Router, d FeedsDeps) {
	r.Post("/v1/feeds/{name}/refresh", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if d.Config == nil || d.Refresher == nil {
			renderError(w, req, http.StatusServiceUnavailable, "feeds_disabled", "no feed configuration loaded")
			return
		}
		if _, ok := d.Config.Find(name); !ok {
			renderError(w, req, http.StatusNotFound, "unknown_feed", name)
			return
		}
		if !d.Refresher.Enqueue(refresh.Job{Key: name}) {
			renderError(w, req, http.StatusConflict, "refresh_in_progress", name)
			return
		}
		render.Status(req, http.StatusAccepted)
		render.JSON(w, req, map[string]any{"ok": true, "feed": name, "queued": true})
	})
}
