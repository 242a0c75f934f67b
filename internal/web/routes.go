package web

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/photo-sheet/internal/web/handlers"
	"github.com/kozaktomas/photo-sheet/internal/web/middleware"
	"github.com/kozaktomas/photo-sheet/internal/web/static"
)

func (s *Server) setupRoutes() {
	configHandler := handlers.NewConfigHandler(s.config)
	editorsHandler := handlers.NewEditorsHandler(s.editors, s.images, s.logger)
	historyHandler := handlers.NewHistoryHandler(s.editors, s.logger)

	s.router.Get("/api/v1/health", handlers.HealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/config", configHandler.Get)

		// Everything below is scoped to the anonymous owner cookie.
		r.Group(func(r chi.Router) {
			r.Use(middleware.WithOwner(s.ownerManager))

			r.Post("/editors", editorsHandler.Create)
			r.Route("/editors/{id}", func(r chi.Router) {
				r.Get("/", editorsHandler.Get)
				r.Delete("/", editorsHandler.Delete)
				r.Get("/events", editorsHandler.Events)

				r.Put("/page", editorsHandler.SetPage)
				r.Put("/margins", editorsHandler.SetMargins)
				r.Put("/photo-size", editorsHandler.SetPhotoSize)
				r.Put("/spacing", editorsHandler.SetSpacing)
				r.Put("/unit", editorsHandler.SetUnit)
				r.Put("/copies", editorsHandler.SetCopies)
				r.Put("/border", editorsHandler.SetBorder)
				r.Put("/sheet", editorsHandler.SetSheet)
				r.Put("/selection", editorsHandler.SetSelection)

				r.Post("/images", editorsHandler.UploadImages)
				r.Delete("/images/{index}", editorsHandler.RemoveImage)

				r.Post("/slots/swap", editorsHandler.Swap)
				r.Put("/slots/{slotId}/image", editorsHandler.PlaceImage)
				r.Put("/slots/{slotId}/text", editorsHandler.UpdateText)
				r.Put("/slots/{slotId}/style", editorsHandler.UpdateStyle)
				r.Post("/slots/{slotId}/fit", editorsHandler.ToggleFit)

				r.Post("/reset-layout", editorsHandler.ResetLayout)
				r.Post("/reset", editorsHandler.Reset)

				r.Post("/history", historyHandler.Save)
				r.Post("/load", historyHandler.Load)
			})

			r.Get("/history", historyHandler.List)
			r.Post("/history/delete", historyHandler.BatchDelete)
			r.Get("/history/{id}", historyHandler.Get)
			r.Delete("/history/{id}", historyHandler.Delete)
		})
	})

	s.router.Get(handlers.UploadURLPrefix+"{name}", s.images.Serve)

	// Serve static files for frontend (SPA)
	s.router.Get("/*", s.serveSPA)
}

// serveSPA serves the embedded single-page application, falling back to
// index.html for client-side routes.
func (s *Server) serveSPA(w http.ResponseWriter, r *http.Request) {
	fsys := static.GetFileSystem()
	name := r.URL.Path
	if name == "/" {
		name = "/index.html"
	}

	f, err := fsys.Open(name)
	if err != nil {
		if strings.HasPrefix(name, "/assets/") {
			http.NotFound(w, r)
			return
		}
		name = "/index.html"
		if f, err = fsys.Open(name); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if strings.HasPrefix(name, "/assets/") {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	}
	w.WriteHeader(http.StatusOK)
	io.Copy(w, f)
}
