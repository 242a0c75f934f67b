package handlers

import (
	"net/http"

	"github.com/kozaktomas/photo-sheet/internal/config"
	"github.com/kozaktomas/photo-sheet/internal/constants"
	"github.com/kozaktomas/photo-sheet/internal/database"
	"github.com/kozaktomas/photo-sheet/internal/editor"
	"github.com/kozaktomas/photo-sheet/internal/imageinfo"
	"github.com/kozaktomas/photo-sheet/internal/layout"
	"github.com/kozaktomas/photo-sheet/internal/units"
)

// ConfigHandler handles configuration endpoints
type ConfigHandler struct {
	config *config.Config
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		config: cfg,
	}
}

// PageSizeInfo describes a selectable page size
type PageSizeInfo struct {
	Name   layout.PageSize `json:"name"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
	Custom bool            `json:"custom,omitempty"`
}

// ConfigResponse represents the configuration response
type ConfigResponse struct {
	PageSizes      []PageSizeInfo       `json:"pageSizes"`
	Orientations   []layout.Orientation `json:"orientations"`
	Units          []units.Unit         `json:"units"`
	Defaults       editor.Settings      `json:"defaults"`
	UploadTypes    []string             `json:"uploadTypes"`
	MaxUploadSize  int                  `json:"maxUploadSize"`
	MaxImages      int                  `json:"maxImages"`
	HistoryBackend string               `json:"historyBackend,omitempty"`
	HistoryEnabled bool                 `json:"historyEnabled"`
}

// Get returns the editor options and defaults
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	sizes := make([]PageSizeInfo, 0, len(layout.PageSizes))
	for _, p := range layout.PageSizes {
		info := PageSizeInfo{Name: p, Custom: p == layout.PageCustom}
		if dims, ok := layout.NominalDimensions(p); ok {
			info.Width, info.Height = dims.Width, dims.Height
		}
		sizes = append(sizes, info)
	}

	respondJSON(w, http.StatusOK, ConfigResponse{
		PageSizes:      sizes,
		Orientations:   []layout.Orientation{layout.Portrait, layout.Landscape},
		Units:          []units.Unit{units.Centimeters, units.Inches},
		Defaults:       h.config.Editor.Defaults,
		UploadTypes:    imageinfo.ContentTypes(),
		MaxUploadSize:  constants.MaxUploadSize,
		MaxImages:      constants.MaxImagesPerEditor,
		HistoryBackend: database.BackendName(),
		HistoryEnabled: database.IsInitialized(),
	})
}
