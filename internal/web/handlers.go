package web

import (
	"net/http"
	"strconv"

	"github.com/mjessen/formpilot/internal/archive"
	"github.com/mjessen/formpilot/internal/config"
	"github.com/mjessen/formpilot/internal/errors"
	"github.com/mjessen/formpilot/internal/history"
	"github.com/mjessen/formpilot/internal/offline"
	"github.com/mjessen/formpilot/internal/profile"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	cfg      *config.Config
	captures *archive.Store
	profile  *profile.Store
	messages *history.Messages
	roadmap  *history.Roadmap
	cache    *offline.Coordinator
	renderer *Renderer
}

// HandleCaptures handles GET /captures — list archived captures, newest first.
func (h *Handlers) HandleCaptures(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", archive.DefaultListLimit)

	items, err := h.captures.List(r.Context(), limit)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"captures": items})
		return
	}

	h.renderer.renderPage(w, r, "captures", CapturesPageData{
		PageData: PageData{
			Title:   "Captures",
			Version: h.renderer.version,
			Nav:     "captures",
		},
		Items: items,
	})
}

// HandleDetail handles GET /captures/{id} — view a single capture.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("capture ID is required"))
		return
	}

	capture, err := h.captures.GetByID(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, capture)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   capture.Title,
			Version: h.renderer.version,
			Nav:     "captures",
		},
		Capture: capture,
	})
}

// HandleDelete handles DELETE /captures/{id} — remove a capture.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("capture ID is required"))
		return
	}

	if err := h.captures.DeleteByID(r.Context(), id); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"deleted": true,
			"id":      id,
		})
		return
	}

	http.Redirect(w, r, "/captures", http.StatusFound)
}

// HandlePurge handles POST /captures/purge — delete every archived capture.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	purged, err := h.captures.DeleteAll(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"purged": purged})
		return
	}

	http.Redirect(w, r, "/captures", http.StatusFound)
}

// HandleStatus handles GET /status — profile completeness, storage counts,
// roadmap progress, and cache freshness. Profile data is reported as counts
// only; no field values cross this boundary.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	captures, err := h.captures.List(r.Context(), archive.MaxListLimit)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	messages, err := h.messages.List()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	steps, err := h.roadmap.List()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filled := h.profile.Get().FilledCount()
	fresh := h.cache.IsCacheFresh()

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"profile": map[string]any{
				"filled_count": filled,
				"total":        len(profile.FieldNames),
			},
			"captures":    len(captures),
			"messages":    len(messages),
			"roadmap":     steps,
			"cache_fresh": fresh,
		})
		return
	}

	h.renderer.renderPage(w, r, "status", StatusPageData{
		PageData: PageData{
			Title:   "Status",
			Version: h.renderer.version,
			Nav:     "status",
		},
		ProfileFilled: filled,
		ProfileTotal:  len(profile.FieldNames),
		CaptureCount:  len(captures),
		MessageCount:  len(messages),
		CacheFresh:    fresh,
		Steps:         steps,
	})
}

// HandleGuides handles GET /guides — render the cached reference guides.
func (h *Handlers) HandleGuides(w http.ResponseWriter, r *http.Request) {
	guides, err := h.cache.Guides()
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	fresh := h.cache.IsCacheFresh()

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"fresh":  fresh,
			"guides": guides,
		})
		return
	}

	rendered := make([]RenderedGuide, 0, len(guides))
	for _, g := range guides {
		rendered = append(rendered, RenderedGuide{
			Guide: g,
			HTML:  renderMarkdown(g.Body),
		})
	}

	h.renderer.renderPage(w, r, "guides", GuidesPageData{
		PageData: PageData{
			Title:   "Guides",
			Version: h.renderer.version,
			Nav:     "guides",
		},
		Fresh:  fresh,
		Guides: rendered,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
