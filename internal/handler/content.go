package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/brosmart/internal/domain/content"
)

// Data handles GET /api/data, the storefront bootstrap payload.
func (h *Handler) Data(w http.ResponseWriter, r *http.Request) {
	snap, err := h.storefront.Snapshot(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSnapshot(e, snap) })
}

// Stats handles GET /api/admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.storefront.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeStats(e, st) })
}

func (h *Handler) ListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := h.content.ListSlides(r.Context())
	if err != nil {
		respondError(w, r, errors.Wrap(err, "list slides"))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { arr(e, slides, encodeSlide) })
}

func (h *Handler) CreateSlide(w http.ResponseWriter, r *http.Request) {
	var s content.Slide
	err := readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			s.Title, err = optStr(d)
		case "subtitle":
			s.Subtitle, err = optStr(d)
		case "image":
			s.Image, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	s, err = content.NewSlide(s)
	if err != nil {
		respondError(w, r, badRequest(err.Error()))
		return
	}
	if err := h.content.CreateSlide(r.Context(), s); err != nil {
		respondError(w, r, errors.Wrap(err, "create slide"))
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeSlide(e, s) })
}

func (h *Handler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteSlide(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListFeatures(w http.ResponseWriter, r *http.Request) {
	features, err := h.content.ListFeatures(r.Context())
	if err != nil {
		respondError(w, r, errors.Wrap(err, "list features"))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { arr(e, features, encodeFeature) })
}

func decodeFeature(r *http.Request) (content.Feature, error) {
	var f content.Feature
	err := readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "icon":
			f.Icon, err = optStr(d)
		case "title":
			f.Title, err = optStr(d)
		case "subtitle":
			f.Subtitle, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	return f, err
}

func (h *Handler) CreateFeature(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFeature(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	f, err = content.NewFeature(f)
	if err != nil {
		respondError(w, r, badRequest(err.Error()))
		return
	}
	if err := h.content.CreateFeature(r.Context(), f); err != nil {
		respondError(w, r, errors.Wrap(err, "create feature"))
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeFeature(e, f) })
}

func (h *Handler) UpdateFeature(w http.ResponseWriter, r *http.Request) {
	f, err := decodeFeature(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := f.Validate(); err != nil {
		respondError(w, r, badRequest(err.Error()))
		return
	}
	f.ID = chi.URLParam(r, "id")

	if err := h.content.UpdateFeature(r.Context(), f); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeFeature(e, f) })
}

func (h *Handler) DeleteFeature(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteFeature(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	c, err := h.content.SiteContent(r.Context())
	if err != nil {
		respondError(w, r, errors.Wrap(err, "get site content"))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSiteContent(e, c) })
}

// UpdateContent handles PUT /api/content. Omitted fields keep their value.
func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	c, err := h.content.SiteContent(ctx)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "get site content"))
		return
	}
	err = readObject(r, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "footerAbout":
			c.FooterAbout, err = optStr(d)
		case "copyright":
			c.Copyright, err = optStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.content.UpsertSiteContent(ctx, c); err != nil {
		respondError(w, r, errors.Wrap(err, "upsert site content"))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeSiteContent(e, c) })
}
