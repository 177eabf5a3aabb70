package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/brosmart/internal/domain/ident"
	"github.com/xenking/brosmart/internal/domain/product"
)

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, errors.Wrap(err, "list products"))
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { arr(e, products, encodeProduct) })
}

// GetProduct handles GET /api/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

// CreateProduct handles POST /api/products. The id is generated.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		respondError(w, r, badRequest(err.Error()))
		return
	}
	p.ID = ident.New("P")

	if err := h.products.Create(r.Context(), &p); err != nil {
		respondError(w, r, errors.Wrap(err, "create product"))
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeProduct(e, p) })
}

// UpdateProduct handles PUT /api/products/{id}, replacing every editable
// field.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := p.Validate(); err != nil {
		respondError(w, r, badRequest(err.Error()))
		return
	}
	p.ID = chi.URLParam(r, "id")

	if err := h.products.Update(r.Context(), &p); err != nil {
		if !errors.Is(err, product.ErrNotFound) {
			err = errors.Wrapf(err, "update product %s", p.ID)
		}
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, p) })
}

// DeleteProduct handles DELETE /api/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
