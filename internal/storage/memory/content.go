package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/xenking/brosmart/internal/domain/content"
)

var _ content.Repository = (*ContentRepository)(nil)

// ContentRepository keeps slides and features in insertion order.
type ContentRepository struct {
	mu       sync.RWMutex
	slides   []content.Slide
	features []content.Feature
	site     content.SiteContent
}

// NewContentRepository returns an empty repository.
func NewContentRepository() *ContentRepository {
	return &ContentRepository{}
}

func (r *ContentRepository) ListSlides(_ context.Context) ([]content.Slide, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.slides), nil
}

func (r *ContentRepository) CreateSlide(_ context.Context, s content.Slide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slides = append(r.slides, s)
	return nil
}

func (r *ContentRepository) DeleteSlide(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.slides)
	r.slides = slices.DeleteFunc(r.slides, func(s content.Slide) bool { return s.ID == id })
	if len(r.slides) == n {
		return content.ErrNotFound
	}
	return nil
}

func (r *ContentRepository) ListFeatures(_ context.Context) ([]content.Feature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.features), nil
}

func (r *ContentRepository) CreateFeature(_ context.Context, f content.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.features = append(r.features, f)
	return nil
}

func (r *ContentRepository) UpdateFeature(_ context.Context, f content.Feature) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.IndexFunc(r.features, func(v content.Feature) bool { return v.ID == f.ID })
	if i < 0 {
		return content.ErrNotFound
	}
	r.features[i] = f
	return nil
}

func (r *ContentRepository) DeleteFeature(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.features)
	r.features = slices.DeleteFunc(r.features, func(f content.Feature) bool { return f.ID == id })
	if len(r.features) == n {
		return content.ErrNotFound
	}
	return nil
}

func (r *ContentRepository) SiteContent(_ context.Context) (content.SiteContent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.site, nil
}

func (r *ContentRepository) UpsertSiteContent(_ context.Context, c content.SiteContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.site = c
	return nil
}
