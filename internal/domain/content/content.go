// Package content holds the editable storefront copy: hero slides, homepage
// feature tiles and the footer text.
package content

import (
	"context"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/brosmart/internal/domain/ident"
)

// SiteContentID is the key of the singleton site content record.
const SiteContentID = "site_content"

// ErrNotFound is returned when a slide or feature does not exist.
var ErrNotFound = errors.New("content not found")

// Slide is a hero carousel entry.
type Slide struct {
	ID       string
	Title    string
	Subtitle string
	Image    string
}

// Feature is a homepage feature tile.
type Feature struct {
	ID       string
	Icon     string
	Title    string
	Subtitle string
}

// SiteContent is the footer copy.
type SiteContent struct {
	FooterAbout string
	Copyright   string
}

// NewSlide fills in a fresh id.
func NewSlide(s Slide) (Slide, error) {
	if strings.TrimSpace(s.Title) == "" {
		return Slide{}, errors.New("title is required")
	}
	s.ID = ident.New("S")
	return s, nil
}

// NewFeature fills in a fresh id.
func NewFeature(f Feature) (Feature, error) {
	if err := f.Validate(); err != nil {
		return Feature{}, err
	}
	f.ID = ident.New("F")
	return f, nil
}

// Validate checks the editable fields of a feature tile.
func (f *Feature) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// Repository is a plain passthrough store for storefront copy.
type Repository interface {
	ListSlides(ctx context.Context) ([]Slide, error)
	CreateSlide(ctx context.Context, s Slide) error
	DeleteSlide(ctx context.Context, id string) error

	ListFeatures(ctx context.Context) ([]Feature, error)
	CreateFeature(ctx context.Context, f Feature) error
	UpdateFeature(ctx context.Context, f Feature) error
	DeleteFeature(ctx context.Context, id string) error

	// SiteContent returns the zero value when nothing was stored yet.
	SiteContent(ctx context.Context) (SiteContent, error)
	UpsertSiteContent(ctx context.Context, c SiteContent) error
}
