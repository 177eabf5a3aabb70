package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/brosmart/internal/domain/content"
)

const (
	listSlidesSQL  = `SELECT id, title, subtitle, image FROM slides ORDER BY created_at, id`
	createSlideSQL = `INSERT INTO slides (id, title, subtitle, image) VALUES ($1, $2, $3, $4)`
	deleteSlideSQL = `DELETE FROM slides WHERE id = $1`

	listFeaturesSQL  = `SELECT id, icon, title, subtitle FROM features ORDER BY created_at, id`
	createFeatureSQL = `INSERT INTO features (id, icon, title, subtitle) VALUES ($1, $2, $3, $4)`
	updateFeatureSQL = `UPDATE features SET icon = $2, title = $3, subtitle = $4 WHERE id = $1`
	deleteFeatureSQL = `DELETE FROM features WHERE id = $1`

	getSiteContentSQL    = `SELECT footer_about, copyright FROM site_content WHERE id = $1`
	upsertSiteContentSQL = `INSERT INTO site_content (id, footer_about, copyright) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET footer_about = EXCLUDED.footer_about, copyright = EXCLUDED.copyright`
)

var _ content.Repository = (*ContentRepository)(nil)

// ContentRepository stores slides, features and the footer copy.
type ContentRepository struct {
	pool *pgxpool.Pool
}

// NewContentRepository returns a ContentRepository that uses the given pool.
func NewContentRepository(pool *pgxpool.Pool) *ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) ListSlides(ctx context.Context) ([]content.Slide, error) {
	rows, err := r.pool.Query(ctx, listSlidesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing slides: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Slide, error) {
		var s content.Slide
		err := row.Scan(&s.ID, &s.Title, &s.Subtitle, &s.Image)
		return s, err
	})
}

func (r *ContentRepository) CreateSlide(ctx context.Context, s content.Slide) error {
	if _, err := r.pool.Exec(ctx, createSlideSQL, s.ID, s.Title, s.Subtitle, s.Image); err != nil {
		return fmt.Errorf("creating slide %q: %w", s.ID, err)
	}
	return nil
}

func (r *ContentRepository) DeleteSlide(ctx context.Context, id string) error {
	return r.deleteByID(ctx, deleteSlideSQL, "slide", id)
}

func (r *ContentRepository) ListFeatures(ctx context.Context) ([]content.Feature, error) {
	rows, err := r.pool.Query(ctx, listFeaturesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing features: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (content.Feature, error) {
		var f content.Feature
		err := row.Scan(&f.ID, &f.Icon, &f.Title, &f.Subtitle)
		return f, err
	})
}

func (r *ContentRepository) CreateFeature(ctx context.Context, f content.Feature) error {
	if _, err := r.pool.Exec(ctx, createFeatureSQL, f.ID, f.Icon, f.Title, f.Subtitle); err != nil {
		return fmt.Errorf("creating feature %q: %w", f.ID, err)
	}
	return nil
}

func (r *ContentRepository) UpdateFeature(ctx context.Context, f content.Feature) error {
	tag, err := r.pool.Exec(ctx, updateFeatureSQL, f.ID, f.Icon, f.Title, f.Subtitle)
	if err != nil {
		return fmt.Errorf("updating feature %q: %w", f.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}

func (r *ContentRepository) DeleteFeature(ctx context.Context, id string) error {
	return r.deleteByID(ctx, deleteFeatureSQL, "feature", id)
}

func (r *ContentRepository) SiteContent(ctx context.Context) (content.SiteContent, error) {
	var c content.SiteContent
	err := r.pool.QueryRow(ctx, getSiteContentSQL, content.SiteContentID).Scan(&c.FooterAbout, &c.Copyright)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return content.SiteContent{}, fmt.Errorf("getting site content: %w", err)
	}
	return c, nil
}

func (r *ContentRepository) UpsertSiteContent(ctx context.Context, c content.SiteContent) error {
	if _, err := r.pool.Exec(ctx, upsertSiteContentSQL, content.SiteContentID, c.FooterAbout, c.Copyright); err != nil {
		return fmt.Errorf("upserting site content: %w", err)
	}
	return nil
}

func (r *ContentRepository) deleteByID(ctx context.Context, sql, kind, id string) error {
	tag, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("deleting %s %q: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return content.ErrNotFound
	}
	return nil
}
