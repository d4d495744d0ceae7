package repository

import (
	"context"

	"titledb/internal/api/dto"
	"titledb/internal/api/models"

	"gorm.io/gorm"
)

type TitleRepository interface {
	Create(ctx context.Context, title *models.Title) error
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Update(ctx context.Context, title *models.Title) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter dto.TitleFilter) ([]models.Title, int64, error)
	ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	return r.db.WithContext(ctx).Create(title).Error
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var title models.Title
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Genres").
		First(&title, "titles.id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) Update(ctx context.Context, title *models.Title) error {
	// Save skips nil pointer columns, so clearing the category needs an
	// explicit update.
	if err := r.db.WithContext(ctx).Model(title).Select("name", "year", "description", "category_id").Updates(map[string]any{
		"name":        title.Name,
		"year":        title.Year,
		"description": title.Description,
		"category_id": title.CategoryID,
	}).Error; err != nil {
		return err
	}
	return nil
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List applies the catalogue filters: name substring, exact year,
// category slug and genre slug.
func (r *titleRepository) List(ctx context.Context, filter dto.TitleFilter) ([]models.Title, int64, error) {
	var titles []models.Title
	var total int64

	// Count and fetch run on separate chains: the count narrows its
	// select list to distinct ids, and that must not leak into the row
	// query.
	if err := r.listQuery(ctx, filter).Distinct("titles.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := r.listQuery(ctx, filter).
		Distinct("titles.*").
		Preload("Category").
		Preload("Genres").
		Order("titles.name ASC").
		Limit(filter.PageSize).
		Offset(offset).
		Find(&titles).Error
	if err != nil {
		return nil, 0, err
	}
	return titles, total, nil
}

// listQuery builds a fresh filtered chain for one query.
func (r *titleRepository) listQuery(ctx context.Context, filter dto.TitleFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Title{})
	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != nil {
		q = q.Where("titles.year = ?", *filter.Year)
	}
	if filter.Category != "" {
		q = q.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filter.Category)
	}
	if filter.Genre != "" {
		q = q.Joins("JOIN title_genres ON title_genres.title_id = titles.id").
			Joins("JOIN genres ON genres.id = title_genres.genre_id").
			Where("genres.slug = ?", filter.Genre)
	}
	return q
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error {
	return r.db.WithContext(ctx).Model(title).Association("Genres").Replace(genres)
}
