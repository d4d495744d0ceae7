package service

import (
	"context"
	"errors"
	"fmt"

	"titledb/internal/api/dto"
	"titledb/internal/api/models"
	"titledb/internal/api/repository"
	"titledb/internal/api/validate"

	"gorm.io/gorm"
)

var ErrTitleNotFound = errors.New("title not found")

type TitleService interface {
	Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter dto.TitleFilter) (*dto.PaginatedTitleResponse, error)
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
	}
}

func (s *titleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	if err := validate.Name(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := validate.Year(in.Year); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}

	if in.Category != "" {
		category, err := s.resolveCategory(ctx, in.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	genres, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}
	title.Genres = genres

	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(*title, nil)
	return &resp, nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	averages, err := s.reviewRepo.AverageScores(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(*title, ratingFor(averages, id))
	return &resp, nil
}

func (s *titleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	if in.Name != nil {
		if err := validate.Name(*in.Name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		title.Name = *in.Name
	}
	if in.Year != nil {
		if err := validate.Year(*in.Year); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = in.Description
	}
	if in.Category != nil {
		if *in.Category == "" {
			title.CategoryID = nil
			title.Category = nil
		} else {
			category, err := s.resolveCategory(ctx, *in.Category)
			if err != nil {
				return nil, err
			}
			title.CategoryID = &category.ID
			title.Category = category
		}
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	if in.Genre != nil {
		genres, err := s.resolveGenres(ctx, *in.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, title, genres); err != nil {
			return nil, err
		}
		title.Genres = genres
	}

	averages, err := s.reviewRepo.AverageScores(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	resp := dto.TitleFromModel(*title, ratingFor(averages, id))
	return &resp, nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTitleNotFound
		}
		return err
	}
	return nil
}

func (s *titleService) List(ctx context.Context, filter dto.TitleFilter) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for _, title := range titles {
		ids = append(ids, title.ID)
	}
	// Ratings are recomputed on every read, never cached.
	averages, err := s.reviewRepo.AverageScores(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for _, title := range titles {
		responses = append(responses, dto.TitleFromModel(title, ratingFor(averages, title.ID)))
	}
	return dto.NewPaginatedTitleResponse(responses, int(total), filter.Page, filter.PageSize), nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, slug)
		}
		return nil, err
	}
	return category, nil
}

func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	genres, err := s.genreRepo.GetBySlugs(ctx, slugs)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(slugs) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		for _, slug := range slugs {
			if !found[slug] {
				return nil, fmt.Errorf("%w: unknown genre %q", ErrInvalidInput, slug)
			}
		}
	}
	return genres, nil
}

// ratingFor returns nil for titles with no reviews; a title is never
// shown with a zero rating.
func ratingFor(averages map[int64]float64, titleID int64) *float64 {
	if avg, ok := averages[titleID]; ok {
		return &avg
	}
	return nil
}
