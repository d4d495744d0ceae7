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

var ErrGenreNotFound = errors.New("genre not found")

type GenreService interface {
	Create(ctx context.Context, in dto.CreateGenreDTO) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error)
}

type genreService struct {
	genreRepo repository.GenreRepository
}

func NewGenreService(genreRepo repository.GenreRepository) GenreService {
	return &genreService{genreRepo: genreRepo}
}

func (s *genreService) Create(ctx context.Context, in dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if err := validate.Name(in.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	slug := in.Slug
	if slug == "" {
		slug = validate.SlugFromName(in.Name)
	}
	if err := validate.Slug(slug); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	genre := &models.Genre{
		SluggedFields: models.SluggedFields{Name: in.Name, Slug: slug},
	}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrSlugInUse
		}
		return nil, err
	}

	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.genreRepo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	genres, total, err := s.genreRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GenreResponse, 0, len(genres))
	for _, genre := range genres {
		responses = append(responses, dto.GenreFromModel(genre))
	}
	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}
