package service

import (
	"context"
	"errors"
	"fmt"

	"titledb/internal/api/dto"
	"titledb/internal/api/models"
	"titledb/internal/api/permissions"
	"titledb/internal/api/repository"
	"titledb/internal/api/validate"

	"gorm.io/gorm"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrReviewExists   = errors.New("author has already reviewed this title")
	ErrForbidden      = errors.New("operation not allowed for this user")
)

type ReviewService interface {
	Create(ctx context.Context, ident permissions.Identity, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	Update(ctx context.Context, ident permissions.Identity, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, ident permissions.Identity, titleID, reviewID int64) error
	ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

// Create posts a review. The (author, title) pair may hold at most one
// review; the store's unique constraint decides races, not this code.
func (s *reviewService) Create(ctx context.Context, ident permissions.Identity, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if err := validate.Score(in.Score); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	review := &models.Review{
		TitleID:  titleID,
		AuthorID: ident.ID,
		Text:     in.Text,
		Score:    in.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrReviewExists
		}
		return nil, err
	}

	// Reload with author data
	review, err := s.reviewRepo.GetByID(ctx, review.ID)
	if err != nil {
		return nil, err
	}
	return dto.ReviewFromModel(review), nil
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.getForTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	return dto.ReviewFromModel(review), nil
}

func (s *reviewService) Update(ctx context.Context, ident permissions.Identity, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.getForTitle(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanEditObject(ident, review.AuthorID) {
		return nil, ErrForbidden
	}

	if in.Text != nil {
		review.Text = *in.Text
	}
	if in.Score != nil {
		if err := validate.Score(*in.Score); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		review.Score = *in.Score
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return dto.ReviewFromModel(review), nil
}

// Delete removes a review, re-opening the (author, title) pair for a
// new one. Allowed for the author, moderators and admins.
func (s *reviewService) Delete(ctx context.Context, ident permissions.Identity, titleID, reviewID int64) error {
	review, err := s.getForTitle(ctx, titleID, reviewID)
	if err != nil {
		return err
	}
	if !permissions.CanEditObject(ident, review.AuthorID) {
		return ErrForbidden
	}
	return s.reviewRepo.Delete(ctx, reviewID)
}

func (s *reviewService) ListByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTitleNotFound
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, *dto.ReviewFromModel(&review))
	}
	return dto.NewPaginatedReviewResponse(responses, int(total), page, pageSize), nil
}

func (s *reviewService) getForTitle(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.TitleID != titleID {
		return nil, ErrReviewNotFound
	}
	return review, nil
}
