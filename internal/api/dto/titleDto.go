package dto

import "titledb/internal/api/models"

// CreateTitleDTO for POST /api/v1/titles. Category and genres are
// referenced by slug, as in the list filters.
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required,max=256"`
	Year        int      `json:"year" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Category    string   `json:"category" binding:"omitempty,max=50"`
	Genre       []string `json:"genre" binding:"omitempty,dive,max=50"`
}

// UpdateTitleDTO for PATCH /api/v1/titles/:title_id. Nil fields are
// left untouched.
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,max=256"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty" binding:"omitempty,max=50"`
	Genre       *[]string `json:"genre,omitempty" binding:"omitempty,dive,max=50"`
}

// TitleFilter carries the list query parameters down to the repository.
type TitleFilter struct {
	Name     string
	Year     *int
	Category string
	Genre    string
	Page     int
	PageSize int
}

// TitleResponse for returning title information. Rating is nil when the
// title has no reviews yet, never zero.
type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Rating      *float64          `json:"rating"`
	Description *string           `json:"description,omitempty"`
	Category    *CategoryResponse `json:"category"`
	Genres      []GenreResponse   `json:"genre"`
}

// TitleFromModel converts a Title model to TitleResponse, attaching the
// rating computed from its reviews.
func TitleFromModel(t models.Title, rating *float64) TitleResponse {
	resp := TitleResponse{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Rating:      rating,
		Description: t.Description,
		Genres:      make([]GenreResponse, 0, len(t.Genres)),
	}
	if t.Category != nil {
		c := CategoryFromModel(*t.Category)
		resp.Category = &c
	}
	for _, g := range t.Genres {
		resp.Genres = append(resp.Genres, GenreFromModel(g))
	}
	return resp
}

// PaginatedTitleResponse for returning paginated titles
type PaginatedTitleResponse struct {
	Data       []TitleResponse `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
	Total      int             `json:"total"`
	TotalPages int             `json:"total_pages"`
}

func NewPaginatedTitleResponse(data []TitleResponse, total, page, pageSize int) *PaginatedTitleResponse {
	return &PaginatedTitleResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages(total, pageSize),
	}
}
