package models

// SluggedFields is the shared name+slug shape of Category and Genre.
// Embedded rather than inherited so the two stay independent tables.
type SluggedFields struct {
	Name string `gorm:"size:256;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;size:50;not null" json:"slug"`
}
