package repository

import (
	"context"
	"testing"

	"titledb/internal/api/dto"
	"titledb/internal/api/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRunDB builds SQL without a live connection.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=titledb dbname=titledb"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

// Reusing one chain for count and fetch lets the count's distinct-id
// select leak into the row query, returning titles with only the id
// populated. The row query must keep selecting full rows after the
// count has run.
func TestTitleRepository_ListRowQueryUnaffectedByCount(t *testing.T) {
	r := &titleRepository{db: dryRunDB(t)}
	ctx := context.Background()
	filter := dto.TitleFilter{Genre: "fantasy", Page: 1, PageSize: 20}

	var total int64
	r.listQuery(ctx, filter).Distinct("titles.id").Count(&total)

	var titles []models.Title
	stmt := r.listQuery(ctx, filter).
		Distinct("titles.*").
		Order("titles.name ASC").
		Limit(filter.PageSize).
		Find(&titles).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "titles.*")
	assert.NotContains(t, sql, "DISTINCT titles.id")
	assert.Contains(t, sql, "genres.slug")
}

func TestTitleRepository_ListQueryFilters(t *testing.T) {
	r := &titleRepository{db: dryRunDB(t)}
	ctx := context.Background()

	t.Run("NameAndYear", func(t *testing.T) {
		year := 2001
		var titles []models.Title
		stmt := r.listQuery(ctx, dto.TitleFilter{Name: "spirit", Year: &year}).
			Find(&titles).Statement

		sql := stmt.SQL.String()
		assert.Contains(t, sql, "titles.name ILIKE")
		assert.Contains(t, sql, "titles.year =")
	})

	t.Run("CategoryJoin", func(t *testing.T) {
		var titles []models.Title
		stmt := r.listQuery(ctx, dto.TitleFilter{Category: "movies"}).
			Find(&titles).Statement

		sql := stmt.SQL.String()
		assert.Contains(t, sql, "JOIN categories")
		assert.Contains(t, sql, "categories.slug")
	})

	t.Run("NoFilters", func(t *testing.T) {
		var titles []models.Title
		stmt := r.listQuery(ctx, dto.TitleFilter{}).Find(&titles).Statement

		sql := stmt.SQL.String()
		assert.NotContains(t, sql, "JOIN")
		assert.NotContains(t, sql, "ILIKE")
	})
}
