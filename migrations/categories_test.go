package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hexleaf/inkwell/models"
)

func setupBackfillDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Blog{}))
	return db
}

func TestBackfillCategories(t *testing.T) {
	db := setupBackfillDB(t)

	blogs := []models.Blog{
		{AuthorID: 1, Title: "Why Facebook rewrote its feed", Content: "c", Tags: models.TagList{"travel"}},
		{AuthorID: 1, Title: "Plain tech notes", Content: "c", Tags: models.TagList{"tech"}},
		{AuthorID: 1, Title: "Nothing matches here", Content: "c", Tags: models.TagList{"gardening"}},
		{AuthorID: 1, Title: "Already categorized", Content: "c", Tags: models.TagList{"tech"}, Category: "lifestyle"},
	}
	for i := range blogs {
		require.NoError(t, db.Create(&blogs[i]).Error)
	}

	updated, err := BackfillCategories(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	byID := func(id uint) models.Blog {
		var b models.Blog
		require.NoError(t, db.First(&b, id).Error)
		return b
	}

	// A title keyword wins over the tag mapping.
	assert.Equal(t, "technology", byID(blogs[0].ID).Category)
	// No keyword: the first tag decides.
	assert.Equal(t, "technology", byID(blogs[1].ID).Category)
	// Neither matches: general.
	assert.Equal(t, "general", byID(blogs[2].ID).Category)
	// Pre-categorized rows are untouched.
	assert.Equal(t, "lifestyle", byID(blogs[3].ID).Category)

	// Tags are never modified.
	assert.Equal(t, models.TagList{"travel"}, byID(blogs[0].ID).Tags)

	// A second run has nothing left to do.
	updated, err = BackfillCategories(db)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
