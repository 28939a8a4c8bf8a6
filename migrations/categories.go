package migrations

import (
	"strings"

	"gorm.io/gorm"

	"github.com/hexleaf/inkwell/models"
)

// Category backfill for blogs imported before the taxonomy existed. It fills
// only rows whose category is still empty and never touches tags, so running
// it repeatedly is safe and a re-run after new imports picks up just the new
// rows.

// titleOverrides route well-known title keywords to a category ahead of the
// tag mapping.
var titleOverrides = []struct {
	Keyword  string
	Category string
}{
	{"facebook", "technology"},
	{"entrepreneur", "business"},
	{"hello", "travel"},
}

// BackfillCategories assigns a category to every blog that has none. The
// title keywords win over the tag mapping; blogs matching neither fall back
// to "general". Returns the number of rows updated.
func BackfillCategories(db *gorm.DB) (int64, error) {
	var blogs []models.Blog
	if err := db.Select("id", "title", "tags").
		Where("category = ?", "").
		Find(&blogs).Error; err != nil {
		return 0, err
	}

	var updated int64
	for _, blog := range blogs {
		category := categoryForBlog(blog.Title, blog.Tags)
		res := db.Model(&models.Blog{}).
			Where("id = ? AND category = ?", blog.ID, "").
			Update("category", category)
		if res.Error != nil {
			return updated, res.Error
		}
		updated += res.RowsAffected
	}
	return updated, nil
}

func categoryForBlog(title string, tags models.TagList) string {
	lowered := strings.ToLower(title)
	for _, o := range titleOverrides {
		if strings.Contains(lowered, o.Keyword) {
			return o.Category
		}
	}
	return models.InferCategory(tags)
}
