package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want string
	}{
		{"direct mapping", []string{"technology"}, "technology"},
		{"alias mapping", []string{"tech"}, "technology"},
		{"case insensitive", []string{"Tech", "other"}, "technology"},
		{"only first tag decides", []string{"unknown", "travel"}, "general"},
		{"food folds into lifestyle", []string{"food"}, "lifestyle"},
		{"finance folds into business", []string{"finance"}, "business"},
		{"no tags", nil, "general"},
		{"unmapped tag", []string{"gardening"}, "general"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferCategory(tt.tags))
		})
	}
}

func TestTaxonomyIncludesGeneral(t *testing.T) {
	assert.Contains(t, Taxonomy(), CategoryGeneral)
}
