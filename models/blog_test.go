package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveReadTime(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty content reads as one minute", "", 1},
		{"single word", "hello", 1},
		{"exactly 200 words", strings.Repeat("word ", 200), 1},
		{"201 words rounds up", strings.Repeat("word ", 201), 2},
		{"401 words", strings.Repeat("word ", 401), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveReadTime(tt.content))
		})
	}
}

func TestDeriveExcerpt(t *testing.T) {
	t.Run("strips markup", func(t *testing.T) {
		got := DeriveExcerpt("<b>Hello</b> <i>world</i>")
		assert.Equal(t, "Hello world", got)
	})

	t.Run("long content truncates with ellipsis", func(t *testing.T) {
		content := "<b>Hello</b> " + strings.Repeat("a", 200)
		got := DeriveExcerpt(content)
		assert.Len(t, []rune(got), 153)
		assert.True(t, strings.HasSuffix(got, "..."))
		assert.Equal(t, "Hello ", got[:6])
	})

	t.Run("exactly 150 characters keeps no suffix", func(t *testing.T) {
		content := strings.Repeat("a", 150)
		assert.Equal(t, content, DeriveExcerpt(content))
	})

	t.Run("short content unchanged", func(t *testing.T) {
		assert.Equal(t, "short text", DeriveExcerpt("short text"))
	})
}

func TestApplyContentMetadata(t *testing.T) {
	t.Run("derives excerpt when empty", func(t *testing.T) {
		b := Blog{Content: "some plain content"}
		b.ApplyContentMetadata()
		assert.Equal(t, "some plain content", b.Excerpt)
		assert.Equal(t, 1, b.ReadTime)
	})

	t.Run("keeps supplied excerpt", func(t *testing.T) {
		b := Blog{Content: strings.Repeat("word ", 500), Excerpt: "my own summary"}
		b.ApplyContentMetadata()
		assert.Equal(t, "my own summary", b.Excerpt)
		assert.Equal(t, 3, b.ReadTime)
	})
}
