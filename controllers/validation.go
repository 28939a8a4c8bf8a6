package controllers

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/hexleaf/inkwell/models"
	"github.com/hexleaf/inkwell/utils"
)

// Validation collects every violation before responding, so a client fixing
// a form sees all problems at once instead of one per round trip.

const (
	maxTitleLen    = 100
	maxContentLen  = 50000
	maxExcerptLen  = 200
	maxTagLen      = 20
	maxCommentLen  = 1000
	maxBioLen      = 500
	maxUsernameLen = 64
	minPasswordLen = 8
)

func validateBlogInput(title, content, category, status string, tags models.TagList) []utils.FieldError {
	var violations []utils.FieldError
	if strings.TrimSpace(title) == "" {
		violations = append(violations, utils.FieldError{Field: "title", Message: "title is required"})
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		violations = append(violations, utils.FieldError{Field: "title", Message: "title must be at most 100 characters"})
	}
	if strings.TrimSpace(content) == "" {
		violations = append(violations, utils.FieldError{Field: "content", Message: "content is required"})
	} else if utf8.RuneCountInString(content) > maxContentLen {
		violations = append(violations, utils.FieldError{Field: "content", Message: "content must be at most 50000 characters"})
	}
	if category != "" && !isKnownCategory(category) {
		violations = append(violations, utils.FieldError{Field: "category", Message: "unknown category"})
	}
	if status != "" && status != models.StatusDraft && status != models.StatusPublished {
		violations = append(violations, utils.FieldError{Field: "status", Message: "status must be draft or published"})
	}
	if len(tags) > 10 {
		violations = append(violations, utils.FieldError{Field: "tags", Message: "at most 10 tags"})
	}
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxTagLen {
			violations = append(violations, utils.FieldError{Field: "tags", Message: "each tag must be at most 20 characters"})
			break
		}
	}
	return violations
}

func validateCommentContent(content string) []utils.FieldError {
	var violations []utils.FieldError
	if strings.TrimSpace(content) == "" {
		violations = append(violations, utils.FieldError{Field: "content", Message: "content is required"})
	} else if utf8.RuneCountInString(content) > maxCommentLen {
		violations = append(violations, utils.FieldError{Field: "content", Message: "content must be at most 1000 characters"})
	}
	return violations
}

func validateRegisterInput(username, email, password string) []utils.FieldError {
	var violations []utils.FieldError
	username = strings.TrimSpace(username)
	if username == "" {
		violations = append(violations, utils.FieldError{Field: "username", Message: "username is required"})
	} else if utf8.RuneCountInString(username) > maxUsernameLen {
		violations = append(violations, utils.FieldError{Field: "username", Message: "username must be at most 64 characters"})
	}
	if email == "" {
		violations = append(violations, utils.FieldError{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(email); err != nil {
		violations = append(violations, utils.FieldError{Field: "email", Message: "invalid email address"})
	}
	if len(password) < minPasswordLen {
		violations = append(violations, utils.FieldError{Field: "password", Message: "password must be at least 8 characters"})
	}
	return violations
}

func validateProfileInput(bio, avatarURL string) []utils.FieldError {
	var violations []utils.FieldError
	if utf8.RuneCountInString(bio) > maxBioLen {
		violations = append(violations, utils.FieldError{Field: "bio", Message: "bio must be at most 500 characters"})
	}
	if len(avatarURL) > 512 {
		violations = append(violations, utils.FieldError{Field: "avatar_url", Message: "avatar_url too long"})
	}
	return violations
}

func isKnownCategory(category string) bool {
	for _, c := range models.Taxonomy() {
		if c == category {
			return true
		}
	}
	return false
}
