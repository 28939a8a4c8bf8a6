package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hexleaf/inkwell/config"
	"github.com/hexleaf/inkwell/models"
	"github.com/hexleaf/inkwell/utils"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Upload stores an image under the local upload directory and returns its
// public URL. Clients attach the URL to a blog as featured_image.
func (b *BlogController) Upload(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40114, "unauthorized")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		file, err = ctx.FormFile("image")
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40030, "no file uploaded")
			return
		}
	}

	url, err := saveUploadedImage(b.db, ctx, userID, file)
	if err != nil {
		switch err {
		case errFileTooLarge:
			utils.Error(ctx, http.StatusBadRequest, 40031, "file too large")
		case errBadImageType:
			utils.Error(ctx, http.StatusBadRequest, 40032, "unsupported image type")
		default:
			utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to save file")
		}
		return
	}

	utils.Success(ctx, gin.H{"url": url})
}

var (
	errFileTooLarge = fmt.Errorf("file too large")
	errBadImageType = fmt.Errorf("unsupported image type")
)

// saveUploadedImage validates and writes an uploaded image, recording it for
// orphan audits. The file lands under UploadDir/yyyy/mm with a uuid name so
// client-supplied filenames never touch the filesystem.
func saveUploadedImage(db *gorm.DB, ctx *gin.Context, userID uint, file *multipart.FileHeader) (string, error) {
	cfg := config.Get()

	maxSize := int64(cfg.UploadMaxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return "", errFileTooLarge
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", errBadImageType
	}

	now := time.Now()
	subdir := filepath.Join(now.Format("2006"), now.Format("01"))
	name := uuid.NewString() + ext
	dstPath := filepath.Join(cfg.UploadDir, subdir, name)

	if err := ctx.SaveUploadedFile(file, dstPath); err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s/%s", strings.TrimRight(cfg.UploadBaseURL, "/"), filepath.ToSlash(subdir), name)

	// Best-effort record; a missed row only weakens the orphan audit.
	go func(path, url string) {
		defer func() { _ = recover() }()
		_ = db.Create(&models.UploadedFile{UserID: userID, FilePath: path, URL: url}).Error
	}(dstPath, url)

	return url, nil
}

// blogInputFromForm reads blog fields out of a multipart form. Tags arrive as
// a comma-separated string in this shape.
func blogInputFromForm(ctx *gin.Context) blogInput {
	return blogInput{
		Title:         ctx.PostForm("title"),
		Content:       ctx.PostForm("content"),
		Excerpt:       ctx.PostForm("excerpt"),
		Tags:          models.TagsField(strings.Split(ctx.PostForm("tags"), ",")),
		Category:      ctx.PostForm("category"),
		FeaturedImage: ctx.PostForm("featured_image_url"),
		Status:        ctx.PostForm("status"),
	}
}
