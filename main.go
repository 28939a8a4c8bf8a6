package main

import (
	"github.com/hexleaf/inkwell/config"
	"github.com/hexleaf/inkwell/models"
	"github.com/hexleaf/inkwell/routes"
	"github.com/hexleaf/inkwell/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Blog{},
		&models.Comment{},
		&models.BlogLike{},
		&models.BlogBookmark{},
		&models.CommentLike{},
		&models.PageView{},
		&models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
