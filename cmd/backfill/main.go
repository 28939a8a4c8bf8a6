package main

import (
	"log"

	"github.com/hexleaf/inkwell/config"
	"github.com/hexleaf/inkwell/migrations"
	"github.com/hexleaf/inkwell/models"
)

// Backfills categories for blogs created before the taxonomy existed.
// Safe to run more than once; already-categorized blogs are left alone.
func main() {
	config.Load()
	db := config.InitDatabase(&models.Blog{})

	updated, err := migrations.BackfillCategories(db)
	if err != nil {
		log.Fatalf("category backfill failed: %v", err)
	}
	log.Printf("category backfill complete, %d blogs updated", updated)
}
