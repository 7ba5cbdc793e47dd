package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/HemnathKopula/melody/internal/models"
)

func AutoMigrate(db *gorm.DB) error {
	tables := []interface{}{
		&models.Song{},
		&models.PlaylistEntry{},
		&models.HistoryEntry{},
		&models.GenreTag{},
	}

	for _, table := range tables {
		if err := db.AutoMigrate(table); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", table, err)
		}
	}

	log.Println("✅ Database migration completed")
	return nil
}
