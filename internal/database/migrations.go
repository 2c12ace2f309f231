package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := normalizeCardRarity(db); err != nil {
		return err
	}
	if err := cleanupDuplicateSnapshots(db); err != nil {
		return err
	}
	return nil
}

// normalizeCardRarity replaces NULL rarities with empty strings so the
// exact-match rarity filter behaves the same for unrated cards regardless of
// which ingest version wrote them.
func normalizeCardRarity(db *gorm.DB) error {
	result := db.Exec(`UPDATE cards SET rarity = '' WHERE rarity IS NULL`)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Printf("Normalized rarity on %d cards", result.RowsAffected)
	}
	return nil
}

// cleanupDuplicateSnapshots removes redundant same-day snapshots left behind
// by ingest runs that were restarted mid-sync. The newest row per card per
// day is kept; "latest snapshot" queries are unaffected.
func cleanupDuplicateSnapshots(db *gorm.DB) error {
	if !db.Migrator().HasTable("price_snapshots") {
		return nil
	}

	result := db.Exec(`
		DELETE FROM price_snapshots
		WHERE id NOT IN (
			SELECT MAX(id)
			FROM price_snapshots
			GROUP BY card_id, DATE(created_at)
		)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d duplicate price snapshots", result.RowsAffected)
	}

	return nil
}
