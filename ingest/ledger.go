package ingest

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Document is one ledger row: a source file that has been chunked and
// embedded into the vector collection. The checksum lets re-runs skip
// unchanged files.
type Document struct {
	gorm.Model
	Path     string `gorm:"index:,unique"`
	Checksum string
	Chunks   int
}

func openLedger(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, err
	}
	return db, nil
}
