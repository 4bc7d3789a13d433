package infrastructure

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/musifyyy/tunefetch/internal/domain"
)

// SQLiteJournal implements domain.FetchJournal on SQLite. The collaborator
// layers use it for request bookkeeping; the core never reads it.
type SQLiteJournal struct {
	db *gorm.DB
}

// NewSQLiteJournal opens (or creates) the journal database.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.AutoMigrate(&domain.FetchRecord{}, &domain.EventRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Create creates a new journal record
func (j *SQLiteJournal) Create(record *domain.FetchRecord) error {
	return j.db.Create(record).Error
}

// Update updates an existing journal record
func (j *SQLiteJournal) Update(record *domain.FetchRecord) error {
	return j.db.Save(record).Error
}

// FindByID finds a journal record by ID
func (j *SQLiteJournal) FindByID(id string) (*domain.FetchRecord, error) {
	var record domain.FetchRecord
	if err := j.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindRecent returns the most recent records, newest first.
func (j *SQLiteJournal) FindRecent(limit int) ([]*domain.FetchRecord, error) {
	var records []*domain.FetchRecord
	err := j.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountByStatus counts records in a given status
func (j *SQLiteJournal) CountByStatus(status domain.FetchStatus) (int64, error) {
	var count int64
	err := j.db.Model(&domain.FetchRecord{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// AppendEvent persists one emitted resolution event.
func (j *SQLiteJournal) AppendEvent(record *domain.EventRecord) error {
	return j.db.Create(record).Error
}

// RecentEvents returns the most recent events, newest first.
func (j *SQLiteJournal) RecentEvents(limit int) ([]*domain.EventRecord, error) {
	var records []*domain.EventRecord
	err := j.db.Order("id DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Close closes the underlying database connection.
func (j *SQLiteJournal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
