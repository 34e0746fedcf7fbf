package repository

import (
	"context"

	"github.com/HoonDongKang/daily-ranking-redis/internal/models"

	"gorm.io/gorm"
)

// PostgresRepository archives game records in PostgreSQL
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new Postgres repository
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// InsertRecord stores one accepted submission
func (r *PostgresRepository) InsertRecord(ctx context.Context, record *models.GameRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// BulkInsertRecords efficiently inserts multiple records
func (r *PostgresRepository) BulkInsertRecords(ctx context.Context, records []models.GameRecord, batchSize int) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(records, batchSize).Error
}

// ListRecords returns a nickname's most recent records, newest first
func (r *PostgresRepository) ListRecords(ctx context.Context, nickname string, limit int) ([]models.GameRecord, error) {
	records := make([]models.GameRecord, 0, limit)
	err := r.db.WithContext(ctx).
		Where("nickname = ?", nickname).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// Ping checks if database is reachable
func (r *PostgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate runs database migrations
func (r *PostgresRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&models.GameRecord{})
}
