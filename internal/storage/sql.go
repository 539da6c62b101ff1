package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

type documentRecord struct {
	SessionID string `gorm:"primaryKey;size:64"`
	Status    string `gorm:"size:32;index"`
	Counselor string `gorm:"size:128"`
	Payload   datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (documentRecord) TableName() string {
	return "session_documents"
}

// SQLStore keeps documents in a SQL table through gorm.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLStore opens the database for driver ("sqlite" or "postgres") and migrates the table.
func NewSQLStore(driver, dsn string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dsn == "" {
		return nil, errors.New("storage dsn is required for driver " + driver)
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}

	if err := db.AutoMigrate(&documentRecord{}); err != nil {
		return nil, fmt.Errorf("migrate session documents: %w", err)
	}

	logger.Info("sql storage ready", zap.String("driver", driver))
	return &SQLStore{db: db, logger: logger}, nil
}

// Save upserts the document.
func (s *SQLStore) Save(ctx context.Context, doc *Document) error {
	payload, err := Encode(doc)
	if err != nil {
		return err
	}

	rec := documentRecord{
		SessionID: doc.SessionInfo.SessionID,
		Status:    doc.SessionInfo.Status,
		Counselor: doc.SessionInfo.Counselor,
		Payload:   datatypes.JSON(payload),
		CreatedAt: doc.SessionInfo.Created,
		UpdatedAt: doc.SessionInfo.Updated,
	}

	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "counselor", "payload", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.SessionID, err)
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, sessionID string) (*Document, error) {
	var rec documentRecord
	err := s.db.WithContext(ctx).First(&rec, "session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return Decode(rec.Payload)
}

func (s *SQLStore) Delete(ctx context.Context, sessionID string) error {
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&documentRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
