package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"telegram-tag-all-bot/tagall"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Storage struct {
	db *gorm.DB
}

func New(dbPath string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		slog.Error("storage: Failed to connect to database", "error", err, "path", dbPath)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate() error {
	err := s.db.AutoMigrate(&GroupConfig{})
	if err != nil {
		slog.Error("storage: Failed to migrate database", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}

// Close releases the underlying connection pool
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.Close()
}

// TagConfig retrieves the announcement of a group
func (s *Storage) TagConfig(ctx context.Context, groupID int64) (*tagall.TagConfig, error) {
	var cfg GroupConfig
	result := s.db.WithContext(ctx).Where("group_id = ?", groupID).Take(&cfg)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, tagall.ErrConfigNotFound
	}
	if result.Error != nil {
		slog.Error("storage: Failed to get tag config", "error", result.Error, "group_id", groupID)
		return nil, fmt.Errorf("failed to get tag config: %w", result.Error)
	}

	kind, ok := tagall.ParseKind(cfg.Kind)
	if !ok {
		slog.Warn("storage: Unknown tag config kind, treating as text", "kind", cfg.Kind, "group_id", groupID)
	}

	return &tagall.TagConfig{
		GroupID: cfg.GroupID,
		Content: cfg.Content,
		Kind:    kind,
	}, nil
}

// SaveTagConfig creates or updates the announcement of a group.
// Only content and kind are overwritten, other columns of an existing row are kept.
func (s *Storage) SaveTagConfig(ctx context.Context, cfg tagall.TagConfig) error {
	now := time.Now()
	row := GroupConfig{
		GroupID:   cfg.GroupID,
		Content:   cfg.Content,
		Kind:      cfg.Kind.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "kind", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		slog.Error("storage: Failed to save tag config", "error", result.Error,
			"group_id", cfg.GroupID, "kind", cfg.Kind.String())
		return fmt.Errorf("failed to save tag config: %w", result.Error)
	}

	return nil
}

// SetTitle stores the human readable title of a group without touching its announcement
func (s *Storage) SetTitle(ctx context.Context, groupID int64, title string) error {
	now := time.Now()
	row := GroupConfig{
		GroupID:   groupID,
		Title:     title,
		Kind:      tagall.KindText.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "updated_at"}),
	}).Create(&row)
	if result.Error != nil {
		slog.Error("storage: Failed to save group title", "error", result.Error, "group_id", groupID)
		return fmt.Errorf("failed to save group title: %w", result.Error)
	}

	return nil
}
