// Package settingsrepo is the persisted key/value settings store.
package settingsrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingDTO is one key/value row. Value is JSON; an absent value is stored as JSON null.
type SettingDTO struct {
	Key       string         `gorm:"type:varchar(191);primaryKey"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

func (SettingDTO) TableName() string {
	return "settings"
}

var jsonNull = datatypes.JSON("null")

type GormSettingsStore struct {
	db *gorm.DB
}

func NewGormSettingsStore(db *gorm.DB) *GormSettingsStore {
	return &GormSettingsStore{db: db}
}

// Get decodes key into dest. Missing keys and JSON null both report false.
func (s *GormSettingsStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	var dto SettingDTO
	err := s.db.WithContext(ctx).Where("key = ?", key).Limit(1).Find(&dto).Error
	if err != nil {
		return false, err
	}
	if dto.Key == "" || len(dto.Value) == 0 || string(dto.Value) == string(jsonNull) {
		return false, nil
	}
	if err = json.Unmarshal(dto.Value, dest); err != nil {
		return false, fmt.Errorf("decode setting %q: %w", key, err)
	}
	return true, nil
}

func (s *GormSettingsStore) Set(ctx context.Context, key string, value any) error {
	if key == "" {
		return errors.New("setting key is required")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode setting %q: %w", key, err)
	}
	dto := SettingDTO{Key: key, Value: datatypes.JSON(raw), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&dto).Error
}

// Delete resets key to JSON null, keeping the row so it stays lockable.
func (s *GormSettingsStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Model(&SettingDTO{}).
		Where("key = ?", key).
		Updates(map[string]any{"value": jsonNull, "updated_at": time.Now().UTC()}).Error
}

// Lock ensures key exists and holds its row lock for the rest of the transaction.
// Every round-robin pick locks its cursor key first, so concurrent picks serialize.
func (s *GormSettingsStore) Lock(ctx context.Context, key string) error {
	seed := SettingDTO{Key: key, Value: jsonNull, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&seed).Error
	if err != nil {
		return err
	}

	var locked SettingDTO
	return s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&locked, "key = ?", key).Error
}
