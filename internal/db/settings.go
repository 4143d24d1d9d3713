package db

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/daylist/daylist/internal/models"
)

// Settings is the key/value preferences table
type Settings struct {
	db *gorm.DB
}

// NewSettings wraps db
func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db}
}

// Get retrieves a setting value; a missing key yields ""
func (s *Settings) Get(key string) (string, error) {
	var setting models.Setting
	err := s.db.Where("key = ?", key).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return setting.Value, nil
}

// Set inserts or replaces a setting value
func (s *Settings) Set(key, value string) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&models.Setting{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// Bool reads a boolean setting; missing or unparsable values are false
func (s *Settings) Bool(key string) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return false, err
	}
	b, _ := strconv.ParseBool(v)
	return b, nil
}

// SetBool stores a boolean setting
func (s *Settings) SetBool(key string, value bool) error {
	return s.Set(key, strconv.FormatBool(value))
}
