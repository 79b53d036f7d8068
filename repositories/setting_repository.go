// File: /repositories/setting_repository.go
package repositories

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"trailcraft-api/models"
)

// SettingRepository is a small key-value store for client settings such as the saved token.
type SettingRepository interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// GormSettingRepository stores settings in the client_settings table.
type GormSettingRepository struct {
	db *gorm.DB
}

func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// Get returns the value for key and whether it exists.
func (r *GormSettingRepository) Get(key string) (string, bool, error) {
	var setting models.Setting
	if err := r.db.Where("`key` = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return setting.Value, true, nil
}

// Set updates or creates the setting.
func (r *GormSettingRepository) Set(key, value string) error {
	var existing models.Setting
	err := r.db.Where("`key` = ?", key).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(&models.Setting{Key: key, Value: value}).Error
		}
		return err
	}

	return r.db.Model(&existing).Updates(map[string]interface{}{
		"value":      value,
		"updated_at": time.Now(),
	}).Error
}

func (r *GormSettingRepository) Delete(key string) error {
	return r.db.Where("`key` = ?", key).Delete(&models.Setting{}).Error
}

// MemorySettingRepository keeps settings in process memory.
type MemorySettingRepository struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemorySettingRepository() *MemorySettingRepository {
	return &MemorySettingRepository{values: make(map[string]string)}
}

func (r *MemorySettingRepository) Get(key string) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	return v, ok, nil
}

func (r *MemorySettingRepository) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = value
	return nil
}

func (r *MemorySettingRepository) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.values, key)
	return nil
}
