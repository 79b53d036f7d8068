// File: /repositories/trail_repository.go
package repositories

import (
	"errors"
	"slices"
	"sync"
	"time"

	"gorm.io/gorm"

	"trailcraft-api/models"
)

var ErrTrailNotFound = errors.New("trail not found")

// TrailRepository stores trail records. Ids are assigned on Create, starting at 1.
type TrailRepository interface {
	List(offset, limit int) ([]models.Trail, int64, error)
	Get(id uint) (*models.Trail, error)
	Create(trail *models.Trail) error
	Update(trail *models.Trail) error
	Delete(id uint) error
}

// GormTrailRepository stores trails in MySQL through gorm.
type GormTrailRepository struct {
	db *gorm.DB
}

func NewGormTrailRepository(db *gorm.DB) *GormTrailRepository {
	return &GormTrailRepository{db: db}
}

// List returns one page of trails in id order and the total count.
func (r *GormTrailRepository) List(offset, limit int) ([]models.Trail, int64, error) {
	var total int64
	if err := r.db.Model(&models.Trail{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trails []models.Trail
	if err := r.db.Order("id ASC").Offset(offset).Limit(limit).Find(&trails).Error; err != nil {
		return nil, 0, err
	}
	return trails, total, nil
}

func (r *GormTrailRepository) Get(id uint) (*models.Trail, error) {
	var trail models.Trail
	if err := r.db.First(&trail, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTrailNotFound
		}
		return nil, err
	}
	return &trail, nil
}

// Create inserts trail and sets its id.
func (r *GormTrailRepository) Create(trail *models.Trail) error {
	trail.ID = 0
	return r.db.Create(trail).Error
}

// Update saves every field of an existing trail.
func (r *GormTrailRepository) Update(trail *models.Trail) error {
	if _, err := r.Get(trail.ID); err != nil {
		return err
	}
	return r.db.Save(trail).Error
}

// Delete removes a trail, returning ErrTrailNotFound when nothing matched.
func (r *GormTrailRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Trail{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTrailNotFound
	}
	return nil
}

// MemoryTrailRepository keeps trails in process memory. Records are copied in and out.
type MemoryTrailRepository struct {
	mu     sync.RWMutex
	trails map[uint]models.Trail
	nextID uint
}

func NewMemoryTrailRepository() *MemoryTrailRepository {
	return &MemoryTrailRepository{trails: make(map[uint]models.Trail), nextID: 1}
}

func (r *MemoryTrailRepository) List(offset, limit int) ([]models.Trail, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.trails))
	for id := range r.trails {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	total := int64(len(ids))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return []models.Trail{}, total, nil
	}
	end := len(ids)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]models.Trail, 0, end-offset)
	for _, id := range ids[offset:end] {
		out = append(out, copyTrail(r.trails[id]))
	}
	return out, total, nil
}

func (r *MemoryTrailRepository) Get(id uint) (*models.Trail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	trail, ok := r.trails[id]
	if !ok {
		return nil, ErrTrailNotFound
	}
	t := copyTrail(trail)
	return &t, nil
}

func (r *MemoryTrailRepository) Create(trail *models.Trail) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	trail.ID = r.nextID
	r.nextID++
	if trail.CreatedAt.IsZero() {
		trail.CreatedAt = time.Now()
	}
	r.trails[trail.ID] = copyTrail(*trail)
	return nil
}

// Update replaces a stored trail, keeping its CreatedAt.
func (r *MemoryTrailRepository) Update(trail *models.Trail) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.trails[trail.ID]
	if !ok {
		return ErrTrailNotFound
	}
	trail.CreatedAt = existing.CreatedAt
	r.trails[trail.ID] = copyTrail(*trail)
	return nil
}

func (r *MemoryTrailRepository) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.trails[id]; !ok {
		return ErrTrailNotFound
	}
	delete(r.trails, id)
	return nil
}

func copyTrail(t models.Trail) models.Trail {
	t.Points = t.Points.Clone()
	return t
}
