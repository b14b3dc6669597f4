package repository

import (
	"time"

	"localsync-backend/internal/syncback/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// gormSyncbackRepository implements SyncbackRepository using GORM
type gormSyncbackRepository struct {
	db *gorm.DB
}

// NewSyncbackRepository creates a new GORM-based SyncbackRepository
func NewSyncbackRepository(db *gorm.DB) SyncbackRepository {
	return &gormSyncbackRepository{db: db}
}

func (r *gormSyncbackRepository) Create(request *domain.SyncbackRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	if request.Status == "" {
		request.Status = domain.StatusNew
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = time.Now()
	return r.db.Create(request).Error
}

func (r *gormSyncbackRepository) FindByID(id string) (*domain.SyncbackRequest, error) {
	var request domain.SyncbackRequest
	err := r.db.Where("id = ?", id).First(&request).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &request, nil
}

func (r *gormSyncbackRepository) FindNew() ([]*domain.SyncbackRequest, error) {
	var requests []*domain.SyncbackRequest
	err := r.db.Where("status = ?", domain.StatusNew).
		Order("created_at ASC").Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *gormSyncbackRepository) MarkSucceeded(id string) error {
	// Guarded on NEW so terminal states are never re-entered.
	return r.db.Model(&domain.SyncbackRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusNew).
		Updates(map[string]interface{}{
			"status":     domain.StatusSucceeded,
			"updated_at": time.Now(),
		}).Error
}

func (r *gormSyncbackRepository) MarkFailed(id string, detail domain.JSONMap) error {
	return r.db.Model(&domain.SyncbackRequest{}).
		Where("id = ? AND status = ?", id, domain.StatusNew).
		Updates(map[string]interface{}{
			"status":     domain.StatusFailed,
			"error":      detail,
			"updated_at": time.Now(),
		}).Error
}
