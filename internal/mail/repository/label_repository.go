package repository

import (
	"time"

	maildomain "localsync-backend/internal/mail/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LabelRepository defines the interface for label data access
type LabelRepository interface {
	// CreateTx creates a new label
	CreateTx(tx *gorm.DB, label *maildomain.Label) error

	// FindByName finds a label by name
	FindByName(accountID, name string) (*maildomain.Label, error)

	// FindByIDs returns the labels with the given ids (for inflation)
	FindByIDs(accountID string, ids []string) ([]*maildomain.Label, error)
}

// gormLabelRepository implements LabelRepository using GORM
type gormLabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository creates a new GORM-based LabelRepository
func NewLabelRepository(db *gorm.DB) LabelRepository {
	return &gormLabelRepository{db: db}
}

func (r *gormLabelRepository) CreateTx(tx *gorm.DB, label *maildomain.Label) error {
	if label.ID == "" {
		label.ID = uuid.New().String()
	}
	label.CreatedAt = time.Now()
	label.UpdatedAt = time.Now()
	return tx.Create(label).Error
}

func (r *gormLabelRepository) FindByName(accountID, name string) (*maildomain.Label, error) {
	var label maildomain.Label
	err := r.db.Where("account_id = ? AND name = ?", accountID, name).First(&label).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &label, nil
}

func (r *gormLabelRepository) FindByIDs(accountID string, ids []string) ([]*maildomain.Label, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var labels []*maildomain.Label
	err := r.db.Where("account_id = ? AND id IN ?", accountID, ids).Find(&labels).Error
	if err != nil {
		return nil, err
	}
	return labels, nil
}
