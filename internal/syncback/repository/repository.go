package repository

import (
	"localsync-backend/internal/syncback/domain"
)

// SyncbackRepository defines the interface for syncback request data
// access. Terminal transitions are guarded on the NEW status so a
// completed request can never be overwritten.
type SyncbackRepository interface {
	// Create persists a new request with status NEW
	Create(request *domain.SyncbackRequest) error

	// FindByID finds a request by id
	FindByID(id string) (*domain.SyncbackRequest, error)

	// FindNew returns all requests still in NEW, oldest first
	FindNew() ([]*domain.SyncbackRequest, error)

	// MarkSucceeded moves a NEW request to SUCCEEDED
	MarkSucceeded(id string) error

	// MarkFailed moves a NEW request to FAILED, recording the failure
	MarkFailed(id string, detail domain.JSONMap) error
}
