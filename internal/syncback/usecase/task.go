package usecase

import (
	"context"

	mailrepo "localsync-backend/internal/mail/repository"
	"localsync-backend/internal/syncback/domain"
	txndomain "localsync-backend/internal/transaction/domain"
	txnusecase "localsync-backend/internal/transaction/usecase"
	"localsync-backend/pkg/mailstore"

	"gorm.io/gorm"
)

// ChangeRecorder runs a mutation and its change-log appends as one
// unit. Satisfied by the transaction recorder.
type ChangeRecorder interface {
	Record(accountID string, fn func(tx *gorm.DB) ([]txnusecase.Change, error)) ([]*txndomain.Transaction, error)
}

// Task type names accepted by the engine.
const (
	TypeMarkThreadAsRead   = "MarkThreadAsRead"
	TypeMarkThreadAsUnread = "MarkThreadAsUnread"
	TypeStarThread         = "StarThread"
	TypeUnstarThread       = "UnstarThread"
	TypeMoveThreadToFolder = "MoveThreadToFolder"
)

// Env bundles the collaborators a task may use: the remote session,
// the entity repositories and the recorder for the local side of the
// mutation.
type Env struct {
	Session     mailstore.Session
	Recorder    ChangeRecorder
	ThreadRepo  mailrepo.ThreadRepository
	MessageRepo mailrepo.MessageRepository
}

// Task is one syncback kind: a mutation executed against the remote
// mail store and mirrored locally on success.
type Task interface {
	// Description is a human-readable name for logs and errors.
	Description() string

	// AffectsMessageUIDs reports whether a successful run may change
	// remote message identifiers, which forces a re-sync of the
	// affected folder downstream.
	AffectsMessageUIDs() bool

	// Run executes the request. Returning nil means the whole mutation
	// (remote and local) completed. Transient failures are reported as
	// mailstore errors so the engine can retry.
	Run(ctx context.Context, env *Env, request *domain.SyncbackRequest) error
}

// Registry maps a request type to its task implementation. The set of
// kinds is closed and built once at startup; tasks are stateless.
type Registry map[string]Task

// NewRegistry builds the standard task set.
func NewRegistry() Registry {
	return Registry{
		TypeMarkThreadAsRead:   &markThreadAsRead{},
		TypeMarkThreadAsUnread: &markThreadAsUnread{},
		TypeStarThread:         &starThread{},
		TypeUnstarThread:       &unstarThread{},
		TypeMoveThreadToFolder: &moveThreadToFolder{},
	}
}
