package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	maildomain "localsync-backend/internal/mail/domain"
	"localsync-backend/internal/syncback/domain"
	txndomain "localsync-backend/internal/transaction/domain"
	txnusecase "localsync-backend/internal/transaction/usecase"
	"localsync-backend/pkg/config"
	"localsync-backend/pkg/mailstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSyncbackRepo struct {
	mu       sync.Mutex
	requests map[string]*domain.SyncbackRequest
	seq      int
}

func newFakeSyncbackRepo() *fakeSyncbackRepo {
	return &fakeSyncbackRepo{requests: map[string]*domain.SyncbackRequest{}}
}

func (r *fakeSyncbackRepo) Create(request *domain.SyncbackRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if request.ID == "" {
		request.ID = fmt.Sprintf("req-%d", r.seq)
	}
	if request.Status == "" {
		request.Status = domain.StatusNew
	}
	r.requests[request.ID] = request
	return nil
}

func (r *fakeSyncbackRepo) FindByID(id string) (*domain.SyncbackRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[id], nil
}

func (r *fakeSyncbackRepo) FindNew() ([]*domain.SyncbackRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []*domain.SyncbackRequest
	for _, request := range r.requests {
		if request.Status == domain.StatusNew {
			pending = append(pending, request)
		}
	}
	return pending, nil
}

func (r *fakeSyncbackRepo) MarkSucceeded(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request, ok := r.requests[id]; ok && request.Status == domain.StatusNew {
		request.Status = domain.StatusSucceeded
	}
	return nil
}

func (r *fakeSyncbackRepo) MarkFailed(id string, detail domain.JSONMap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if request, ok := r.requests[id]; ok && request.Status == domain.StatusNew {
		request.Status = domain.StatusFailed
		request.Error = detail
	}
	return nil
}

// fakeSession records operations and pops one scripted error per flag
// or move call. An exhausted script means success.
type fakeSession struct {
	mu       sync.Mutex
	selected []string
	removed  []uint32
	added    []uint32
	moved    []uint32
	errs     []error
}

func (s *fakeSession) nextErr() error {
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *fakeSession) SelectFolder(ctx context.Context, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = append(s.selected, folder)
	return nil
}

func (s *fakeSession) AddFlags(ctx context.Context, uid uint32, flags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.added = append(s.added, uid)
	return s.nextErr()
}

func (s *fakeSession) RemoveFlags(ctx context.Context, uid uint32, flags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, uid)
	return s.nextErr()
}

func (s *fakeSession) MoveMessage(ctx context.Context, uid uint32, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moved = append(s.moved, uid)
	return s.nextErr()
}

// fakeRecorder runs the mutation with a nil transaction and skips the
// change log.
type fakeRecorder struct {
	records int
}

func (r *fakeRecorder) Record(accountID string, fn func(tx *gorm.DB) ([]txnusecase.Change, error)) ([]*txndomain.Transaction, error) {
	r.records++
	if _, err := fn(nil); err != nil {
		return nil, err
	}
	return nil, nil
}

type fakeEnvThreadRepo struct {
	thread *maildomain.Thread
}

func (r *fakeEnvThreadRepo) CreateTx(tx *gorm.DB, thread *maildomain.Thread) error { return nil }
func (r *fakeEnvThreadRepo) SaveTx(tx *gorm.DB, thread *maildomain.Thread) error   { return nil }

func (r *fakeEnvThreadRepo) FindByID(accountID, id string) (*maildomain.Thread, error) {
	if r.thread != nil && r.thread.AccountID == accountID && r.thread.ID == id {
		return r.thread, nil
	}
	return nil, nil
}

func (r *fakeEnvThreadRepo) FindByIDTx(tx *gorm.DB, accountID, id string) (*maildomain.Thread, error) {
	return r.FindByID(accountID, id)
}

func (r *fakeEnvThreadRepo) FindByProviderThreadIDTx(tx *gorm.DB, accountID, providerThreadID string) (*maildomain.Thread, error) {
	return nil, nil
}

func (r *fakeEnvThreadRepo) FindByCleanedSubjectTx(tx *gorm.DB, accountID, cleanedSubject string) ([]*maildomain.Thread, error) {
	return nil, nil
}

func (r *fakeEnvThreadRepo) FindByIDs(accountID string, ids []string) ([]*maildomain.Thread, error) {
	return nil, nil
}

type fakeEnvMessageRepo struct {
	messages []*maildomain.Message
	saved    int
}

func (r *fakeEnvMessageRepo) CreateTx(tx *gorm.DB, message *maildomain.Message) error { return nil }

func (r *fakeEnvMessageRepo) SaveTx(tx *gorm.DB, message *maildomain.Message) error {
	r.saved++
	return nil
}

func (r *fakeEnvMessageRepo) FindByMessageIDTx(tx *gorm.DB, accountID, messageID string) (*maildomain.Message, error) {
	return nil, nil
}

func (r *fakeEnvMessageRepo) FindByThreadTx(tx *gorm.DB, accountID, threadID string) ([]*maildomain.Message, error) {
	var matches []*maildomain.Message
	for _, message := range r.messages {
		if message.AccountID == accountID && message.ThreadID == threadID {
			matches = append(matches, message)
		}
	}
	return matches, nil
}

func (r *fakeEnvMessageRepo) FindByIDs(accountID string, ids []string) ([]*maildomain.Message, error) {
	return nil, nil
}

func testThread() (*maildomain.Thread, []*maildomain.Message) {
	thread := &maildomain.Thread{ID: "t1", AccountID: "a1", CleanedSubject: "Hello"}
	var rows []*maildomain.Message
	for i := 1; i <= 3; i++ {
		message := maildomain.Message{
			ID:            fmt.Sprintf("m%d", i),
			AccountID:     "a1",
			ThreadID:      "t1",
			Folder:        "INBOX",
			FolderImapUID: uint32(i),
		}
		thread.Messages = append(thread.Messages, message)
		row := message
		rows = append(rows, &row)
	}
	thread.MessageCount = len(thread.Messages)
	return thread, rows
}

func newTestEngine(session *fakeSession) (*Engine, *fakeSyncbackRepo, *fakeEnvMessageRepo, *fakeRecorder) {
	thread, rows := testThread()
	messageRepo := &fakeEnvMessageRepo{messages: rows}
	recorder := &fakeRecorder{}
	env := &Env{
		Session:     session,
		Recorder:    recorder,
		ThreadRepo:  &fakeEnvThreadRepo{thread: thread},
		MessageRepo: messageRepo,
	}
	repo := newFakeSyncbackRepo()
	cfg := &config.Config{
		SyncbackWorkers:        1,
		SyncbackMaxAttempts:    3,
		SyncbackRetryBackoff:   time.Millisecond,
		SyncbackAttemptTimeout: time.Second,
	}
	return NewEngine(repo, NewRegistry(), env, cfg), repo, messageRepo, recorder
}

func transientErr() error {
	return &mailstore.Error{Kind: mailstore.KindTransient, Op: "store flags", Err: errors.New("connection reset")}
}

func permanentErr() error {
	return &mailstore.Error{Kind: mailstore.KindPermanent, Op: "store flags", Err: errors.New("no such message")}
}

func enqueue(t *testing.T, engine *Engine, taskType string, props domain.JSONMap) *domain.SyncbackRequest {
	t.Helper()
	request := &domain.SyncbackRequest{
		AccountID: "a1",
		Type:      taskType,
		Status:    domain.StatusNew,
		Props:     props,
	}
	require.NoError(t, engine.repo.Create(request))
	return request
}

func TestProcessMarkThreadAsUnreadSucceeds(t *testing.T) {
	session := &fakeSession{}
	engine, repo, messageRepo, recorder := newTestEngine(session)
	request := enqueue(t, engine, TypeMarkThreadAsUnread, domain.JSONMap{"threadId": "t1"})

	engine.process(request.ID)

	stored, _ := repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
	assert.Equal(t, []uint32{1, 2, 3}, session.removed)
	assert.Equal(t, 1, recorder.records)
	assert.Equal(t, 3, messageRepo.saved)
	for _, message := range messageRepo.messages {
		assert.True(t, message.Unread)
	}
}

func TestProcessRetriesTransientFailure(t *testing.T) {
	session := &fakeSession{errs: []error{nil, transientErr()}}
	engine, repo, _, recorder := newTestEngine(session)
	request := enqueue(t, engine, TypeMarkThreadAsRead, domain.JSONMap{"threadId": "t1"})

	engine.process(request.ID)

	stored, _ := repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
	// First attempt died on the second message, the second ran all three.
	assert.Equal(t, []uint32{1, 2, 1, 2, 3}, session.added)
	// The local mirror applies only once, after the remote side succeeds.
	assert.Equal(t, 1, recorder.records)
}

func TestProcessFailsAfterMaxAttempts(t *testing.T) {
	session := &fakeSession{errs: []error{transientErr(), transientErr(), transientErr()}}
	engine, repo, _, recorder := newTestEngine(session)
	request := enqueue(t, engine, TypeStarThread, domain.JSONMap{"threadId": "t1"})

	engine.process(request.ID)

	stored, _ := repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	require.NotNil(t, stored.Error)
	assert.Equal(t, true, stored.Error["retryable"])
	assert.Equal(t, 3, stored.Error["attempts"])
	assert.Equal(t, string(mailstore.KindTransient), stored.Error["kind"])
	assert.NotEmpty(t, stored.Error.String("message"))
	assert.Equal(t, 0, recorder.records)
}

func TestProcessPermanentFailureStopsImmediately(t *testing.T) {
	session := &fakeSession{errs: []error{permanentErr()}}
	engine, repo, _, _ := newTestEngine(session)
	request := enqueue(t, engine, TypeUnstarThread, domain.JSONMap{"threadId": "t1"})

	engine.process(request.ID)

	stored, _ := repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, false, stored.Error["retryable"])
	assert.Equal(t, 1, stored.Error["attempts"])
	// No retry: one flag call only.
	assert.Len(t, session.removed, 1)
}

func TestProcessMoveThreadToFolder(t *testing.T) {
	session := &fakeSession{}
	engine, repo, messageRepo, _ := newTestEngine(session)
	request := enqueue(t, engine, TypeMoveThreadToFolder, domain.JSONMap{
		"threadId":     "t1",
		"targetFolder": "Archive",
	})

	engine.process(request.ID)

	stored, _ := repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
	assert.Equal(t, []uint32{1, 2, 3}, session.moved)
	for _, message := range messageRepo.messages {
		assert.Equal(t, "Archive", message.Folder)
		assert.Zero(t, message.FolderImapUID)
	}
}

func TestProcessRedeliveryIsNoOp(t *testing.T) {
	session := &fakeSession{}
	engine, repo, _, _ := newTestEngine(session)
	request := enqueue(t, engine, TypeMarkThreadAsRead, domain.JSONMap{"threadId": "t1"})

	engine.process(request.ID)
	stored, _ := repo.FindByID(request.ID)
	require.Equal(t, domain.StatusSucceeded, stored.Status)
	firstCalls := len(session.added)

	// A second delivery of the same id finds a terminal status and
	// touches nothing.
	engine.process(request.ID)
	stored, _ = repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
	assert.Len(t, session.added, firstCalls)
}

func TestProcessMissingThreadFails(t *testing.T) {
	session := &fakeSession{}
	engine, repo, _, _ := newTestEngine(session)
	request := enqueue(t, engine, TypeMarkThreadAsRead, domain.JSONMap{"threadId": "nope"})

	engine.process(request.ID)

	stored, _ := repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusFailed, stored.Status)
	assert.Equal(t, false, stored.Error["retryable"])
	assert.Empty(t, session.selected)
}

func TestEnqueueRejectsUnknownType(t *testing.T) {
	engine, repo, _, _ := newTestEngine(&fakeSession{})

	_, err := engine.Enqueue("a1", "ExplodeThread", nil)
	require.ErrorIs(t, err, ErrUnknownTaskType)
	assert.Empty(t, repo.requests)
}

func TestEnqueueAndWorkersExecute(t *testing.T) {
	session := &fakeSession{}
	engine, repo, _, _ := newTestEngine(session)
	engine.Start()

	request, err := engine.Enqueue("a1", TypeMarkThreadAsUnread, domain.JSONMap{"threadId": "t1"})
	require.NoError(t, err)

	engine.Stop()

	stored, _ := repo.FindByID(request.ID)
	assert.Equal(t, domain.StatusSucceeded, stored.Status)
}
