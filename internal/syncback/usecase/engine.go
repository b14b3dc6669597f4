package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"localsync-backend/internal/syncback/domain"
	"localsync-backend/internal/syncback/repository"
	"localsync-backend/pkg/config"
	"localsync-backend/pkg/mailstore"
)

var ErrUnknownTaskType = errors.New("unknown task type")

// SyncbackUsecase defines the interface for queueing and querying
// syncback requests.
type SyncbackUsecase interface {
	// Enqueue persists a request with status NEW and hands it to the
	// execution loop.
	Enqueue(accountID, taskType string, props domain.JSONMap) (*domain.SyncbackRequest, error)

	// GetRequest returns a request by id, scoped to the account.
	GetRequest(accountID, id string) (*domain.SyncbackRequest, error)
}

// Engine executes syncback requests against the mail store with a
// bounded worker pool. At most one worker holds a given request at a
// time; terminal statuses are written exactly once.
type Engine struct {
	repo     repository.SyncbackRepository
	registry Registry
	env      *Env

	maxAttempts    int
	retryBackoff   time.Duration
	attemptTimeout time.Duration
	workerCount    int

	jobs     chan string
	workerWg sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]struct{}
	started  bool
}

func NewEngine(repo repository.SyncbackRepository, registry Registry, env *Env, cfg *config.Config) *Engine {
	workers := cfg.SyncbackWorkers
	if workers <= 0 {
		workers = 3
	}
	return &Engine{
		repo:           repo,
		registry:       registry,
		env:            env,
		maxAttempts:    cfg.SyncbackMaxAttempts,
		retryBackoff:   cfg.SyncbackRetryBackoff,
		attemptTimeout: cfg.SyncbackAttemptTimeout,
		workerCount:    workers,
		jobs:           make(chan string, 500),
		inflight:       make(map[string]struct{}),
	}
}

// Start launches the worker pool and requeues requests that were still
// NEW when the process last stopped.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	e.mu.Unlock()

	for i := 0; i < e.workerCount; i++ {
		e.workerWg.Add(1)
		go e.worker()
	}
	log.Printf("[Syncback] Started %d workers", e.workerCount)

	pending, err := e.repo.FindNew()
	if err != nil {
		log.Printf("[Syncback] Error loading pending requests: %v", err)
		return
	}
	for _, request := range pending {
		e.dispatch(request.ID)
	}
	if len(pending) > 0 {
		log.Printf("[Syncback] Requeued %d pending requests", len(pending))
	}
}

// Stop drains the queue and waits for in-flight work to finish.
func (e *Engine) Stop() {
	close(e.jobs)
	e.workerWg.Wait()
	log.Println("[Syncback] All workers stopped")
}

func (e *Engine) Enqueue(accountID, taskType string, props domain.JSONMap) (*domain.SyncbackRequest, error) {
	if _, ok := e.registry[taskType]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}

	request := &domain.SyncbackRequest{
		AccountID: accountID,
		Type:      taskType,
		Status:    domain.StatusNew,
		Props:     props,
	}
	if err := e.repo.Create(request); err != nil {
		return nil, err
	}

	e.dispatch(request.ID)
	return request, nil
}

func (e *Engine) GetRequest(accountID, id string) (*domain.SyncbackRequest, error) {
	request, err := e.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if request == nil || request.AccountID != accountID {
		return nil, nil
	}
	return request, nil
}

// dispatch hands a request id to the pool without blocking the caller.
// A full queue is harmless: the request stays NEW and is picked up on
// the next restart scan.
func (e *Engine) dispatch(id string) {
	select {
	case e.jobs <- id:
	default:
		log.Printf("[Syncback] Queue full, leaving request %s for requeue", id)
	}
}

func (e *Engine) worker() {
	defer e.workerWg.Done()
	for id := range e.jobs {
		e.process(id)
	}
}

// process runs one request to completion. The inflight set guarantees
// a single concurrent execution per id even if the same id was
// dispatched twice; the status re-check makes redelivery a no-op.
func (e *Engine) process(id string) {
	e.mu.Lock()
	if _, running := e.inflight[id]; running {
		e.mu.Unlock()
		return
	}
	e.inflight[id] = struct{}{}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		delete(e.inflight, id)
		e.mu.Unlock()
	}()

	request, err := e.repo.FindByID(id)
	if err != nil {
		log.Printf("[Syncback] Error loading request %s: %v", id, err)
		return
	}
	if request == nil || request.Status != domain.StatusNew {
		return
	}

	task, ok := e.registry[request.Type]
	if !ok {
		e.fail(request, fmt.Errorf("%w: %s", ErrUnknownTaskType, request.Type), 0)
		return
	}

	var lastErr error
	attempts := 0
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		attempts = attempt
		lastErr = e.runAttempt(task, request)
		if lastErr == nil {
			if err := e.repo.MarkSucceeded(request.ID); err != nil {
				log.Printf("[Syncback] Error marking request %s succeeded: %v", request.ID, err)
			}
			log.Printf("[Syncback] %s (%s) succeeded after %d attempt(s)", task.Description(), request.ID, attempt)
			return
		}
		if !retryable(lastErr) || attempt == e.maxAttempts {
			break
		}
		log.Printf("[Syncback] %s (%s) attempt %d failed, retrying: %v", task.Description(), request.ID, attempt, lastErr)
		time.Sleep(time.Duration(attempt) * e.retryBackoff)
	}

	e.fail(request, lastErr, attempts)
}

// runAttempt executes one bounded attempt. A timeout counts as a
// transient failure, not a hang.
func (e *Engine) runAttempt(task Task, request *domain.SyncbackRequest) error {
	ctx, cancel := context.WithTimeout(context.Background(), e.attemptTimeout)
	defer cancel()
	return task.Run(ctx, e.env, request)
}

func (e *Engine) fail(request *domain.SyncbackRequest, cause error, attempts int) {
	detail := domain.JSONMap{
		"message":   cause.Error(),
		"retryable": retryable(cause),
	}
	if attempts > 0 {
		detail["attempts"] = attempts
	}
	var storeErr *mailstore.Error
	if errors.As(cause, &storeErr) {
		detail["kind"] = string(storeErr.Kind)
		detail["op"] = storeErr.Op
	}

	if err := e.repo.MarkFailed(request.ID, detail); err != nil {
		log.Printf("[Syncback] Error marking request %s failed: %v", request.ID, err)
	}
	log.Printf("[Syncback] Request %s (%s) failed: %v", request.ID, request.Type, cause)
}

// retryable reports whether a failure is transient: a network-level
// mail store error or an attempt that hit its deadline.
func retryable(err error) bool {
	return mailstore.IsTransient(err) || errors.Is(err, context.DeadlineExceeded)
}
