package usecase

import (
	"context"

	maildomain "localsync-backend/internal/mail/domain"
	"localsync-backend/internal/syncback/domain"
	"localsync-backend/pkg/mailstore"
)

// starThread sets the \Flagged flag on every message of a thread.
type starThread struct{}

func (t *starThread) Description() string {
	return "StarThread"
}

func (t *starThread) AffectsMessageUIDs() bool {
	return false
}

func (t *starThread) Run(ctx context.Context, env *Env, request *domain.SyncbackRequest) error {
	thread, err := threadFromProps(env, request)
	if err != nil {
		return err
	}

	err = forEachMessageInThread(ctx, env, thread, func(ctx context.Context, message *maildomain.Message) error {
		return env.Session.AddFlags(ctx, message.FolderImapUID, mailstore.FlagFlagged)
	})
	if err != nil {
		return err
	}

	return applyThreadFlagLocally(env, request.AccountID, thread.ID, func(message *maildomain.Message) {
		message.Starred = true
	})
}

// unstarThread clears the \Flagged flag on every message of a thread.
type unstarThread struct{}

func (t *unstarThread) Description() string {
	return "UnstarThread"
}

func (t *unstarThread) AffectsMessageUIDs() bool {
	return false
}

func (t *unstarThread) Run(ctx context.Context, env *Env, request *domain.SyncbackRequest) error {
	thread, err := threadFromProps(env, request)
	if err != nil {
		return err
	}

	err = forEachMessageInThread(ctx, env, thread, func(ctx context.Context, message *maildomain.Message) error {
		return env.Session.RemoveFlags(ctx, message.FolderImapUID, mailstore.FlagFlagged)
	})
	if err != nil {
		return err
	}

	return applyThreadFlagLocally(env, request.AccountID, thread.ID, func(message *maildomain.Message) {
		message.Starred = false
	})
}
