package usecase

import (
	"context"

	maildomain "localsync-backend/internal/mail/domain"
	"localsync-backend/internal/syncback/domain"
	"localsync-backend/pkg/mailstore"
)

// markThreadAsUnread clears the \Seen flag on every message of a
// thread and marks the local copies unread.
type markThreadAsUnread struct{}

func (t *markThreadAsUnread) Description() string {
	return "MarkThreadAsUnread"
}

func (t *markThreadAsUnread) AffectsMessageUIDs() bool {
	return false
}

func (t *markThreadAsUnread) Run(ctx context.Context, env *Env, request *domain.SyncbackRequest) error {
	thread, err := threadFromProps(env, request)
	if err != nil {
		return err
	}

	err = forEachMessageInThread(ctx, env, thread, func(ctx context.Context, message *maildomain.Message) error {
		return env.Session.RemoveFlags(ctx, message.FolderImapUID, mailstore.FlagSeen)
	})
	if err != nil {
		return err
	}

	return applyThreadFlagLocally(env, request.AccountID, thread.ID, func(message *maildomain.Message) {
		message.Unread = true
	})
}
