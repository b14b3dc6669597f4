package usecase

import (
	"context"
	"errors"
	"fmt"

	maildomain "localsync-backend/internal/mail/domain"
	"localsync-backend/internal/syncback/domain"
	txndomain "localsync-backend/internal/transaction/domain"
	txnusecase "localsync-backend/internal/transaction/usecase"

	"gorm.io/gorm"
)

var errThreadNotFound = errors.New("thread not found")

// threadFromProps resolves the thread named by the request's threadId
// prop, messages included.
func threadFromProps(env *Env, request *domain.SyncbackRequest) (*maildomain.Thread, error) {
	threadID := request.Props.String("threadId")
	if threadID == "" {
		return nil, errors.New("missing threadId prop")
	}
	thread, err := env.ThreadRepo.FindByID(request.AccountID, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, errThreadNotFound
	}
	return thread, nil
}

// forEachMessageInThread runs fn against the remote session for every
// message in the thread, selecting each message's folder first.
func forEachMessageInThread(ctx context.Context, env *Env, thread *maildomain.Thread, fn func(ctx context.Context, message *maildomain.Message) error) error {
	for i := range thread.Messages {
		message := &thread.Messages[i]
		if err := env.Session.SelectFolder(ctx, message.Folder); err != nil {
			return err
		}
		if err := fn(ctx, message); err != nil {
			return err
		}
	}
	return nil
}

// applyThreadFlagLocally mirrors a remote flag mutation onto the local
// message rows, one change-log entry per message, in a single unit.
func applyThreadFlagLocally(env *Env, accountID, threadID string, apply func(message *maildomain.Message)) error {
	_, err := env.Recorder.Record(accountID, func(tx *gorm.DB) ([]txnusecase.Change, error) {
		messages, err := env.MessageRepo.FindByThreadTx(tx, accountID, threadID)
		if err != nil {
			return nil, err
		}
		changes := make([]txnusecase.Change, 0, len(messages))
		for _, message := range messages {
			apply(message)
			if err := env.MessageRepo.SaveTx(tx, message); err != nil {
				return nil, err
			}
			changes = append(changes, txnusecase.Change{
				Object:   txndomain.ObjectMessage,
				ObjectID: message.ID,
				Event:    txndomain.EventModify,
			})
		}
		return changes, nil
	})
	if err != nil {
		return fmt.Errorf("apply local thread mutation: %w", err)
	}
	return nil
}
