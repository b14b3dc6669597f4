package usecase

import (
	"context"
	"errors"

	maildomain "localsync-backend/internal/mail/domain"
	"localsync-backend/internal/syncback/domain"
)

// moveThreadToFolder moves every message of a thread into the folder
// named by the targetFolder prop. Moving reassigns UIDs on the remote
// store, so downstream sync re-fetches the affected folders.
type moveThreadToFolder struct{}

func (t *moveThreadToFolder) Description() string {
	return "MoveThreadToFolder"
}

func (t *moveThreadToFolder) AffectsMessageUIDs() bool {
	return true
}

func (t *moveThreadToFolder) Run(ctx context.Context, env *Env, request *domain.SyncbackRequest) error {
	targetFolder := request.Props.String("targetFolder")
	if targetFolder == "" {
		return errors.New("missing targetFolder prop")
	}

	thread, err := threadFromProps(env, request)
	if err != nil {
		return err
	}

	err = forEachMessageInThread(ctx, env, thread, func(ctx context.Context, message *maildomain.Message) error {
		return env.Session.MoveMessage(ctx, message.FolderImapUID, targetFolder)
	})
	if err != nil {
		return err
	}

	// The new UIDs are only known once the folder re-syncs; locally the
	// messages just change folder and drop their stale UID.
	return applyThreadFlagLocally(env, request.AccountID, thread.ID, func(message *maildomain.Message) {
		message.Folder = targetFolder
		message.FolderImapUID = 0
	})
}
