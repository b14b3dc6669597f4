package usecase

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	maildomain "localsync-backend/internal/mail/domain"
	"localsync-backend/internal/mail/repository"
	txndomain "localsync-backend/internal/transaction/domain"
	txnusecase "localsync-backend/internal/transaction/usecase"

	"github.com/emersion/go-message/mail"
	"gorm.io/gorm"
)

var ErrThreadNotFound = errors.New("thread not found")

// MailUsecase defines the interface for message ingestion and thread access
type MailUsecase interface {
	// IngestMessage parses a raw RFC 822 message, assigns it to a
	// thread and records the resulting change-log entries, all in one
	// unit of work.
	IngestMessage(accountID string, raw io.Reader, folder string, folderImapUID uint32) (*maildomain.Message, error)

	// GetThread returns a thread with its messages
	GetThread(accountID, threadID string) (*maildomain.Thread, error)

	// CreateLabel creates a label and records its create transaction
	CreateLabel(accountID, name string) (*maildomain.Label, error)
}

type mailUsecase struct {
	matcher     *Matcher
	threadRepo  repository.ThreadRepository
	messageRepo repository.MessageRepository
	labelRepo   repository.LabelRepository
	recorder    *txnusecase.Recorder
}

func NewMailUsecase(matcher *Matcher, threadRepo repository.ThreadRepository, messageRepo repository.MessageRepository, labelRepo repository.LabelRepository, recorder *txnusecase.Recorder) MailUsecase {
	return &mailUsecase{
		matcher:     matcher,
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		labelRepo:   labelRepo,
		recorder:    recorder,
	}
}

func (u *mailUsecase) IngestMessage(accountID string, raw io.Reader, folder string, folderImapUID uint32) (*maildomain.Message, error) {
	message, err := parseMessage(raw)
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}
	message.AccountID = accountID
	message.Folder = folder
	message.FolderImapUID = folderImapUID

	// Matching, the message row, the thread bump and their change-log
	// entries commit together: the message never references a thread
	// that doesn't list it.
	_, err = u.recorder.Record(accountID, func(tx *gorm.DB) ([]txnusecase.Change, error) {
		thread, created, err := u.matcher.Match(tx, message)
		if err != nil {
			return nil, err
		}

		message.ThreadID = thread.ID
		if err := u.messageRepo.CreateTx(tx, message); err != nil {
			return nil, err
		}

		thread.MessageCount++
		if err := u.threadRepo.SaveTx(tx, thread); err != nil {
			return nil, err
		}

		threadEvent := txndomain.EventModify
		if created {
			threadEvent = txndomain.EventCreate
		}
		return []txnusecase.Change{
			{Object: txndomain.ObjectThread, ObjectID: thread.ID, Event: threadEvent},
			{Object: txndomain.ObjectMessage, ObjectID: message.ID, Event: txndomain.EventCreate},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (u *mailUsecase) GetThread(accountID, threadID string) (*maildomain.Thread, error) {
	thread, err := u.threadRepo.FindByID(accountID, threadID)
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, ErrThreadNotFound
	}
	return thread, nil
}

func (u *mailUsecase) CreateLabel(accountID, name string) (*maildomain.Label, error) {
	existing, err := u.labelRepo.FindByName(accountID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	label := &maildomain.Label{AccountID: accountID, Name: name}
	_, err = u.recorder.Record(accountID, func(tx *gorm.DB) ([]txnusecase.Change, error) {
		if err := u.labelRepo.CreateTx(tx, label); err != nil {
			return nil, err
		}
		return []txnusecase.Change{{
			Object:   txndomain.ObjectLabel,
			ObjectID: label.ID,
			Event:    txndomain.EventCreate,
		}}, nil
	})
	if err != nil {
		return nil, err
	}
	return label, nil
}

// parseMessage extracts the headers the sync core cares about from a
// raw RFC 822 message.
func parseMessage(raw io.Reader) (*maildomain.Message, error) {
	mr, err := mail.CreateReader(raw)
	if err != nil {
		return nil, err
	}
	header := mr.Header

	message := &maildomain.Message{}
	message.Subject, _ = header.Subject()
	message.MessageID, _ = header.MessageID()
	message.ProviderThreadID = header.Get("X-Gm-Thrid")

	// Stored bare and space separated, matching the bare Message-Id
	// values the repository indexes.
	if refs, err := header.MsgIDList("References"); err == nil {
		message.References = strings.Join(refs, " ")
	}

	message.From = addressList(header, "From")
	message.To = addressList(header, "To")
	message.Cc = addressList(header, "Cc")
	message.Bcc = addressList(header, "Bcc")

	if date, err := header.Date(); err == nil {
		message.Date = date
	} else {
		message.Date = time.Now()
	}
	return message, nil
}

func addressList(header mail.Header, key string) maildomain.ParticipantList {
	addrs, err := header.AddressList(key)
	if err != nil {
		return nil
	}
	list := make(maildomain.ParticipantList, 0, len(addrs))
	for _, addr := range addrs {
		list = append(list, maildomain.Participant{Name: addr.Name, Email: addr.Address})
	}
	return list
}
