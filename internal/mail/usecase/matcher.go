package usecase

import (
	"strings"

	maildomain "localsync-backend/internal/mail/domain"
	"localsync-backend/internal/mail/repository"

	"gorm.io/gorm"
)

// Matcher assigns an incoming message to the conversation it belongs
// to, creating a new thread when nothing matches. All lookups run in
// the caller's transaction, which the recorder serializes per account,
// so concurrent ingestion cannot double-create threads.
type Matcher struct {
	threadRepo      repository.ThreadRepository
	messageRepo     repository.MessageRepository
	maxThreadLength int
}

func NewMatcher(threadRepo repository.ThreadRepository, messageRepo repository.MessageRepository, maxThreadLength int) *Matcher {
	return &Matcher{
		threadRepo:      threadRepo,
		messageRepo:     messageRepo,
		maxThreadLength: maxThreadLength,
	}
}

// Match returns the thread the message belongs to and whether it was
// newly created. The returned thread row is already persisted (when
// created) but the message is not yet attached; the caller appends the
// message and bumps MessageCount in the same transaction.
func (m *Matcher) Match(tx *gorm.DB, message *maildomain.Message) (*maildomain.Thread, bool, error) {
	// Provider-native thread ids beat every heuristic.
	if message.ProviderThreadID != "" {
		thread, err := m.threadRepo.FindByProviderThreadIDTx(tx, message.AccountID, message.ProviderThreadID)
		if err != nil {
			return nil, false, err
		}
		if thread != nil {
			return thread, false, nil
		}
		return m.createThread(tx, message)
	}

	if message.References != "" {
		thread, err := m.threadFromReferences(tx, message)
		if err != nil {
			return nil, false, err
		}
		if thread != nil {
			return thread, false, nil
		}
	}

	thread, err := m.matchBySubject(tx, message)
	if err != nil {
		return nil, false, err
	}
	if thread != nil {
		return thread, false, nil
	}
	return m.createThread(tx, message)
}

func (m *Matcher) createThread(tx *gorm.DB, message *maildomain.Message) (*maildomain.Thread, bool, error) {
	thread := &maildomain.Thread{
		AccountID:        message.AccountID,
		CleanedSubject:   CleanSubject(message.Subject),
		ProviderThreadID: message.ProviderThreadID,
	}
	if err := m.threadRepo.CreateTx(tx, thread); err != nil {
		return nil, false, err
	}
	return thread, true, nil
}

// threadFromReferences resolves the reply chain: the last id in the
// References header names the message being answered.
func (m *Matcher) threadFromReferences(tx *gorm.DB, message *maildomain.Message) (*maildomain.Thread, error) {
	refs := strings.Fields(message.References)
	if len(refs) == 0 {
		return nil, nil
	}
	parent, err := m.messageRepo.FindByMessageIDTx(tx, message.AccountID, refs[len(refs)-1])
	if err != nil {
		return nil, err
	}
	if parent == nil || parent.ThreadID == "" {
		return nil, nil
	}
	return m.threadRepo.FindByIDTx(tx, message.AccountID, parent.ThreadID)
}

// matchBySubject walks candidate threads with the same cleaned subject,
// most recent first, and accepts the first one that shares enough
// participants with the incoming message. Threads at the length cap are
// skipped so runaway conversations roll over into a new thread.
func (m *Matcher) matchBySubject(tx *gorm.DB, message *maildomain.Message) (*maildomain.Thread, error) {
	candidates, err := m.threadRepo.FindByCleanedSubjectTx(tx, message.AccountID, CleanSubject(message.Subject))
	if err != nil {
		return nil, err
	}

	messageEmails := participantEmails(message)
	for _, thread := range candidates {
		for i := range thread.Messages {
			match := &thread.Messages[i]
			if !m.isRelated(message, match, messageEmails) {
				continue
			}
			if len(thread.Messages) >= m.maxThreadLength {
				// Related but full: skip the candidate entirely.
				break
			}
			return thread, nil
		}
	}
	return nil, nil
}

func (m *Matcher) isRelated(message, match *maildomain.Message, messageEmails map[string]struct{}) bool {
	if countIntersecting(messageEmails, participantEmails(match)) >= 2 {
		return true
	}
	return isSentToSelf(message, match)
}

// participantEmails collects the message's participants excluding BCC
// recipients on both sides, so private recipients never influence (or
// leak through) matching.
func participantEmails(message *maildomain.Message) map[string]struct{} {
	bcc := make(map[string]struct{}, len(message.Bcc))
	for _, p := range message.Bcc {
		bcc[strings.ToLower(p.Email)] = struct{}{}
	}

	emails := make(map[string]struct{})
	for _, list := range []maildomain.ParticipantList{message.From, message.To, message.Cc} {
		for _, p := range list {
			email := strings.ToLower(p.Email)
			if _, hidden := bcc[email]; hidden {
				continue
			}
			emails[email] = struct{}{}
		}
	}
	return emails
}

func countIntersecting(a, b map[string]struct{}) int {
	n := 0
	for email := range a {
		if _, ok := b[email]; ok {
			n++
		}
	}
	return n
}

// isSentToSelf recognizes notes-to-self: a single recipient identical
// to the sender, matching the candidate's sender/recipient pair.
func isSentToSelf(message, match *maildomain.Message) bool {
	if len(message.From) == 0 || len(message.To) == 0 || len(match.From) == 0 || len(match.To) == 0 {
		return false
	}
	return len(message.To) == 1 &&
		sameEmails(message.From, message.To) &&
		sameEmails(match.From, match.To) &&
		sameEmails(message.To, match.From)
}

func sameEmails(a, b maildomain.ParticipantList) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i].Email, b[i].Email) {
			return false
		}
	}
	return true
}
