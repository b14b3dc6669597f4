package mailstore

import (
	"context"
	"crypto/tls"
	"sync"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// imapSession implements Session on top of a go-imap client connection.
// IMAP is stateful: a folder must be selected before UID commands, and
// only one command may be in flight per connection, so every operation
// holds the session mutex.
type imapSession struct {
	mu       sync.Mutex
	client   *client.Client
	selected string
}

// Dial connects and authenticates an IMAP session.
func Dial(addr, username, password string, tlsConfig *tls.Config) (Session, error) {
	c, err := client.DialTLS(addr, tlsConfig)
	if err != nil {
		return nil, classify("dial", err)
	}
	if err := c.Login(username, password); err != nil {
		c.Logout()
		return nil, classify("login", err)
	}
	return &imapSession{client: c}, nil
}

func (s *imapSession) SelectFolder(ctx context.Context, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(ctx, folder)
}

func (s *imapSession) selectLocked(ctx context.Context, folder string) error {
	if err := ctx.Err(); err != nil {
		return classify("select", err)
	}
	if s.selected == folder {
		return nil
	}
	if _, err := s.client.Select(folder, false); err != nil {
		return classify("select", err)
	}
	s.selected = folder
	return nil
}

func (s *imapSession) AddFlags(ctx context.Context, uid uint32, flags ...string) error {
	return s.storeFlags(ctx, "add-flags", imap.AddFlags, uid, flags)
}

func (s *imapSession) RemoveFlags(ctx context.Context, uid uint32, flags ...string) error {
	return s.storeFlags(ctx, "remove-flags", imap.RemoveFlags, uid, flags)
}

func (s *imapSession) storeFlags(ctx context.Context, op string, flagsOp imap.FlagsOp, uid uint32, flags []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return classify(op, err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(flagsOp, true)
	values := make([]interface{}, len(flags))
	for i, flag := range flags {
		values[i] = flag
	}

	if err := s.client.UidStore(seqSet, item, values, nil); err != nil {
		return classify(op, err)
	}
	return nil
}

func (s *imapSession) MoveMessage(ctx context.Context, uid uint32, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return classify("move", err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	if err := s.client.UidMove(seqSet, folder); err != nil {
		return classify("move", err)
	}
	return nil
}
