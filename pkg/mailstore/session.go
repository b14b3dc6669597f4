package mailstore

import "context"

// System flags understood by every IMAP server.
const (
	FlagSeen    = "\\Seen"
	FlagFlagged = "\\Flagged"
	FlagDeleted = "\\Deleted"
)

// Session is a connected protocol session to the remote mail store.
// The sync core only mutates remote state through this interface; the
// connection lifecycle (dial, login, reconnect) is owned by the caller.
//
// All operations address messages by their folder-scoped IMAP UID and
// return a typed *Error on failure.
type Session interface {
	// SelectFolder makes folder the target of subsequent UID operations.
	SelectFolder(ctx context.Context, folder string) error

	// AddFlags sets the given flags on the message with the given UID.
	AddFlags(ctx context.Context, uid uint32, flags ...string) error

	// RemoveFlags clears the given flags from the message with the given UID.
	RemoveFlags(ctx context.Context, uid uint32, flags ...string) error

	// MoveMessage moves the message with the given UID into the given
	// folder. The message is assigned a new UID by the server.
	MoveMessage(ctx context.Context, uid uint32, folder string) error
}
