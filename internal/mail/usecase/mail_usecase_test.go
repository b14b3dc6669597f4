package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawReply = "Message-Id: <reply-1@example.com>\r\n" +
	"In-Reply-To: <root@example.com>\r\n" +
	"References: <root@example.com> <mid@example.com>\r\n" +
	"X-Gm-Thrid: 1778412345\r\n" +
	"From: Alice <alice@example.com>\r\n" +
	"To: Bob <bob@example.com>, carol@example.com\r\n" +
	"Cc: dave@example.com\r\n" +
	"Bcc: secret@example.com\r\n" +
	"Date: Mon, 02 Jan 2006 15:04:05 -0700\r\n" +
	"Subject: Re: Quarterly report\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Looks good to me.\r\n"

func TestParseMessageHeaders(t *testing.T) {
	message, err := parseMessage(strings.NewReader(rawReply))
	require.NoError(t, err)

	assert.Equal(t, "Re: Quarterly report", message.Subject)
	assert.Equal(t, "reply-1@example.com", message.MessageID)
	assert.Equal(t, "1778412345", message.ProviderThreadID)
	assert.Equal(t, "root@example.com mid@example.com", message.References)

	require.Len(t, message.From, 1)
	assert.Equal(t, "Alice", message.From[0].Name)
	assert.Equal(t, "alice@example.com", message.From[0].Email)

	require.Len(t, message.To, 2)
	assert.Equal(t, "bob@example.com", message.To[0].Email)
	assert.Equal(t, "carol@example.com", message.To[1].Email)

	require.Len(t, message.Cc, 1)
	require.Len(t, message.Bcc, 1)
	assert.Equal(t, "secret@example.com", message.Bcc[0].Email)

	want := time.Date(2006, time.January, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))
	assert.True(t, message.Date.Equal(want))
}

func TestParseMessageMinimalHeaders(t *testing.T) {
	raw := "From: alice@example.com\r\n" +
		"Subject: Hello\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"hi\r\n"

	message, err := parseMessage(strings.NewReader(raw))
	require.NoError(t, err)

	assert.Equal(t, "Hello", message.Subject)
	assert.Empty(t, message.References)
	assert.Empty(t, message.ProviderThreadID)
	assert.Empty(t, message.To)
	// No Date header: ingestion time stands in.
	assert.WithinDuration(t, time.Now(), message.Date, time.Minute)
}
