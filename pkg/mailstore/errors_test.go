package mailstore

import (
	"crypto/x509"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNetError struct{}

func (fakeNetError) Error() string   { return "read tcp: i/o timeout" }
func (fakeNetError) Timeout() bool   { return true }
func (fakeNetError) Temporary() bool { return true }

func TestClassifyNetworkErrorIsTransient(t *testing.T) {
	err := classify("store flags", fakeNetError{})

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, KindTransient, storeErr.Kind)
	assert.Equal(t, "store flags", storeErr.Op)
	assert.True(t, IsTransient(err))
	assert.False(t, IsCertificate(err))
}

func TestClassifyCertificateError(t *testing.T) {
	err := classify("dial", x509.UnknownAuthorityError{})

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, KindCertificate, storeErr.Kind)
	assert.True(t, IsCertificate(err))
	assert.False(t, IsTransient(err))
}

func TestClassifyGenericErrorIsPermanent(t *testing.T) {
	err := classify("select folder", errors.New("NO mailbox does not exist"))

	var storeErr *Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, KindPermanent, storeErr.Kind)
	assert.False(t, IsTransient(err))
}

func TestClassifyNil(t *testing.T) {
	assert.NoError(t, classify("noop", nil))
}

func TestClassifyUnwrapsWrappedCauses(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", fakeNetError{})
	err := classify("dial", wrapped)
	assert.True(t, IsTransient(err))

	var netErr fakeNetError
	assert.ErrorAs(t, err, &netErr)
}

func TestIsTransientOnForeignError(t *testing.T) {
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsCertificate(nil))
}
