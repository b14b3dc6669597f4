package mailstore

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies adapter failures so the task engine can decide
// between retrying and recording a permanent failure.
type ErrorKind string

const (
	// KindTransient covers network-level failures (timeouts, resets)
	// that are worth retrying.
	KindTransient ErrorKind = "transient"
	// KindPermanent covers operations the server rejected outright.
	KindPermanent ErrorKind = "permanent"
	// KindCertificate covers TLS trust failures. These are surfaced
	// separately so callers can prompt the user instead of retrying.
	KindCertificate ErrorKind = "certificate"
)

// Error is the typed failure returned by every Session operation.
type Error struct {
	Kind ErrorKind `json:"kind"`
	Op   string    `json:"op"`
	Err  error     `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("mailstore: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify wraps err with the kind inferred from its cause.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var certErr x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) {
		return &Error{Kind: KindCertificate, Op: op, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &Error{Kind: KindTransient, Op: op, Err: err}
	}

	return &Error{Kind: KindPermanent, Op: op, Err: err}
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindTransient
}

// IsCertificate reports whether err is a TLS trust failure.
func IsCertificate(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindCertificate
}
