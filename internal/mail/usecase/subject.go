package usecase

import "regexp"

// subjectPrefixes matches one or more leading reply/forward/bounce
// markers, case-insensitively, so "Re: RE: Fwd: Hello" cleans to
// "Hello" in a single pass.
var subjectPrefixes = regexp.MustCompile(`(?i)^((re|fw|fwd|aw|wg|undeliverable|undelivered):\s*)+`)

// CleanSubject strips reply/forward prefixes from a subject. Cleaning
// is idempotent: an already-clean subject comes back unchanged.
func CleanSubject(subject string) string {
	return subjectPrefixes.ReplaceAllString(subject, "")
}
