// Package screen applies the message safety rules for envelope messages: a
// length bound and a denylist of clearly threatening or abusive phrases.
// The denylist is a heuristic, not a guarantee; flagged accounts are handled
// outside this engine.
package screen

import (
	"regexp"
	"strings"

	"github.com/sealabid/sealabid/internal/errs"
)

// MaxMessageLength bounds the optional message to the seller.
const MaxMessageLength = 800

var blockedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)kill`),
	regexp.MustCompile(`(?i)death`),
	regexp.MustCompile(`(?i)threat`),
	regexp.MustCompile(`(?i)violence`),
	regexp.MustCompile(`(?i)abuse`),
}

// CheckMessage validates an envelope message. Empty messages are allowed.
// Returns ErrMessageTooLong or ErrAbusiveContent on failure.
func CheckMessage(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) > MaxMessageLength {
		return errs.ErrMessageTooLong
	}
	for _, p := range blockedPatterns {
		if p.MatchString(trimmed) {
			return errs.ErrAbusiveContent
		}
	}
	return nil
}
