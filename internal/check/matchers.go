// Package check implements the element-assertion verification strategy:
// waiting for fixed locators, pattern-matching text content, and comparing
// text collections against expected literals.
package check

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrAssertion marks a content mismatch between observed and expected text.
var ErrAssertion = errors.New("assertion failed")

// countdownPattern matches the branch-closing banner: the fixed prefix
// followed by one or more <number><unit> groups with unit in h/m/s.
var countdownPattern = regexp.MustCompile(`^Your nearest branch closes in:( \d+[hms])+$`)

// ExpectedMenuItems is the account menu in expected order, lower-cased.
var ExpectedMenuItems = []string{
	"card types",
	"credit cards",
	"debit cards",
	"lending",
	"loans",
	"mortgages",
}

// AllowedStatuses are the transaction statuses a badge may show. Allowed
// values that never appear are not an error.
var AllowedStatuses = []string{"complete", "pending", "declined"}

// MatchCountdown verifies the banner text against the countdown pattern.
func MatchCountdown(text string) error {
	if !countdownPattern.MatchString(strings.TrimSpace(text)) {
		return fmt.Errorf("%w: countdown text %q does not match %q", ErrAssertion, text, countdownPattern)
	}
	return nil
}

// MatchOrdered lower-cases the observed texts and compares them positionally
// against expected. Any length or positional mismatch fails.
func MatchOrdered(observed, expected []string) error {
	if len(observed) != len(expected) {
		return fmt.Errorf("%w: got %d items, want %d", ErrAssertion, len(observed), len(expected))
	}
	for i, text := range observed {
		if got := strings.ToLower(strings.TrimSpace(text)); got != expected[i] {
			return fmt.Errorf("%w: item %d is %q, want %q", ErrAssertion, i, got, expected[i])
		}
	}
	return nil
}

// MatchMembership lower-cases the observed texts and verifies each is a
// member of the allowed set.
func MatchMembership(observed, allowed []string) error {
	members := make(map[string]bool, len(allowed))
	for _, value := range allowed {
		members[value] = true
	}
	for _, text := range observed {
		got := strings.ToLower(strings.TrimSpace(text))
		if !members[got] {
			return fmt.Errorf("%w: unexpected value %q, allowed %v", ErrAssertion, got, allowed)
		}
	}
	return nil
}
