// Package helpers provides narrowly-scoped utilities for the E2E suites.
package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Assert provides assertion capabilities for E2E tests.
//
// This is a thin wrapper around testify/assert to keep one consistent
// interface across both suites. Failures are logged without stopping the
// test, so cleanup paths (session close, eyes finalize) still run.
//
// Usage:
//
//	a := helpers.NewAssert(t)
//	a.NoError(err, "flow should reach the main page")
type Assert struct {
	t *testing.T
}

// NewAssert creates a new assertion helper for the given test.
func NewAssert(t *testing.T) *Assert {
	return &Assert{t: t}
}

// NoError asserts that err is nil.
func (a *Assert) NoError(err error, msgAndArgs ...interface{}) bool {
	return assert.NoError(a.t, err, msgAndArgs...)
}

// Error asserts that err is not nil.
func (a *Assert) Error(err error, msgAndArgs ...interface{}) bool {
	return assert.Error(a.t, err, msgAndArgs...)
}

// Equal asserts that expected and actual are equal.
func (a *Assert) Equal(expected, actual interface{}, msgAndArgs ...interface{}) bool {
	return assert.Equal(a.t, expected, actual, msgAndArgs...)
}

// NotEqual asserts that expected and actual are not equal.
func (a *Assert) NotEqual(expected, actual interface{}, msgAndArgs ...interface{}) bool {
	return assert.NotEqual(a.t, expected, actual, msgAndArgs...)
}

// True asserts that the specified value is true.
func (a *Assert) True(value bool, msgAndArgs ...interface{}) bool {
	return assert.True(a.t, value, msgAndArgs...)
}

// False asserts that the specified value is false.
func (a *Assert) False(value bool, msgAndArgs ...interface{}) bool {
	return assert.False(a.t, value, msgAndArgs...)
}

// Contains asserts that the string s contains the substring.
func (a *Assert) Contains(s, contains string, msgAndArgs ...interface{}) bool {
	return assert.Contains(a.t, s, contains, msgAndArgs...)
}

// Len asserts that the specified object has the expected length.
func (a *Assert) Len(object interface{}, length int, msgAndArgs ...interface{}) bool {
	return assert.Len(a.t, object, length, msgAndArgs...)
}

// NotEmpty asserts that the specified object is not empty.
func (a *Assert) NotEmpty(object interface{}, msgAndArgs ...interface{}) bool {
	return assert.NotEmpty(a.t, object, msgAndArgs...)
}
