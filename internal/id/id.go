// Package id generates and validates the opaque identifiers carried by
// every entity. An identifier is a kind prefix joined to a random UUID,
// e.g. "acc_9b4f2c1e-07bd-4cde-a1f3-52a8c3b0d9ee", so an id on its own
// names the collection it belongs to.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// Entity kinds, used as id prefixes.
const (
	KindAccount     = "acc"
	KindTransaction = "txn"
	KindRecurring   = "rec"
	KindSnapshot    = "nws"
)

// New returns a fresh identifier of the given kind.
func New(kind string) string {
	return kind + "_" + uuid.NewString()
}

// IsValid reports whether s is a well-formed identifier of the given kind.
func IsValid(kind, s string) bool {
	rest, ok := strings.CutPrefix(s, kind+"_")
	if !ok {
		return false
	}
	return uuid.Validate(rest) == nil
}
