// Package store holds the remote document stores backing the service: users,
// coffees and orders, each a thin wrapper over a MongoDB collection.
package store

import (
	"errors"
)

const databaseName = "kafs"

// ErrNotFound reports that a document is absent from its collection. It is
// deliberately distinct from transport failures so callers can tell "not
// there" from "could not ask".
var ErrNotFound = errors.New("document not found")
