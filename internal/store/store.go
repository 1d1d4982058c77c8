// Package store defines the record store contract the wellness core consumes.
//
// Every record lives under a partition key (the user) and a sort key that both
// discriminates its kind and orders it inside the partition. Implementations
// are expected to be safe for concurrent use; writes are last-writer-wins.
package store

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	// ErrNotFound is returned by Get when no item exists for the key.
	ErrNotFound = errors.New("store: item not found")
	// ErrExists is returned by Create when an item already exists for the key.
	ErrExists = errors.New("store: item already exists")
)

// Attributes holds the non-key attributes of an item.
type Attributes = map[string]types.AttributeValue

// Item is one record in the store.
type Item struct {
	PK    string
	SK    string
	Attrs Attributes
}

// Condition constrains the sort key of a query. A zero Condition matches the
// whole partition.
type Condition struct {
	Prefix string
	Lower  string
	Upper  string
}

// BeginsWith matches sort keys starting with prefix.
func BeginsWith(prefix string) Condition { return Condition{Prefix: prefix} }

// Between matches sort keys in the inclusive range [lower, upper].
func Between(lower, upper string) Condition { return Condition{Lower: lower, Upper: upper} }

// IsRange reports whether c is a Between condition.
func (c Condition) IsRange() bool { return c.Lower != "" || c.Upper != "" }

// Matches reports whether sk satisfies c.
func (c Condition) Matches(sk string) bool {
	if c.IsRange() {
		return sk >= c.Lower && sk <= c.Upper
	}
	return len(sk) >= len(c.Prefix) && sk[:len(c.Prefix)] == c.Prefix
}

// Query describes a single-partition read.
type Query struct {
	Condition  Condition
	Descending bool
	// Limit caps the number of returned items; zero means no cap.
	Limit int
}

// Reader is the read side of the store.
type Reader interface {
	Get(ctx context.Context, pk, sk string) (Item, error)
	Query(ctx context.Context, pk string, q Query) ([]Item, error)
}

// Store is the full record store contract.
type Store interface {
	Reader
	Put(ctx context.Context, item Item) error
	// Create writes item only if no item exists for its key.
	Create(ctx context.Context, item Item) error
	Delete(ctx context.Context, pk, sk string) error
}
