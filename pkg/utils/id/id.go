// Package id provides unique ID generation utilities.
//
// Two strategies are supported:
//   - UUID: Standard UUID v4 (random), used for request ids
//   - ULID: Universally Unique Lexicographically Sortable Identifier, used for entity ids
//
// Usage:
//
//	rid := id.NewUUID() // e.g., "550e8400-e29b-41d4-a716-446655440000"
//	eid := id.NewULID() // e.g., "01ARZ3NDEKTSV4RRFFQ69G5FAV"
package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator defines the interface for ID generators.
type Generator interface {
	// Generate creates a new unique ID.
	Generate() string
}

// Type represents the type of ID generator.
type Type string

const (
	// TypeUUID represents UUID v4 generator.
	TypeUUID Type = "uuid"

	// TypeULID represents ULID generator.
	TypeULID Type = "ulid"
)

var (
	defaultUUID Generator
	defaultULID Generator
	initOnce    sync.Once
)

func initDefaults() {
	initOnce.Do(func() {
		defaultUUID = NewUUIDGenerator()
		defaultULID = NewULIDGenerator()
	})
}

// NewUUID generates a new UUID v4 string.
func NewUUID() string {
	initDefaults()
	return defaultUUID.Generate()
}

// NewULID generates a new ULID string.
func NewULID() string {
	initDefaults()
	return defaultULID.Generate()
}

// New generates a new ID using the specified generator type.
func New(t Type) string {
	switch t {
	case TypeULID:
		return NewULID()
	default:
		return NewUUID()
	}
}

type uuidGenerator struct{}

// NewUUIDGenerator returns a UUID v4 generator.
func NewUUIDGenerator() Generator {
	return uuidGenerator{}
}

func (uuidGenerator) Generate() string {
	return uuid.NewString()
}

// ulidGenerator produces monotonic ULIDs; ids created within the same
// millisecond still sort in creation order.
type ulidGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// NewULIDGenerator returns a monotonic ULID generator.
func NewULIDGenerator() Generator {
	return &ulidGenerator{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (g *ulidGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// IsULID reports whether s parses as a ULID.
func IsULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
