// Package id generates the prefixed ULIDs used across the portfolio backend.
//
// Every record kind carries its own prefix so identifiers stay readable in
// logs and API payloads (prj_*, msg_*, term_*, req_*, adm_*). ULIDs sort by
// creation time, which the storage layer relies on for stable ordering.
package id

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ProjectID identifies a showcased project
type ProjectID string

// MessageID identifies a contact form submission
type MessageID string

// TerminalID identifies one mounted terminal session
type TerminalID string

// RequestID identifies an API request or trace span
type RequestID string

// AdminID identifies an admin account
type AdminID string

const (
	ProjectPrefix  = "prj"
	MessagePrefix  = "msg"
	TerminalPrefix = "term"
	RequestPrefix  = "req"
	AdminPrefix    = "adm"
)

// Generator produces monotonic ULIDs from a shared entropy source.
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the process-wide generator.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand.
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
// and clock. Tests use it for deterministic output.
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{entropy: entropy, now: now}
}

// Generate returns a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// WithPrefix returns "<prefix>_<ulid>".
func (g *Generator) WithPrefix(prefix string) string {
	return prefix + "_" + g.Generate().String()
}

func NewProjectID() ProjectID   { return ProjectID(Default().WithPrefix(ProjectPrefix)) }
func NewMessageID() MessageID   { return MessageID(Default().WithPrefix(MessagePrefix)) }
func NewTerminalID() TerminalID { return TerminalID(Default().WithPrefix(TerminalPrefix)) }
func NewRequestID() RequestID   { return RequestID(Default().WithPrefix(RequestPrefix)) }
func NewAdminID() AdminID       { return AdminID(Default().WithPrefix(AdminPrefix)) }

func (i ProjectID) String() string  { return string(i) }
func (i MessageID) String() string  { return string(i) }
func (i TerminalID) String() string { return string(i) }
func (i RequestID) String() string  { return string(i) }
func (i AdminID) String() string    { return string(i) }

// HasPrefix reports whether s is a well-formed identifier of the given kind.
func HasPrefix(s, prefix string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	if !ok {
		return false
	}
	return IsValid(rest)
}

// IsValid checks if s is a bare ULID.
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}

// Timestamp extracts the creation time from a bare or prefixed identifier.
func Timestamp(s string) (time.Time, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	parsed, err := ulid.ParseStrict(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
