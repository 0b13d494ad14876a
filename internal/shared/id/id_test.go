package id

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedIdentifiers(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		prefix string
	}{
		{"project", NewProjectID().String(), ProjectPrefix},
		{"message", NewMessageID().String(), MessagePrefix},
		{"terminal", NewTerminalID().String(), TerminalPrefix},
		{"request", NewRequestID().String(), RequestPrefix},
		{"admin", NewAdminID().String(), AdminPrefix},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, strings.HasPrefix(tt.value, tt.prefix+"_"))
			assert.True(t, HasPrefix(tt.value, tt.prefix))
			assert.False(t, HasPrefix(tt.value, "nope"))
		})
	}
}

func TestGeneratorIsMonotonic(t *testing.T) {
	gen := NewGenerator()
	prev := gen.Generate().String()
	for i := 0; i < 100; i++ {
		next := gen.Generate().String()
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestConcurrentGenerationIsUnique(t *testing.T) {
	gen := NewGenerator()
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		wg   sync.WaitGroup
	)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				v := gen.WithPrefix(ProjectPrefix)
				mu.Lock()
				seen[v] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1600)
}

func TestTimestamp(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGeneratorWithEntropy(strings.NewReader(strings.Repeat("x", 64)), func() time.Time { return at })

	value := gen.WithPrefix(MessagePrefix)
	ts, err := Timestamp(value)
	require.NoError(t, err)
	assert.True(t, at.Equal(ts.UTC()))

	_, err = Timestamp("msg_not-a-ulid")
	assert.Error(t, err)
}
