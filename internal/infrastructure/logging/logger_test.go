package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "production defaults", cfg: Config{Level: "info"}},
		{name: "development", cfg: Config{Level: "debug", Development: true}},
		{name: "empty level means info", cfg: Config{}},
		{name: "bad level", cfg: Config{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger.Component("test"))
		})
	}
}

func TestNewOrNopFallsBack(t *testing.T) {
	logger := NewOrNop(Config{Level: "loud"})
	require.NotNil(t, logger)
	logger.Info("discarded", zap.String("k", "v"))
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("hello")
	_ = logger.Sync()

	assert.FileExists(t, path)
}
