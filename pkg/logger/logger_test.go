package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, encoding string
		wantErr         bool
	}{
		{"info", "console", false},
		{"debug", "json", false},
		{"WARN", "text", false},
		{"error", "", false},
		{"verbose", "console", true},
		{"info", "xml", true},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.encoding, func(t *testing.T) {
			l, err := New(tt.level, tt.encoding)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l.Logger)
		})
	}
}

func TestNewLevel(t *testing.T) {
	l, err := New("warn", "json")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
}

func TestFields(t *testing.T) {
	assert.Equal(t, "ticker", StringField("ticker", "AAPL").Key)
	assert.Equal(t, int64(5), IntField("count", 5).Integer)
	assert.Equal(t, "error", ErrorField(errors.New("boom")).Key)
	assert.Equal(t, int64(time.Second), DurationField("took", time.Second).Integer)
}

func TestNopNamed(t *testing.T) {
	l := NewNop().Named("news").With(StringField("ticker", "AAPL"))
	assert.NotPanics(t, func() { l.Info("discarded") })
}

func TestNewToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stockpulse.log")
	l, err := NewToFile("warn", "json", path)
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("summary request failed", StringField("provider", "openai"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"summary request failed"`)
	assert.NotContains(t, string(data), "dropped")

	_, err = NewToFile("info", "console", "")
	assert.Error(t, err)
}
