package decode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
ctx_size: 4096
batch_size_truncate: 256
threads: 4
n_predict: 128
seed: 42
temperature: 0.7
top_k: 50
top_p: 0.9
repeat_penalty: 1.1
keep: -1
shift_roped_k: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.CtxSize)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, float32(0.7), cfg.Temperature)
	assert.True(t, cfg.ShiftRopedK)
}

func TestLoadConfigMissingFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultConfigIsRunnable(t *testing.T) {
	cfg := DefaultConfig()
	assert.Greater(t, cfg.CtxSize, 0)
	assert.Greater(t, cfg.Threads, 0)
	assert.Equal(t, -1, cfg.NPredict)
}
