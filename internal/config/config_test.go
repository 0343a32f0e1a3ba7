package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.OCR.Timeout())
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxSizeBytes())
	assert.Empty(t, cfg.OCR.Endpoint, "OCR should be disabled by default")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement-parser.yaml")
	content := `server:
  addr: ":9090"
ocr:
  endpoint: "https://ocr.example.com/recognize"
  api_key: "secret"
  timeout_seconds: 30
upload:
  max_size_mb: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "https://ocr.example.com/recognize", cfg.OCR.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.OCR.Timeout())
	assert.Equal(t, int64(5<<20), cfg.Upload.MaxSizeBytes())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement-parser.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":3000\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.Equal(t, 10, cfg.Upload.MaxSizeMB)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
