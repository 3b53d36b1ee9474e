package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://www.ticaretsicil.gov.tr", cfg.Site.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.False(t, cfg.HTTP.VerifySSL)
	assert.Equal(t, time.Second, cfg.HTTP.RateLimitDelay)
	assert.Equal(t, []string{"tur", "eng"}, cfg.OCR.Languages())
	assert.Equal(t, int64(20*1024*1024), cfg.OCR.MaxPDFBytes())
	assert.Equal(t, 31, cfg.OCR.BinarizeBlockSize)
	assert.Equal(t, 120*time.Second, cfg.OCR.ForcedOCRTimeout)
	assert.Equal(t, 5, cfg.Captcha.MaxAttempts)
	assert.False(t, cfg.Site.HasCredentials())
	assert.Equal(t, 30*time.Minute, cfg.Site.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.Site.SearchRetryDelay)
}

func TestLoadConfigYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site:
  base_url: http://localhost:9999
  login_email: a@b.c
  login_password: secret
ocr:
  dpi: 200
`), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("OCR_DPI", "150")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9999", cfg.Site.BaseURL)
	assert.True(t, cfg.Site.HasCredentials())
	assert.Equal(t, 150, cfg.OCR.DPI)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidateRejectsEvenBlockSize(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Chdir(t.TempDir())
	t.Setenv("OCR_BINARIZE_BLOCK_SIZE", "30")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
