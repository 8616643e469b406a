// =================================
// File: internal/config/config_test.go
// =================================
package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencurve/curved/internal/config"
)

const sampleYAML = `
listen_addr: ":9000"
admin_key: "secret"
dev_faucet: true
market:
  token_address: "curve-token"
  native_wrapper: "wnative"
  admin: "admin"
  treasury: "treasury"
  virtual_eth: "30000000000000000000"
  curve_allocation: "1073000191000000000000000000"
  token_supply: "1073000191000000000000000000"
  target_eth: "5000000000000000000"
  fee_bps: 100
  pausable: true
  migration: true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curved.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := config.LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "secret", cfg.AdminKey)
	assert.True(t, cfg.DevFaucet)
	assert.Equal(t, config.DefaultExportDir, cfg.ExportDir)
	assert.Equal(t, "market", cfg.Market.MarketAddress, "defaulted")

	params, err := cfg.MarketParams()
	require.NoError(t, err)
	assert.Equal(t, "30000000000000000000", params.VirtualEth.String())
	assert.Equal(t, uint16(100), params.FeeBps)
	assert.True(t, params.Migration)
}

func TestLoadConfigRejectsBadAmount(t *testing.T) {
	body := strings.ReplaceAll(sampleYAML, `"30000000000000000000"`, `"not-a-number"`)
	_, err := config.LoadConfig(writeConfig(t, body))
	require.Error(t, err)
}

func TestLoadConfigRequiresAdminKey(t *testing.T) {
	body := strings.ReplaceAll(sampleYAML, `admin_key: "secret"`, `admin_key: ""`)
	body = strings.ReplaceAll(body, `dev_faucet: true`, `dev_faucet: false`)
	_, err := config.LoadConfig(writeConfig(t, body))
	require.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CURVED_ADMIN_KEY", "env-secret")
	cfg, err := config.LoadConfig(writeConfig(t, sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", cfg.AdminKey)
}
