// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/viper"

	"github.com/opencurve/curved/internal/market"
	"github.com/opencurve/curved/internal/types"
)

// Config is the daemon configuration, loaded from a YAML/TOML file with
// CURVED_* environment overrides for the operational knobs.
type Config struct {
	ListenAddr     string `mapstructure:"listen_addr"`
	AdminKey       string `mapstructure:"admin_key"`
	DevFaucet      bool   `mapstructure:"dev_faucet"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	ExportDir      string `mapstructure:"export_dir"`
	LogFile        string `mapstructure:"log_file"`
	DebugLogging   bool   `mapstructure:"debug_logging"`

	Market MarketConfig `mapstructure:"market"`
}

// MarketConfig mirrors market.Params with wei amounts as decimal strings.
type MarketConfig struct {
	MarketAddress string `mapstructure:"market_address"`
	TokenAddress  string `mapstructure:"token_address"`
	NativeWrapper string `mapstructure:"native_wrapper"`
	RouterAddress string `mapstructure:"router_address"`
	Admin         string `mapstructure:"admin"`
	Treasury      string `mapstructure:"treasury"`

	VirtualEth      string `mapstructure:"virtual_eth"`
	CurveAllocation string `mapstructure:"curve_allocation"`
	TokenSupply     string `mapstructure:"token_supply"`
	TargetEth       string `mapstructure:"target_eth"`

	FeeBps        uint16 `mapstructure:"fee_bps"`
	FeeCeilingBps uint16 `mapstructure:"fee_ceiling_bps"`

	Pausable  bool `mapstructure:"pausable"`
	Blacklist bool `mapstructure:"blacklist"`
	Migration bool `mapstructure:"migration"`

	HistorySize int `mapstructure:"history_size"`
}

const (
	DefaultListenAddr = ":8085"
	DefaultExportDir  = "exports"
	DefaultLogFile    = "curved.log"
)

// LoadConfig reads and validates the configuration file at path.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":           DefaultListenAddr,
		"export_dir":            DefaultExportDir,
		"log_file":              DefaultLogFile,
		"metrics_enabled":       true,
		"market.market_address": "market",
		"market.router_address": "router",
		"market.fee_bps":        100,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.ListenAddr == "" {
		return errors.New("listen_addr is empty")
	}
	if cfg.AdminKey == "" && !cfg.DevFaucet {
		return errors.New("admin_key required outside dev mode")
	}
	if _, err := cfg.MarketParams(); err != nil {
		return err
	}
	return nil
}

// MarketParams converts the string-typed market section into market.Params,
// delegating the semantic checks to Params.Validate.
func (c *Config) MarketParams() (market.Params, error) {
	mc := c.Market
	p := market.Params{
		MarketAddress: types.Address(mc.MarketAddress),
		TokenAddress:  types.Address(mc.TokenAddress),
		NativeWrapper: types.Address(mc.NativeWrapper),
		Admin:         types.Address(mc.Admin),
		Treasury:      types.Address(mc.Treasury),
		FeeBps:        mc.FeeBps,
		FeeCeilingBps: mc.FeeCeilingBps,
		Pausable:      mc.Pausable,
		Blacklist:     mc.Blacklist,
		Migration:     mc.Migration,
		HistorySize:   mc.HistorySize,
	}

	var err error
	if p.VirtualEth, err = parseAmount("market.virtual_eth", mc.VirtualEth); err != nil {
		return p, err
	}
	if p.CurveAllocation, err = parseAmount("market.curve_allocation", mc.CurveAllocation); err != nil {
		return p, err
	}
	if p.TokenSupply, err = parseAmount("market.token_supply", mc.TokenSupply); err != nil {
		return p, err
	}
	if mc.TargetEth != "" {
		if p.TargetEth, err = parseAmount("market.target_eth", mc.TargetEth); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}

func parseAmount(key, raw string) (*big.Int, error) {
	v, err := types.ParseAmount(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("CURVED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if key := v.GetString("ADMIN_KEY"); key != "" {
		cfg.AdminKey = key
	}
	if addr := v.GetString("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
}
