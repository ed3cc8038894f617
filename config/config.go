// Package config loads the bridge's per-process JSON configuration file.
// Secrets (private keys, API keys) never live in this file in cleartext;
// they are provisioned separately through db.SensitivityMax and sealed by
// db/sealed.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ChainConfig describes one leg of a bridge (source or destination).
type ChainConfig struct {
	ChainID        string        `json:"chainId"`
	Confirmations  uint64        `json:"confirmations"`
	CanonToTip     uint64        `json:"canonToTipLength"`
	Endpoints      []string      `json:"endpoints"`
	VaultAddress   string        `json:"vaultAddress,omitempty"`
	RouterAddress  string        `json:"routerAddress,omitempty"`
	SafeAddress    string        `json:"safeAddress"`
	GasPrice       uint64        `json:"gasPriceWei,omitempty"`
	RotationPeriod time.Duration `json:"-"`
}

// BridgeConfig describes one S->D bridge pipeline.
type BridgeConfig struct {
	Name        string      `json:"name"`
	Source      ChainConfig `json:"source"`
	Destination ChainConfig `json:"destination"`
	FeeBasisPts uint64      `json:"feeBasisPoints"`
	Accrue      bool        `json:"accrueFees"`
}

// SentinelConfig tunes the batching/endpoint layer.
type SentinelConfig struct {
	BatchSize             uint64        `json:"batchSize"`
	BatchDurationSeconds  uint64        `json:"batchDurationSeconds"`
	EndpointRotationDelay time.Duration `json:"endpointRotationDelay"`
	RpcListenAddr         string        `json:"rpcListenAddr"`
}

// AppConfig is the top-level, version-tagged config document.
type AppConfig struct {
	Version   string         `json:"version"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DataDir   string         `json:"dataDir"`
	Bridges   []BridgeConfig `json:"bridges"`
	Sentinel  SentinelConfig `json:"sentinel"`
}

func New(dataDir string) *AppConfig {
	now := time.Now()
	return &AppConfig{
		Version:   "1.0.0",
		CreatedAt: now,
		UpdatedAt: now,
		DataDir:   dataDir,
		Sentinel: SentinelConfig{
			BatchSize:            1,
			BatchDurationSeconds: 300,
		},
	}
}

// Load reads and parses an AppConfig from path.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the AppConfig to path as indented JSON.
func Save(path string, cfg *AppConfig) error {
	cfg.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// BridgeByName finds a bridge config by its name, or nil if absent.
func (c *AppConfig) BridgeByName(name string) *BridgeConfig {
	for i := range c.Bridges {
		if c.Bridges[i].Name == name {
			return &c.Bridges[i]
		}
	}
	return nil
}
