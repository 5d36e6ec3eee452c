// Package chaindb is the read-only facade over a parsed blockchain dataset:
// height-indexed block access, hash and address lookups, load-balanced chain
// segmentation and unspent-output enumeration. A Blockchain handle is
// immutable after Open and safe for concurrent readers without locking.
package chaindb

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"gopkg.in/yaml.v3"
)

// DataConfiguration locates a dataset and fixes how much of its tip is
// trusted. Immutable; serialization round-trips field for field.
type DataConfiguration struct {
	DataDirectory string `yaml:"data_directory"`
	ErrorOnReorg  bool   `yaml:"error_on_reorg"`
	BlocksIgnored int    `yaml:"blocks_ignored"`
}

// EncodeDataConfiguration serializes the configuration. Decoding the result
// reproduces an equivalent configuration.
func EncodeDataConfiguration(c DataConfiguration) ([]byte, error) {
	return yaml.Marshal(c)
}

// DecodeDataConfiguration parses a serialized configuration.
func DecodeDataConfiguration(data []byte) (DataConfiguration, error) {
	var c DataConfiguration
	if err := yaml.Unmarshal(data, &c); err != nil {
		return DataConfiguration{}, fmt.Errorf("decode data configuration: %w", err)
	}
	return c, nil
}

// ParamsForNetwork maps a network name to its chain parameters.
func ParamsForNetwork(network string) (*chaincfg.Params, error) {
	switch strings.ToLower(network) {
	case "main", "mainnet", "bitcoin":
		return &chaincfg.MainNetParams, nil
	case "testnet", "testnet3":
		return &chaincfg.TestNet3Params, nil
	case "regtest":
		return &chaincfg.RegressionNetParams, nil
	case "signet":
		return &chaincfg.SigNetParams, nil
	default:
		return nil, fmt.Errorf("unsupported network %q", network)
	}
}
