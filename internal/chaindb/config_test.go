package chaindb_test

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/gyoonit/blocksci/internal/chaindb"
)

func TestDataConfigurationRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  chaindb.DataConfiguration
	}{
		{"zero value", chaindb.DataConfiguration{}},
		{"all fields", chaindb.DataConfiguration{
			DataDirectory: "/data/bitcoin/parsed",
			ErrorOnReorg:  true,
			BlocksIgnored: 6,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			data, err := chaindb.EncodeDataConfiguration(tt.cfg)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := chaindb.DecodeDataConfiguration(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.cfg {
				t.Fatalf("round trip changed configuration:\n got %+v\nwant %+v", got, tt.cfg)
			}
		})
	}
}

func TestDecodeDataConfigurationFields(t *testing.T) {
	t.Parallel()

	doc := strings.Join([]string{
		"data_directory: /var/lib/chain",
		"error_on_reorg: true",
		"blocks_ignored: 3",
	}, "\n")

	got, err := chaindb.DecodeDataConfiguration([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := chaindb.DataConfiguration{
		DataDirectory: "/var/lib/chain",
		ErrorOnReorg:  true,
		BlocksIgnored: 3,
	}
	if got != want {
		t.Fatalf("decoded %+v, want %+v", got, want)
	}
}

func TestDecodeDataConfigurationMalformed(t *testing.T) {
	t.Parallel()

	if _, err := chaindb.DecodeDataConfiguration([]byte("{invalid")); err == nil {
		t.Fatal("expected error")
	}
}

func TestParamsForNetwork(t *testing.T) {
	t.Parallel()

	tests := []struct {
		network string
		want    *chaincfg.Params
	}{
		{"mainnet", &chaincfg.MainNetParams},
		{"Main", &chaincfg.MainNetParams},
		{"testnet3", &chaincfg.TestNet3Params},
		{"regtest", &chaincfg.RegressionNetParams},
		{"signet", &chaincfg.SigNetParams},
	}
	for _, tt := range tests {
		got, err := chaindb.ParamsForNetwork(tt.network)
		if err != nil {
			t.Fatalf("ParamsForNetwork(%q): %v", tt.network, err)
		}
		if got != tt.want {
			t.Fatalf("ParamsForNetwork(%q) = %s", tt.network, got.Name)
		}
	}

	if _, err := chaindb.ParamsForNetwork("litecoin"); err == nil {
		t.Fatal("expected error for unsupported network")
	}
}
