package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nspcc-dev/batchtransfer-contract/payouts"
	"github.com/nspcc-dev/batchtransfer-contract/contracts/batchtransfer/batchconst"
	"github.com/nspcc-dev/batchtransfer-contract/rpc/batchtransfer"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
)

func runWithConfig(t *testing.T, args ...string) (config, error) {
	var (
		cfg config
		err error
	)

	app := newApp()
	app.Commands = append(app.Commands, cli.Command{
		Name: "test",
		Action: func(c *cli.Context) error {
			cfg, err = loadConfig(c)
			return nil
		},
	})

	require.NoError(t, app.Run(append(append([]string{"batchtransfer"}, args...), "test")))

	return cfg, err
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`rpc: http://localhost:30333
timeout: 1m
contract: 0x0102030000000000000000000000000000000000
wallet:
  path: wallet.json
  password: one
`), 0o600))

	cfg, err := runWithConfig(t, "--config", path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:30333", cfg.RPC)
	require.Equal(t, time.Minute, cfg.Timeout)
	require.Equal(t, "wallet.json", cfg.Wallet.Path)
	require.Equal(t, "one", cfg.Wallet.Password)

	cfg, err = runWithConfig(t, "--config", path, "--rpc", "http://localhost:40333", "--password", "two")
	require.NoError(t, err)
	require.Equal(t, "http://localhost:40333", cfg.RPC)
	require.Equal(t, "two", cfg.Wallet.Password)
	require.Equal(t, "wallet.json", cfg.Wallet.Path)

	cfg, err = runWithConfig(t, "--rpc", "http://localhost:40333")
	require.NoError(t, err)
	require.Equal(t, defaultTimeout, cfg.Timeout)

	_, err = runWithConfig(t)
	require.Error(t, err)

	_, err = runWithConfig(t, "--config", filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
}

func TestContractAddress(t *testing.T) {
	_, err := contractAddress(config{})
	require.Error(t, err)

	h, err := contractAddress(config{Contract: "0x0000000000000000000000000000000000030201"})
	require.NoError(t, err)
	require.Equal(t, util.Uint160{1, 2, 3}, h)

	_, err = contractAddress(config{Contract: "not an address"})
	require.Error(t, err)
}

func TestOpenAccount(t *testing.T) {
	_, err := openAccount(walletConfig{})
	require.Error(t, err)

	_, err = openAccount(walletConfig{Path: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
}

func TestValidateChunk(t *testing.T) {
	var (
		contract = util.Uint160{9}
		p        = &batchtransfer.Preflight{Contract: contract, MaxBatchSize: 2}
	)

	equal := payouts.List{
		{Recipient: util.Uint160{1}, Amount: big.NewInt(5)},
		{Recipient: util.Uint160{2}, Amount: big.NewInt(5)},
	}
	require.NoError(t, validateChunk(p, equal))

	varying := payouts.List{
		{Recipient: util.Uint160{1}, Amount: big.NewInt(5)},
		{Recipient: contract, Amount: big.NewInt(6)},
	}
	require.ErrorIs(t, validateChunk(p, varying), batchtransfer.ErrInvalidRecipient)

	require.ErrorIs(t, validateChunk(p, append(equal, equal[0])), batchtransfer.ErrBatchTooLarge)
}

func TestContractEvents(t *testing.T) {
	var (
		contract = util.Uint160{9}
		from     = util.Uint160{1}
		asset    = util.Uint160{2}
	)

	batch := stackitem.NewArray([]stackitem.Item{
		stackitem.Make(from.BytesBE()),
		stackitem.Make(asset.BytesBE()),
		stackitem.Make(3),
		stackitem.Make(30),
	})
	// same name, different shape
	foreign := stackitem.NewArray([]stackitem.Item{stackitem.Make("unrelated")})

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{ScriptHash: util.Uint160{7}, Name: batchconst.BatchTransferEvent, Item: foreign},
				{ScriptHash: contract, Name: batchconst.BatchTransferEvent, Item: batch},
			},
		}},
	}

	_, err := batchtransfer.BatchTransferEventsFromApplicationLog(log)
	require.Error(t, err)

	evs, err := batchtransfer.BatchTransferEventsFromApplicationLog(contractEvents(log, contract))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, from, evs[0].From)
	require.Equal(t, asset, evs[0].Asset)
	require.EqualValues(t, 3, evs[0].Count.Int64())
	require.EqualValues(t, 30, evs[0].Total.Int64())

	require.Len(t, log.Executions[0].Events, 2)
	require.Nil(t, contractEvents(nil, contract))
}
