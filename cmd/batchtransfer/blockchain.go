package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nspcc-dev/batchtransfer-contract/payouts"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

// wrapper over Neo RPC client providing blockchain services needed for
// commands.
type remoteBlockchain struct {
	rpc     *rpcclient.Client
	invoker *invoker.Invoker

	// set only when wallet is configured.
	account *wallet.Account
	actor   *actor.Actor
}

// newRemoteBlockchain dials Neo RPC server. If withWallet is set, it also
// opens the configured wallet and prepares transaction sender from its
// account.
func newRemoteBlockchain(ctx context.Context, cfg config, withWallet bool) (*remoteBlockchain, error) {
	c, err := rpcclient.New(ctx, cfg.RPC, rpcclient.Options{
		DialTimeout:    cfg.Timeout,
		RequestTimeout: cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	res := &remoteBlockchain{
		rpc:     c,
		invoker: invoker.New(c, nil),
	}

	if !withWallet {
		return res, nil
	}

	res.account, err = openAccount(cfg.Wallet)
	if err != nil {
		c.Close()
		return nil, err
	}

	res.actor, err = actor.NewSimple(c, res.account)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return res, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

// wait waits for the transaction to be accepted and checks it's HALTed.
func (x *remoteBlockchain) wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error) {
	res, err := x.actor.Wait(h, vub, err)
	if err != nil {
		return nil, err
	}

	if res.VMState != vmstate.Halt {
		return res, fmt.Errorf("transaction %s failed: %s", h.StringLE(), res.FaultException)
	}

	return res, nil
}

func openAccount(cfg walletConfig) (*wallet.Account, error) {
	if cfg.Path == "" {
		return nil, errors.New("missing wallet")
	}

	w, err := wallet.NewWalletFromFile(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}

	addr := w.GetChangeAddress()
	if cfg.Account != "" {
		addr, err = payouts.ParseAddress(cfg.Account)
		if err != nil {
			return nil, fmt.Errorf("account: %w", err)
		}
	}

	acc := w.GetAccount(addr)
	if acc == nil {
		return nil, fmt.Errorf("account %s is missing in the wallet", addr.StringLE())
	}

	err = acc.Decrypt(cfg.Password, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("decrypt account: %w", err)
	}

	return acc, nil
}

func contractAddress(cfg config) (util.Uint160, error) {
	if cfg.Contract == "" {
		return util.Uint160{}, errors.New("missing BatchTransfer contract address")
	}

	h, err := payouts.ParseAddress(cfg.Contract)
	if err != nil {
		return h, fmt.Errorf("contract: %w", err)
	}

	return h, nil
}
