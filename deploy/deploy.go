package deploy

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/batchtransfer-contract/contracts"
	"github.com/nspcc-dev/batchtransfer-contract/rpc/batchtransfer"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for BatchTransfer contract deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups all parameters of the BatchTransfer contract deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance the contract is deployed to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// Contract address depends on it.
	LocalAccount *wallet.Account

	NEF      nef.File
	Manifest manifest.Manifest

	// Address of the already deployed contract. Contract address is fixed by
	// the NEF checksum of the first deployment, so it can't be computed from
	// the changed local NEF. Zero means the address is derived from
	// LocalAccount, NEF and Manifest which is correct for the first
	// deployment only.
	Address util.Uint160

	// Recipient limit set on the first deployment. Zero means contract default.
	MaxBatchSize int
}

// Deploy makes the given contract deployed to the blockchain and returns its
// address. Deploy is idempotent:
//   - missing contract is deployed (Address must not be set)
//   - contract with the same NEF checksum is left as is
//   - otherwise contract is updated by calling its `update` method which
//     requires LocalAccount to be able to sign for the committee
//
// Deploy waits for the transaction acceptance and fails if it is not HALTed.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	act, err := actor.NewSimple(prm.Blockchain, prm.LocalAccount)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	return syncContract(ctx, syncContractPrm{
		logger:       prm.Logger,
		states:       prm.Blockchain,
		waiter:       act,
		deployer:     management.New(act),
		updater:      func(h util.Uint160) contractUpdater { return batchtransfer.New(act, h) },
		sender:       prm.LocalAccount.ScriptHash(),
		address:      prm.Address,
		local:        contracts.Contract{NEF: prm.NEF, Manifest: prm.Manifest},
		maxBatchSize: prm.MaxBatchSize,
	})
}

type contractStateGetter interface {
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

type contractDeployer interface {
	Deploy(nefFile *nef.File, manif *manifest.Manifest, data any) (util.Uint256, uint32, error)
}

type contractUpdater interface {
	Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error)
}

type txWaiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

type syncContractPrm struct {
	logger *zap.Logger

	states   contractStateGetter
	waiter   txWaiter
	deployer contractDeployer
	updater  func(util.Uint160) contractUpdater

	sender       util.Uint160
	address      util.Uint160
	local        contracts.Contract
	maxBatchSize int
}

func syncContract(ctx context.Context, prm syncContractPrm) (util.Uint160, error) {
	known := !prm.address.Equals(util.Uint160{})

	addr := prm.address
	if !known {
		addr = state.CreateContractHash(prm.sender, prm.local.NEF.Checksum, prm.local.Manifest.Name)
	}

	l := prm.logger.With(zap.String("contract", prm.local.Manifest.Name), zap.Stringer("address", addr))

	if err := ctx.Err(); err != nil {
		return addr, err
	}

	l.Info("reading contract state from the chain...")

	onChain, err := prm.states.GetContractStateByHash(addr)
	if err != nil && !isErrContractNotFound(err) {
		return addr, fmt.Errorf("get contract state: %w", err)
	}

	if onChain == nil {
		if known {
			return addr, fmt.Errorf("%w: %s", ErrNoContract, addr.StringLE())
		}

		l.Info("contract is missing on the chain, deploying...")

		var data any
		if prm.maxBatchSize > 0 {
			data = []any{big.NewInt(int64(prm.maxBatchSize))}
		}

		err = waitHalt(prm.waiter.Wait(prm.deployer.Deploy(&prm.local.NEF, &prm.local.Manifest, data)))
		if err != nil {
			return addr, fmt.Errorf("deploy contract: %w", err)
		}

		l.Info("contract successfully deployed")

		return addr, nil
	}

	if onChain.NEF.Checksum == prm.local.NEF.Checksum {
		l.Info("contract is already deployed and up-to-date")
		return addr, nil
	}

	l.Info("contract differs from the local one, updating...",
		zap.Uint32("on-chain checksum", onChain.NEF.Checksum), zap.Uint32("local checksum", prm.local.NEF.Checksum))

	bNEF, jManifest, err := prm.local.Bytes()
	if err != nil {
		return addr, err
	}

	err = waitHalt(prm.waiter.Wait(prm.updater(addr).Update(bNEF, jManifest, nil)))
	if err != nil {
		return addr, fmt.Errorf("update contract: %w", err)
	}

	l.Info("contract successfully updated")

	return addr, nil
}

func waitHalt(res *state.AppExecResult, err error) error {
	if err != nil {
		return err
	}

	if res.VMState != vmstate.Halt {
		return fmt.Errorf("transaction %s failed: %s", res.Container.StringLE(), res.FaultException)
	}

	return nil
}

func isErrContractNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Unknown contract")
}

// ErrNoContract is returned when contract is not deployed at the given
// address.
var ErrNoContract = errors.New("contract is not deployed")

// Info describes deployed BatchTransfer contract.
type Info struct {
	Address      util.Uint160
	Checksum     uint32
	Version      *big.Int
	MaxBatchSize *big.Int
}

// ReadInfo reads information about the contract deployed at the address.
func ReadInfo(states contractStateGetter, inv batchtransfer.Invoker, addr util.Uint160) (Info, error) {
	res := Info{Address: addr}

	st, err := states.GetContractStateByHash(addr)
	if err != nil {
		if isErrContractNotFound(err) {
			return res, ErrNoContract
		}
		return res, fmt.Errorf("get contract state: %w", err)
	}

	res.Checksum = st.NEF.Checksum

	r := batchtransfer.NewReader(inv, addr)

	res.Version, err = r.Version()
	if err != nil {
		return res, fmt.Errorf("read version: %w", err)
	}

	res.MaxBatchSize, err = r.MaxBatchSize()
	if err != nil {
		return res, fmt.Errorf("read max batch size: %w", err)
	}

	return res, nil
}
