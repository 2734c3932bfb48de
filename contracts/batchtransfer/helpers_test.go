package batchtransfer_test

import (
	"math/big"
	"math/rand"
	"path"
	"testing"

	"github.com/nspcc-dev/batchtransfer-contract/rpc/batchtransfer"
	"github.com/nspcc-dev/neo-go/pkg/core/native/nativenames"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/stretchr/testify/require"
)

const (
	batchPath = "."
	tokenPath = "../../internal/testcontracts/allowancetoken"
	payeePath = "../../internal/testcontracts/payee"
)

type testEnv struct {
	e *neotest.Executor

	batchHash util.Uint160
	gasHash   util.Uint160

	// committee invoker of the BatchTransfer contract.
	batch *neotest.ContractInvoker
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func newTestEnv(t *testing.T, deployData any) *testEnv {
	e := newExecutor(t)

	c := neotest.CompileFile(t, e.CommitteeHash, batchPath, path.Join(batchPath, "config.yml"))
	e.DeployContract(t, c, deployData)

	gasHash, err := e.Chain.GetNativeContractScriptHash(nativenames.Gas)
	require.NoError(t, err)

	return &testEnv{
		e:         e,
		batchHash: c.Hash,
		gasHash:   gasHash,
		batch:     e.CommitteeInvoker(c.Hash),
	}
}

// deployToken deploys allowance token with the whole supply owned by owner.
func (x *testEnv) deployToken(t *testing.T, owner util.Uint160, supply int64) util.Uint160 {
	c := neotest.CompileFile(t, x.e.CommitteeHash, tokenPath, path.Join(tokenPath, "config.yml"))
	x.e.DeployContract(t, c, []any{owner, supply})
	return c.Hash
}

func (x *testEnv) deployPayee(t *testing.T) util.Uint160 {
	c := neotest.CompileFile(t, x.e.CommitteeHash, payeePath, path.Join(payeePath, "config.yml"))
	x.e.DeployContract(t, c, nil)
	return c.Hash
}

// gasPayer returns GAS invoker signed by the sender.
func (x *testEnv) gasPayer(sender neotest.Signer) *neotest.ContractInvoker {
	return x.e.NewInvoker(x.gasHash, sender)
}

func (x *testEnv) checkGAS(t *testing.T, acc util.Uint160, expected int64) {
	x.e.CheckGASBalance(t, acc, big.NewInt(expected))
}

func (x *testEnv) batchEvents(t *testing.T, h util.Uint256) []*batchtransfer.BatchTransferEvent {
	aer := x.e.GetTxExecResult(t, h)

	var res []*batchtransfer.BatchTransferEvent
	for i := range aer.Events {
		if aer.Events[i].Name != "BatchTransfer" || !aer.Events[i].ScriptHash.Equals(x.batchHash) {
			continue
		}

		var ev batchtransfer.BatchTransferEvent
		require.NoError(t, ev.FromStackItem(aer.Events[i].Item))
		res = append(res, &ev)
	}

	return res
}

func tokenBalance(t *testing.T, token *neotest.ContractInvoker, acc util.Uint160) int64 {
	s, err := token.TestInvoke(t, "balanceOf", acc)
	require.NoError(t, err)
	return s.Pop().BigInt().Int64()
}

func tokenAllowance(t *testing.T, token *neotest.ContractInvoker, owner, spender util.Uint160) int64 {
	s, err := token.TestInvoke(t, "allowance", owner, spender)
	require.NoError(t, err)
	return s.Pop().BigInt().Int64()
}

func newRecipients(n int) []util.Uint160 {
	res := make([]util.Uint160, n)
	for i := range res {
		rand.Read(res[i][:]) //nolint:staticcheck // SA1019: rand.Read has been deprecated since Go 1.20
	}
	return res
}

func hashArgs(hs []util.Uint160) []any {
	res := make([]any, len(hs))
	for i := range hs {
		res[i] = hs[i]
	}
	return res
}

func amountArgs(amounts ...int64) []any {
	res := make([]any, len(amounts))
	for i := range amounts {
		res[i] = amounts[i]
	}
	return res
}
