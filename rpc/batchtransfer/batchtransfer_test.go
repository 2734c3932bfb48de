package batchtransfer

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/stretchr/testify/require"
)

type testInv struct {
	err error
	res map[string]*result.Invoke
}

func (t *testInv) Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error) {
	return t.res[operation], t.err
}

func halt(items ...stackitem.Item) *result.Invoke {
	return &result.Invoke{
		State: "HALT",
		Stack: items,
	}
}

type testAct struct {
	testInv
	script []byte
	sent   bool
}

func (t *testAct) MakeRun(script []byte) (*transaction.Transaction, error) {
	t.script = script
	return transaction.New(script, 0), nil
}

func (t *testAct) MakeUnsignedRun(script []byte, _ []transaction.Attribute) (*transaction.Transaction, error) {
	return t.MakeRun(script)
}

func (t *testAct) SendRun(script []byte) (util.Uint256, uint32, error) {
	t.script = script
	t.sent = true
	return util.Uint256{1, 2, 3}, 42, nil
}

func TestReader(t *testing.T) {
	ti := &testInv{res: make(map[string]*result.Invoke)}
	r := NewReader(ti, util.Uint160{1, 2, 3})

	ti.err = errors.New("bad")
	_, err := r.MaxBatchSize()
	require.Error(t, err)

	ti.err = nil
	ti.res["maxBatchSize"] = halt(stackitem.Make(100))
	ti.res["version"] = halt(stackitem.Make(2_000))

	n, err := r.MaxBatchSize()
	require.NoError(t, err)
	require.EqualValues(t, 100, n.Int64())

	v, err := r.Version()
	require.NoError(t, err)
	require.EqualValues(t, 2_000, v.Int64())

	ti.res["maxBatchSize"] = halt(stackitem.Make(new(big.Int).Lsh(big.NewInt(1), 100)))
	_, err = NewPreflight(r)
	require.Error(t, err)

	ti.res["maxBatchSize"] = halt(stackitem.Make(3))
	p, err := NewPreflight(r)
	require.NoError(t, err)
	require.Equal(t, 3, p.MaxBatchSize)
	require.Equal(t, util.Uint160{1, 2, 3}, p.Contract)
}

func TestBatchTransferEventsFromApplicationLog(t *testing.T) {
	_, err := BatchTransferEventsFromApplicationLog(nil)
	require.Error(t, err)

	var (
		from  = util.Uint160{1}
		asset = util.Uint160{2}
	)

	log := &result.ApplicationLog{
		Executions: []state.Execution{{
			Events: []state.NotificationEvent{
				{
					Name: "Transfer",
					Item: stackitem.NewArray(nil),
				},
				{
					Name: "BatchTransfer",
					Item: stackitem.NewArray([]stackitem.Item{
						stackitem.Make(from.BytesBE()),
						stackitem.Make(asset.BytesBE()),
						stackitem.Make(3),
						stackitem.Make(30),
					}),
				},
			},
		}},
	}

	evs, err := BatchTransferEventsFromApplicationLog(log)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, from, evs[0].From)
	require.Equal(t, asset, evs[0].Asset)
	require.EqualValues(t, 3, evs[0].Count.Int64())
	require.EqualValues(t, 30, evs[0].Total.Int64())

	log.Executions[0].Events[1].Item = stackitem.NewArray([]stackitem.Item{stackitem.Make(1)})
	_, err = BatchTransferEventsFromApplicationLog(log)
	require.Error(t, err)

	var ev BatchTransferEvent
	require.Error(t, ev.FromStackItem(nil))
	require.Error(t, ev.FromStackItem(stackitem.NewArray([]stackitem.Item{
		stackitem.Make([]byte{1, 2, 3}),
		stackitem.Make(asset.BytesBE()),
		stackitem.Make(3),
		stackitem.Make(30),
	})))
}

func TestPaymentData(t *testing.T) {
	recipients := []util.Uint160{{1}, {2}}

	data := EqualPaymentData(recipients, big.NewInt(5))
	require.Len(t, data, 3)
	require.EqualValues(t, 0, data[0])
	require.Equal(t, []any{recipients[0], recipients[1]}, data[1])
	require.Equal(t, big.NewInt(5), data[2])

	data = VaryingPaymentData(recipients, []*big.Int{big.NewInt(1), big.NewInt(2)})
	require.Len(t, data, 3)
	require.EqualValues(t, 1, data[0])
	require.Equal(t, []any{big.NewInt(1), big.NewInt(2)}, data[2])

	data = EqualPaymentData(nil, big.NewInt(1))
	require.NotNil(t, data[1])
	require.Empty(t, data[1])
}

func TestPayer(t *testing.T) {
	var (
		act      = &testAct{}
		contract = util.Uint160{9, 9, 9}
		from     = util.Uint160{1, 1, 1}
	)

	p := NewPayer(act, contract)

	h, vub, err := p.PayEqual(from, []util.Uint160{{1}, {2}}, big.NewInt(5))
	require.NoError(t, err)
	require.Equal(t, util.Uint256{1, 2, 3}, h)
	require.EqualValues(t, 42, vub)
	require.True(t, act.sent)
	require.True(t, strings.Contains(string(act.script), string(gas.Hash.BytesBE())))
	require.True(t, strings.Contains(string(act.script), string(contract.BytesBE())))

	act.sent = false
	tx, err := p.PayVaryingTransaction(from, []util.Uint160{{1}}, []*big.Int{big.NewInt(7)})
	require.NoError(t, err)
	require.False(t, act.sent)
	require.Equal(t, act.script, tx.Script)
}

func TestPreflight(t *testing.T) {
	var (
		contract   = util.Uint160{9, 9, 9}
		recipients = []util.Uint160{{1}, {2}, {3}}
		p          = &Preflight{Contract: contract, MaxBatchSize: 3}
	)

	t.Run("equal", func(t *testing.T) {
		total, err := p.ValidateEqual(recipients, big.NewInt(2))
		require.NoError(t, err)
		require.EqualValues(t, 6, total.Int64())

		_, err = p.ValidateEqual(nil, big.NewInt(2))
		require.ErrorIs(t, err, ErrEmptyBatch)

		_, err = p.ValidateEqual(append(recipients, util.Uint160{4}), big.NewInt(2))
		require.ErrorIs(t, err, ErrBatchTooLarge)

		_, err = p.ValidateEqual([]util.Uint160{{1}, contract}, big.NewInt(2))
		require.ErrorIs(t, err, ErrInvalidRecipient)

		_, err = p.ValidateEqual(recipients, big.NewInt(-1))
		require.ErrorIs(t, err, ErrNegativeAmount)
	})

	t.Run("varying", func(t *testing.T) {
		amounts := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}

		total, err := p.ValidateVarying(recipients, amounts)
		require.NoError(t, err)
		require.EqualValues(t, 6, total.Int64())

		_, err = p.ValidateVarying(recipients, amounts[:2])
		require.ErrorIs(t, err, ErrArrayLengthInconsistent)

		_, err = p.ValidateVarying(recipients, []*big.Int{big.NewInt(1), big.NewInt(-2), big.NewInt(3)})
		require.ErrorIs(t, err, ErrNegativeAmount)

		require.ErrorIs(t, CheckValue(big.NewInt(5), total), ErrInsufficientFunds)
		require.ErrorIs(t, CheckValue(big.NewInt(7), total), ErrValueMismatch)
		require.NoError(t, CheckValue(big.NewInt(6), total))
	})

	t.Run("messages", func(t *testing.T) {
		require.Equal(t, "BatchTransfer: insufficient funds", ErrInsufficientFunds.Error())
		require.Equal(t, "BatchTransfer: value is not equal", ErrValueMismatch.Error())
		require.Equal(t, "BatchTransfer: array length inconsistent", ErrArrayLengthInconsistent.Error())
		require.Equal(t, "BatchTransfer: insufficient allowance", ErrInsufficientAllowance.Error())
	})

	t.Run("token funding", func(t *testing.T) {
		var (
			token = util.Uint160{7}
			from  = util.Uint160{8}
			ti    = &testInv{res: make(map[string]*result.Invoke)}
		)

		ti.res["balanceOf"] = halt(stackitem.Make(10))
		ti.res["allowance"] = halt(stackitem.Make(5))

		require.NoError(t, p.CheckTokenFunding(ti, token, from, big.NewInt(5)))
		require.ErrorIs(t, p.CheckTokenFunding(ti, token, from, big.NewInt(6)), ErrInsufficientAllowance)
		require.ErrorIs(t, p.CheckTokenFunding(ti, token, from, big.NewInt(11)), ErrInsufficientBalance)

		ti.err = errors.New("bad")
		require.Error(t, p.CheckTokenFunding(ti, token, from, big.NewInt(1)))
	})
}
