package batchtransfer

import (
	"github.com/nspcc-dev/batchtransfer-contract/common"
	"github.com/nspcc-dev/batchtransfer-contract/contracts/batchtransfer/batchconst"
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const maxBatchSizeKey = "maxBatchSize"

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		args := data.([]any)
		version := args[len(args)-1].(int)

		common.CheckVersion(version)
		return
	}

	limit := batchconst.DefaultMaxBatchSize
	if data != nil {
		args := data.([]any)
		if len(args) > 0 && args[0] != nil {
			limit = args[0].(int)
		}
	}

	checkBatchSizeLimit(limit)
	storage.Put(storage.GetContext(), maxBatchSizeKey, limit)

	runtime.Log("batch transfer contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(nefFile, manifest []byte, data any) {
	if !common.HasUpdateAccess() {
		panic("only committee can update contract")
	}

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, nefFile, manifest, common.AppendVersion(data))
	runtime.Log("batch transfer contract updated")
}

// OnNEP17Payment is a callback for NEP-17 compatible native GAS contract. It
// distributes received GAS between the recipients listed in data within the
// same transaction, so the contract never keeps the payment.
//
// Data must be either [KindEqual, recipients, amountEach] or
// [KindVarying, recipients, amounts], see batchconst package. Received amount
// must be exactly the sum to be paid: underpayment fails with
// ErrInsufficientFunds, overpayment fails with ErrValueMismatch. Any failure
// reverts the whole GAS transfer to the contract.
//
// Produces BatchTransfer notification with GAS contract address as an asset.
func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	caller := runtime.GetCallingScriptHash()
	if !caller.Equals(gas.Hash) {
		panic(batchconst.ErrUnsupportedPayment)
	}

	if data == nil {
		panic(batchconst.ErrInvalidPaymentData)
	}

	args := data.([]any)
	if len(args) != 3 {
		panic(batchconst.ErrInvalidPaymentData)
	}

	var (
		recipients = args[1].([]interop.Hash160)
		amounts    []int
		total      int
	)

	switch args[0].(int) {
	case batchconst.KindEqual:
		amounts, total = equalAmounts(recipients, args[2].(int))
	case batchconst.KindVarying:
		amounts = args[2].([]int)
		total = varyingAmounts(recipients, amounts)
	default:
		panic(batchconst.ErrInvalidPaymentData)
	}

	if amount < total {
		panic(batchconst.ErrInsufficientFunds)
	}
	if amount != total {
		panic(batchconst.ErrValueMismatch)
	}

	self := runtime.GetExecutingScriptHash()
	for i := range recipients {
		if !gas.Transfer(self, recipients[i], amounts[i], nil) {
			panic(batchconst.ErrTransferFailed)
		}
	}

	runtime.Notify("BatchTransfer", from, interop.Hash160(gas.Hash), len(recipients), total)
}

// TransferToken transfers the same amount of the token to each recipient
// from the account of the caller. Tokens are moved with `transferFrom`
// method of the token contract, so the caller must approve at least
// amount*len(recipients) to the BatchTransfer contract beforehand. It can be
// invoked only by the owner of the tokens.
//
// Produces BatchTransfer notification.
func TransferToken(from, token interop.Hash160, recipients []interop.Hash160, amount int) {
	common.CheckOwnerWitness(from)
	checkToken(token)

	amounts, total := equalAmounts(recipients, amount)

	transferToken(from, token, recipients, amounts, total)
}

// TransferTokenVarying is like TransferToken but transfers amounts[i] to
// recipients[i]. Lengths of recipients and amounts must be equal.
//
// Produces BatchTransfer notification.
func TransferTokenVarying(from, token interop.Hash160, recipients []interop.Hash160, amounts []int) {
	common.CheckOwnerWitness(from)
	checkToken(token)

	total := varyingAmounts(recipients, amounts)

	transferToken(from, token, recipients, amounts, total)
}

// MaxBatchSize returns the maximum number of recipients in a single batch.
func MaxBatchSize() int {
	return getMaxBatchSize(storage.GetReadOnlyContext())
}

// SetMaxBatchSize sets the maximum number of recipients in a single batch.
// The value must be in [1, MaxBatchSizeLimit] range. It can be invoked only
// by committee.
func SetMaxBatchSize(n int) {
	common.CheckCommitteeWitness()
	checkBatchSizeLimit(n)

	storage.Put(storage.GetContext(), maxBatchSizeKey, n)
	runtime.Log("max batch size updated")
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func transferToken(from, token interop.Hash160, recipients []interop.Hash160, amounts []int, total int) {
	self := runtime.GetExecutingScriptHash()

	allowance := contract.Call(token, "allowance", contract.ReadStates, from, self).(int)
	if allowance < total {
		panic(batchconst.ErrInsufficientAllowance)
	}

	for i := range recipients {
		ok := contract.Call(token, "transferFrom", contract.All, from, recipients[i], amounts[i], nil).(bool)
		if !ok {
			panic(batchconst.ErrTransferFailed)
		}
	}

	runtime.Notify("BatchTransfer", from, token, len(recipients), total)
}

// equalAmounts checks the batch paying amount to every recipient and returns
// per-recipient amounts along with their sum.
func equalAmounts(recipients []interop.Hash160, amount int) ([]int, int) {
	checkRecipients(recipients)

	if amount < 0 {
		panic(batchconst.ErrNegativeAmount)
	}

	amounts := make([]int, len(recipients))
	for i := range amounts {
		amounts[i] = amount
	}

	return amounts, amount * len(recipients)
}

// varyingAmounts checks the batch paying amounts[i] to recipients[i] and
// returns the sum of the amounts.
func varyingAmounts(recipients []interop.Hash160, amounts []int) int {
	if len(recipients) != len(amounts) {
		panic(batchconst.ErrArrayLengthInconsistent)
	}

	checkRecipients(recipients)

	total := 0
	for i := range amounts {
		if amounts[i] < 0 {
			panic(batchconst.ErrNegativeAmount)
		}
		total += amounts[i]
	}

	return total
}

func checkRecipients(recipients []interop.Hash160) {
	n := len(recipients)
	if n == 0 {
		panic(batchconst.ErrEmptyBatch)
	}

	if n > getMaxBatchSize(storage.GetReadOnlyContext()) {
		panic(batchconst.ErrBatchTooLarge)
	}

	self := runtime.GetExecutingScriptHash()
	for i := range recipients {
		if len(recipients[i]) != interop.Hash160Len || recipients[i].Equals(self) {
			panic(batchconst.ErrInvalidRecipient)
		}
	}
}

func checkToken(token interop.Hash160) {
	if len(token) != interop.Hash160Len || token.Equals(runtime.GetExecutingScriptHash()) {
		panic(batchconst.ErrInvalidToken)
	}
}

func checkBatchSizeLimit(n int) {
	if n < 1 || n > batchconst.MaxBatchSizeLimit {
		panic(batchconst.ErrInvalidBatchSize)
	}
}

func getMaxBatchSize(ctx storage.Context) int {
	v := storage.Get(ctx, maxBatchSizeKey)
	if v == nil {
		return batchconst.DefaultMaxBatchSize
	}

	return v.(int)
}
