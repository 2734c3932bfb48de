package batchtransfer

import (
	"math/big"

	"github.com/nspcc-dev/batchtransfer-contract/contracts/batchtransfer/batchconst"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// EqualPaymentData returns data of GAS payment to the contract which makes it
// transfer amount to each of the recipients.
func EqualPaymentData(recipients []util.Uint160, amount *big.Int) []any {
	return []any{int64(batchconst.KindEqual), hashesToParams(recipients), amount}
}

// VaryingPaymentData returns data of GAS payment to the contract which makes
// it transfer amounts[i] to recipients[i].
func VaryingPaymentData(recipients []util.Uint160, amounts []*big.Int) []any {
	ams := make([]any, len(amounts))
	for i := range amounts {
		ams[i] = amounts[i]
	}

	return []any{int64(batchconst.KindVarying), hashesToParams(recipients), ams}
}

func hashesToParams(hs []util.Uint160) []any {
	res := make([]any, len(hs))
	for i := range hs {
		res[i] = hs[i]
	}
	return res
}

// Payer sends GAS batches through the contract. Each batch is a single GAS
// transfer to the contract with the payment data describing recipients.
type Payer struct {
	gas      *nep17.Token
	contract util.Uint160
}

// NewPayer creates Payer sending GAS to the contract with the given hash on
// behalf of the given Actor.
func NewPayer(actor nep17.Actor, contract util.Uint160) *Payer {
	return &Payer{
		gas:      gas.New(actor),
		contract: contract,
	}
}

// PayEqual sends amount*len(recipients) GAS from the sender account to the
// contract which transfers amount to each recipient. The values returned are
// transaction hash, its ValidUntilBlock value and error if any.
func (p *Payer) PayEqual(from util.Uint160, recipients []util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	total := new(big.Int).Mul(amount, big.NewInt(int64(len(recipients))))
	return p.gas.Transfer(from, p.contract, total, EqualPaymentData(recipients, amount))
}

// PayEqualTransaction is similar to PayEqual but returns signed transaction
// without sending it.
func (p *Payer) PayEqualTransaction(from util.Uint160, recipients []util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	total := new(big.Int).Mul(amount, big.NewInt(int64(len(recipients))))
	return p.gas.TransferTransaction(from, p.contract, total, EqualPaymentData(recipients, amount))
}

// PayVarying sends sum(amounts) GAS from the sender account to the contract
// which transfers amounts[i] to recipients[i].
func (p *Payer) PayVarying(from util.Uint160, recipients []util.Uint160, amounts []*big.Int) (util.Uint256, uint32, error) {
	return p.gas.Transfer(from, p.contract, sum(amounts), VaryingPaymentData(recipients, amounts))
}

// PayVaryingTransaction is similar to PayVarying but returns signed
// transaction without sending it.
func (p *Payer) PayVaryingTransaction(from util.Uint160, recipients []util.Uint160, amounts []*big.Int) (*transaction.Transaction, error) {
	return p.gas.TransferTransaction(from, p.contract, sum(amounts), VaryingPaymentData(recipients, amounts))
}

func sum(amounts []*big.Int) *big.Int {
	res := new(big.Int)
	for i := range amounts {
		res.Add(res, amounts[i])
	}
	return res
}
