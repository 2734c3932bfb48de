package batchtransfer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/batchtransfer-contract/contracts/batchtransfer/batchconst"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/nep17"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Errors returned by preflight checks. Messages match the ones thrown by the
// contract.
var (
	ErrInsufficientFunds       = errors.New(batchconst.ErrInsufficientFunds)
	ErrValueMismatch           = errors.New(batchconst.ErrValueMismatch)
	ErrArrayLengthInconsistent = errors.New(batchconst.ErrArrayLengthInconsistent)
	ErrInsufficientAllowance   = errors.New(batchconst.ErrInsufficientAllowance)
	ErrEmptyBatch              = errors.New(batchconst.ErrEmptyBatch)
	ErrBatchTooLarge           = errors.New(batchconst.ErrBatchTooLarge)
	ErrInvalidRecipient        = errors.New(batchconst.ErrInvalidRecipient)
	ErrNegativeAmount          = errors.New(batchconst.ErrNegativeAmount)

	// ErrInsufficientBalance is returned when the token balance of the sender
	// doesn't cover the batch. Contract doesn't check it, token does.
	ErrInsufficientBalance = errors.New("BatchTransfer: insufficient token balance")
)

// Preflight checks batches against the contract rules before sending them,
// so a batch that would fault is never paid for.
type Preflight struct {
	// Contract is the address of BatchTransfer contract.
	Contract util.Uint160
	// MaxBatchSize is the current limit of recipients, see
	// [ContractReader.MaxBatchSize].
	MaxBatchSize int
}

// NewPreflight reads the current contract limits.
func NewPreflight(r *ContractReader) (*Preflight, error) {
	n, err := r.MaxBatchSize()
	if err != nil {
		return nil, fmt.Errorf("read max batch size: %w", err)
	}

	if !n.IsInt64() {
		return nil, fmt.Errorf("invalid max batch size %s", n)
	}

	return &Preflight{
		Contract:     r.hash,
		MaxBatchSize: int(n.Int64()),
	}, nil
}

// ValidateEqual checks the batch transferring amount to each recipient and
// returns the total amount to be paid.
func (p *Preflight) ValidateEqual(recipients []util.Uint160, amount *big.Int) (*big.Int, error) {
	err := p.checkRecipients(recipients)
	if err != nil {
		return nil, err
	}

	if amount.Sign() < 0 {
		return nil, ErrNegativeAmount
	}

	return new(big.Int).Mul(amount, big.NewInt(int64(len(recipients)))), nil
}

// ValidateVarying checks the batch transferring amounts[i] to recipients[i]
// and returns the total amount to be paid.
func (p *Preflight) ValidateVarying(recipients []util.Uint160, amounts []*big.Int) (*big.Int, error) {
	if len(recipients) != len(amounts) {
		return nil, ErrArrayLengthInconsistent
	}

	err := p.checkRecipients(recipients)
	if err != nil {
		return nil, err
	}

	for i := range amounts {
		if amounts[i].Sign() < 0 {
			return nil, fmt.Errorf("%w: #%d", ErrNegativeAmount, i)
		}
	}

	return sum(amounts), nil
}

// CheckValue checks GAS amount attached to the batch with the given total.
func CheckValue(value, total *big.Int) error {
	switch value.Cmp(total) {
	case -1:
		return ErrInsufficientFunds
	case 1:
		return ErrValueMismatch
	default:
		return nil
	}
}

func (p *Preflight) checkRecipients(recipients []util.Uint160) error {
	if len(recipients) == 0 {
		return ErrEmptyBatch
	}

	if len(recipients) > p.MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(recipients), p.MaxBatchSize)
	}

	for i := range recipients {
		if recipients[i].Equals(p.Contract) {
			return fmt.Errorf("%w: #%d is the contract itself", ErrInvalidRecipient, i)
		}
	}

	return nil
}

// CheckTokenFunding checks that from account has at least total tokens and
// allows the contract to spend them.
func (p *Preflight) CheckTokenFunding(inv Invoker, token, from util.Uint160, total *big.Int) error {
	balance, err := nep17.NewReader(inv, token).BalanceOf(from)
	if err != nil {
		return fmt.Errorf("read token balance: %w", err)
	}

	if balance.Cmp(total) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrInsufficientBalance, balance, total)
	}

	allowance, err := unwrap.BigInt(inv.Call(token, "allowance", from, p.Contract))
	if err != nil {
		return fmt.Errorf("read token allowance: %w", err)
	}

	if allowance.Cmp(total) < 0 {
		return fmt.Errorf("%w: %s < %s", ErrInsufficientAllowance, allowance, total)
	}

	return nil
}
