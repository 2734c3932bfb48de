/*
Package batchconst contains constants of the BatchTransfer contract shared
between the contract itself and off-chain code working with it.
*/
package batchconst

// Kinds of the BatchTransfer GAS payment. Kind is the first element of the
// data argument passed along with the GAS transfer to the contract.
const (
	// KindEqual pays the same amount to every recipient. Payment data is
	// [KindEqual, recipients, amountEach].
	KindEqual = 0
	// KindVarying pays individual amounts. Payment data is
	// [KindVarying, recipients, amounts].
	KindVarying = 1
)

const (
	// DefaultMaxBatchSize is a recipient count bound set on deployment when no
	// explicit value is provided.
	DefaultMaxBatchSize = 100
	// MaxBatchSizeLimit is the largest recipient count bound that can be set.
	// Bigger batches do not fit into NeoVM stack limits.
	MaxBatchSizeLimit = 500
)

// Failure reasons thrown by the contract.
const (
	ErrInsufficientFunds       = "BatchTransfer: insufficient funds"
	ErrValueMismatch           = "BatchTransfer: value is not equal"
	ErrArrayLengthInconsistent = "BatchTransfer: array length inconsistent"
	ErrTransferFailed          = "BatchTransfer: transfer failed"
	ErrInsufficientAllowance   = "BatchTransfer: insufficient allowance"

	ErrEmptyBatch         = "BatchTransfer: empty recipient list"
	ErrBatchTooLarge      = "BatchTransfer: too many recipients"
	ErrInvalidRecipient   = "BatchTransfer: invalid recipient"
	ErrNegativeAmount     = "BatchTransfer: negative amount"
	ErrInvalidToken       = "BatchTransfer: invalid token"
	ErrInvalidPaymentData = "BatchTransfer: invalid payment data"
	ErrUnsupportedPayment = "BatchTransfer: only GAS payments are accepted"
	ErrInvalidBatchSize   = "BatchTransfer: invalid batch size limit"
)

// BatchTransferEvent is a name of the notification thrown on every committed
// batch.
const BatchTransferEvent = "BatchTransfer"
