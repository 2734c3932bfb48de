// Package batchtransfer contains RPC wrappers for BatchTransfer contract.
package batchtransfer

import (
	"errors"
	"fmt"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"math/big"
)

// BatchTransferEvent represents "BatchTransfer" event emitted by the contract.
type BatchTransferEvent struct {
	From util.Uint160
	Asset util.Uint160
	Count *big.Int
	Total *big.Int
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// MaxBatchSize invokes `maxBatchSize` method of contract.
func (c *ContractReader) MaxBatchSize() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "maxBatchSize"))
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// SetMaxBatchSize creates a transaction invoking `setMaxBatchSize` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetMaxBatchSize(n *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setMaxBatchSize", n)
}

// SetMaxBatchSizeTransaction creates a transaction invoking `setMaxBatchSize` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetMaxBatchSizeTransaction(n *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setMaxBatchSize", n)
}

// SetMaxBatchSizeUnsigned creates a transaction invoking `setMaxBatchSize` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetMaxBatchSizeUnsigned(n *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setMaxBatchSize", nil, n)
}

// TransferToken creates a transaction invoking `transferToken` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TransferToken(from util.Uint160, token util.Uint160, recipients []util.Uint160, amount *big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "transferToken", from, token, recipients, amount)
}

// TransferTokenTransaction creates a transaction invoking `transferToken` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TransferTokenTransaction(from util.Uint160, token util.Uint160, recipients []util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "transferToken", from, token, recipients, amount)
}

// TransferTokenUnsigned creates a transaction invoking `transferToken` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) TransferTokenUnsigned(from util.Uint160, token util.Uint160, recipients []util.Uint160, amount *big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "transferToken", nil, from, token, recipients, amount)
}

// TransferTokenVarying creates a transaction invoking `transferTokenVarying` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) TransferTokenVarying(from util.Uint160, token util.Uint160, recipients []util.Uint160, amounts []*big.Int) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "transferTokenVarying", from, token, recipients, amounts)
}

// TransferTokenVaryingTransaction creates a transaction invoking `transferTokenVarying` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) TransferTokenVaryingTransaction(from util.Uint160, token util.Uint160, recipients []util.Uint160, amounts []*big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "transferTokenVarying", from, token, recipients, amounts)
}

// TransferTokenVaryingUnsigned creates a transaction invoking `transferTokenVarying` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) TransferTokenVaryingUnsigned(from util.Uint160, token util.Uint160, recipients []util.Uint160, amounts []*big.Int) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "transferTokenVarying", nil, from, token, recipients, amounts)
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(nefFile []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", nefFile, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(nefFile []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, nefFile, manifest, data)
}

// BatchTransferEventsFromApplicationLog retrieves a set of all emitted events
// with "BatchTransfer" name from the provided [result.ApplicationLog].
func BatchTransferEventsFromApplicationLog(log *result.ApplicationLog) ([]*BatchTransferEvent, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*BatchTransferEvent
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != "BatchTransfer" {
				continue
			}
			event := new(BatchTransferEvent)
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize BatchTransferEvent from stackitem (execution #%d, event #%d): %w", i, j, err)
			}
			res = append(res, event)
		}
	}

	return res, nil
}

// FromStackItem converts provided [stackitem.Array] to BatchTransferEvent or
// returns an error if it's not possible to do to so.
func (e *BatchTransferEvent) FromStackItem(item *stackitem.Array) error {
	if item == nil {
		return errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 4 {
		return errors.New("wrong number of structure elements")
	}

	var (
		index = -1
		err error
	)
	index++
	e.From, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field From: %w", err)
	}

	index++
	e.Asset, err = func (item stackitem.Item) (util.Uint160, error) {
		b, err := item.TryBytes()
		if err != nil {
			return util.Uint160{}, err
		}
		u, err := util.Uint160DecodeBytesBE(b)
		if err != nil {
			return util.Uint160{}, err
		}
		return u, nil
	} (arr[index])
	if err != nil {
		return fmt.Errorf("field Asset: %w", err)
	}

	index++
	e.Count, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Count: %w", err)
	}

	index++
	e.Total, err = arr[index].TryInteger()
	if err != nil {
		return fmt.Errorf("field Total: %w", err)
	}

	return nil
}
