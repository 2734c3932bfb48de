/*
Package allowancetoken implements a NEP-17 token with ERC20-like allowances.
Spender of `transferFrom` is the contract calling it. Transfers to blocked
accounts make `transferFrom` return false.
*/
package allowancetoken

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

const (
	ErrInsufficientAllowance = "ERC20: insufficient allowance"
	ErrInsufficientBalance   = "ERC20: transfer amount exceeds balance"
	ErrNegativeAmount        = "ERC20: negative amount"
)

const (
	symbol   = "TEST"
	decimals = 8

	supplyKey       = "supply"
	balancePrefix   = 'b'
	allowancePrefix = 'a'
	blockedPrefix   = 'x'
)

// nolint:unused
func _deploy(data any, isUpdate bool) {
	if isUpdate {
		return
	}

	args := data.([]any)
	owner := args[0].(interop.Hash160)
	supply := args[1].(int)

	ctx := storage.GetContext()
	storage.Put(ctx, supplyKey, supply)
	storage.Put(ctx, balanceKey(owner), supply)
}

func Symbol() string {
	return symbol
}

func Decimals() int {
	return decimals
}

func TotalSupply() int {
	return getInt(storage.GetReadOnlyContext(), supplyKey)
}

func BalanceOf(account interop.Hash160) int {
	return getInt(storage.GetReadOnlyContext(), balanceKey(account))
}

func Transfer(from, to interop.Hash160, amount int, data any) bool {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}
	if len(to) != interop.Hash160Len {
		return false
	}
	if !runtime.CheckWitness(from) && !runtime.GetCallingScriptHash().Equals(from) {
		return false
	}

	ctx := storage.GetContext()
	if getInt(ctx, balanceKey(from)) < amount {
		return false
	}

	move(ctx, from, to, amount, data)
	return true
}

// Approve sets amount of owner's tokens spender is allowed to transfer.
func Approve(owner, spender interop.Hash160, amount int) bool {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}
	if !runtime.CheckWitness(owner) {
		return false
	}

	storage.Put(storage.GetContext(), allowanceKey(owner, spender), amount)
	runtime.Notify("Approval", owner, spender, amount)
	return true
}

func Allowance(owner, spender interop.Hash160) int {
	return getInt(storage.GetReadOnlyContext(), allowanceKey(owner, spender))
}

// TransferFrom transfers tokens of from account using allowance given to the
// calling contract.
func TransferFrom(from, to interop.Hash160, amount int, data any) bool {
	if amount < 0 {
		panic(ErrNegativeAmount)
	}

	ctx := storage.GetContext()
	spender := runtime.GetCallingScriptHash()

	allowed := getInt(ctx, allowanceKey(from, spender))
	if allowed < amount {
		panic(ErrInsufficientAllowance)
	}

	if storage.Get(ctx, blockedKey(to)) != nil {
		return false
	}

	if getInt(ctx, balanceKey(from)) < amount {
		panic(ErrInsufficientBalance)
	}

	storage.Put(ctx, allowanceKey(from, spender), allowed-amount)
	move(ctx, from, to, amount, data)
	return true
}

// SetBlocked makes transfers to the account fail.
func SetBlocked(account interop.Hash160, blocked bool) {
	ctx := storage.GetContext()
	if blocked {
		storage.Put(ctx, blockedKey(account), []byte{1})
	} else {
		storage.Delete(ctx, blockedKey(account))
	}
}

func move(ctx storage.Context, from, to interop.Hash160, amount int, data any) {
	storage.Put(ctx, balanceKey(from), getInt(ctx, balanceKey(from))-amount)
	storage.Put(ctx, balanceKey(to), getInt(ctx, balanceKey(to))+amount)

	runtime.Notify("Transfer", from, to, amount)

	if management.GetContract(to) != nil {
		contract.Call(to, "onNEP17Payment", contract.All, from, amount, data)
	}
}

func getInt(ctx storage.Context, key any) int {
	v := storage.Get(ctx, key)
	if v == nil {
		return 0
	}
	return v.(int)
}

func balanceKey(account interop.Hash160) []byte {
	return append([]byte{balancePrefix}, account...)
}

func allowanceKey(owner, spender interop.Hash160) []byte {
	return append(append([]byte{allowancePrefix}, owner...), spender...)
}

func blockedKey(account interop.Hash160) []byte {
	return append([]byte{blockedPrefix}, account...)
}
