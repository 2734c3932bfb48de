package payee

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// ErrRejected is thrown by OnNEP17Payment when payments are rejected.
const ErrRejected = "payee: payment rejected"

const (
	lastCallKey = "call"
	rejectKey   = "reject"
)

type Call struct {
	From   interop.Hash160
	Amount int
	Data   any
}

func OnNEP17Payment(from interop.Hash160, amount int, data any) {
	ctx := storage.GetContext()
	if storage.Get(ctx, rejectKey) != nil {
		panic(ErrRejected)
	}

	storage.Put(ctx, lastCallKey, std.Serialize(Call{
		From:   from,
		Amount: amount,
		Data:   data,
	}))
}

func SetReject(reject bool) {
	ctx := storage.GetContext()
	if reject {
		storage.Put(ctx, rejectKey, []byte{1})
	} else {
		storage.Delete(ctx, rejectKey)
	}
}

func Get() Call {
	val := storage.Get(storage.GetReadOnlyContext(), lastCallKey)
	if val == nil {
		return Call{}
	}
	return std.Deserialize(val.([]byte)).(Call)
}
