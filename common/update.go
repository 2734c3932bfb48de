package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/neo"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// ErrCommitteeWitnessFailed appears when the method must be called by the
// committee but was not.
const ErrCommitteeWitnessFailed = "committee witness check failed"

// CommitteeAddress returns `M = N/2+1` multisignature address of the current
// Neo committee.
func CommitteeAddress() interop.Hash160 {
	committee := neo.GetCommittee()
	return contract.CreateMultisigAccount(len(committee)/2+1, committee)
}

// HasUpdateAccess returns true if contract can be updated.
func HasUpdateAccess() bool {
	return runtime.CheckWitness(CommitteeAddress())
}

// CheckCommitteeWitness panics with ErrCommitteeWitnessFailed message if the
// transaction is not signed by the committee.
func CheckCommitteeWitness() {
	if !HasUpdateAccess() {
		panic(ErrCommitteeWitnessFailed)
	}
}
