/*
Package batchtransfer implements BatchTransfer contract which distributes
funds of a single caller between many recipients within one transaction.

Contract supports two kinds of assets. Native GAS is paid by a regular
GAS transfer to the contract address with the batch description in the data
argument, see batchconst.KindEqual and batchconst.KindVarying. The contract
forwards the whole payment to the recipients in the same transaction.
Any NEP-17 token exposing `allowance` and `transferFrom` methods is paid
with TransferToken and TransferTokenVarying methods from the allowance the
caller has given to the contract.

Every batch is atomic: the first failed check or transfer aborts the
transaction and reverts all the transfers made before. Failure reasons are
listed in batchconst package. The contract does not keep any funds between
transactions.

Number of recipients in a batch is limited by the value returned from
MaxBatchSize method. The limit is set on deployment and can be changed by
the committee.

# Contract notifications

BatchTransfer notification. This notification is produced when a batch is
committed. The asset is GAS contract address for GAS batches.

	BatchTransfer:
	  - name: from
	    type: Hash160
	  - name: asset
	    type: Hash160
	  - name: count
	    type: Integer
	  - name: total
	    type: Integer
*/
package batchtransfer

/*
Contract storage model.

# Summary
Key-value storage format:
  - 'maxBatchSize' -> int
    maximum number of recipients in a single batch
*/
