// Package mtc implements the Merkle Tree Certificate issuance core:
// the assertion wire model, the domain-separated SHA-256 batch tree,
// inclusion proofs and certificates, and the signed validity window
// that links successive batches.
//
// The package is synchronous and free of shared state apart from the
// process-wide validation toggle in package codec. Independent batches
// may be processed concurrently; within one batch, the node table is
// owned by a single execution.
package mtc
