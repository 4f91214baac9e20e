package application

import (
	"fmt"
	"os"

	"github.com/mtc-sys/mtc-go/crypto/sign"
	"github.com/mtc-sys/mtc-go/mtc"
)

// Issuer runs the issuance pipeline for one CA: build the batch tree,
// rotate and sign the validity window, publish, and emit
// certificates on demand.
type Issuer struct {
	IssuerID    mtc.IssuerID
	WindowSize  int
	Key         sign.PrivateKey
	Publication Publication

	// Store is optional; when set, issued batches are also
	// recorded in the kv database.
	Store *Store
}

// NewIssuer assembles an issuer from its configuration and loaded key
// material.
func NewIssuer(conf *Config, key sign.PrivateKey) *Issuer {
	return &Issuer{
		IssuerID:    mtc.IssuerID(conf.IssuerID),
		WindowSize:  conf.WindowSize,
		Key:         key,
		Publication: Publication{Root: conf.PublicationRoot},
	}
}

// IssueBatch commits the assertion list as the given batch, signs the
// rotated validity window and publishes both. Batch numbers must be
// contiguous: for any batch after the first, the previous batch's
// signed window must already be published.
func (iss *Issuer) IssueBatch(assertions []mtc.Assertion, batchNumber uint32) (*mtc.SignedValidityWindow, error) {
	var previous *mtc.SignedValidityWindow
	if batchNumber > 0 {
		var err error
		previous, err = iss.Publication.ReadSignedValidityWindow(batchNumber - 1)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("Invalid batch number %d: previous batch not found", batchNumber)
		}
		if err != nil {
			return nil, err
		}
	}

	tree, err := mtc.BuildTree(assertions, iss.IssuerID, batchNumber)
	if err != nil {
		return nil, err
	}

	window, err := mtc.CreateSignedValidityWindow(tree.Root(), iss.IssuerID, batchNumber,
		iss.WindowSize, iss.Key, previous)
	if err != nil {
		return nil, err
	}

	if err := iss.Publication.SaveBatch(batchNumber, window, mtc.Assertions(assertions)); err != nil {
		return nil, err
	}
	if iss.Store != nil {
		if err := iss.Store.PutBatch(batchNumber, window, mtc.Assertions(assertions)); err != nil {
			return nil, err
		}
	}
	return window, nil
}

// NextBatchNumber returns the batch number the next issuance run
// should use: one past the published latest, or 0 for a fresh root.
func (iss *Issuer) NextBatchNumber() (uint32, error) {
	latest, ok, err := iss.Publication.LatestBatchNumber()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return latest + 1, nil
}

// Certificate re-reads a published batch and emits the certificate
// for the assertion at index.
func (iss *Issuer) Certificate(batchNumber uint32, index uint64) (*mtc.BikeshedCertificate, error) {
	assertions, err := iss.Publication.ReadAssertions(batchNumber)
	if err != nil {
		return nil, err
	}
	if index >= uint64(len(assertions)) {
		return nil, fmt.Errorf("Invalid assertion index %d for batch %d", index, batchNumber)
	}
	tree, err := mtc.BuildTree(assertions, iss.IssuerID, batchNumber)
	if err != nil {
		return nil, err
	}
	proof, err := mtc.CreateProof(tree, index)
	if err != nil {
		return nil, err
	}
	return mtc.CreateCertificate(assertions[index], proof)
}
