package application

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mtc-sys/mtc-go/codec"
	"github.com/mtc-sys/mtc-go/mtc"
)

const (
	windowFileName     = "signed-validity-window"
	assertionsFileName = "assertions"
	latestFileName     = "latest"
)

// Publication is the on-disk layout consumed by relying-party
// fetchers:
//
//	<root>/batches/<b>/signed-validity-window
//	<root>/batches/<b>/assertions
//	<root>/batches/latest
type Publication struct {
	Root string
}

func (p Publication) batchesDir() string {
	return filepath.Join(p.Root, "batches")
}

// BatchDir returns the directory of one batch.
func (p Publication) BatchDir(batchNumber uint32) string {
	return filepath.Join(p.batchesDir(), strconv.FormatUint(uint64(batchNumber), 10))
}

// SaveBatch publishes one issued batch and repoints latest at it.
func (p Publication) SaveBatch(batchNumber uint32, window *mtc.SignedValidityWindow,
	assertions mtc.Assertions) error {
	dir := p.BatchDir(batchNumber)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, windowFileName), window.Bytes(), 0644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, assertionsFileName), assertions.Bytes(), 0644); err != nil {
		return err
	}
	latest := strconv.FormatUint(uint64(batchNumber), 10) + "\n"
	return os.WriteFile(filepath.Join(p.batchesDir(), latestFileName), []byte(latest), 0644)
}

// LatestBatchNumber reads the latest pointer. ok is false when no
// batch has been published yet.
func (p Publication) LatestBatchNumber() (batchNumber uint32, ok bool, err error) {
	data, err := os.ReadFile(filepath.Join(p.batchesDir(), latestFileName))
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, false, fmt.Errorf("Malformed latest pointer: %v", err)
	}
	return uint32(n), true, nil
}

// ReadSignedValidityWindow reads and parses a published batch's
// signed validity window.
func (p Publication) ReadSignedValidityWindow(batchNumber uint32) (*mtc.SignedValidityWindow, error) {
	data, err := os.ReadFile(filepath.Join(p.BatchDir(batchNumber), windowFileName))
	if err != nil {
		return nil, err
	}
	window, _, err := mtc.ParseSignedValidityWindow(data)
	return window, err
}

// ReadAssertions reads and parses a published batch's assertion list.
func (p Publication) ReadAssertions(batchNumber uint32) (mtc.Assertions, error) {
	data, err := os.ReadFile(filepath.Join(p.BatchDir(batchNumber), assertionsFileName))
	if err != nil {
		return nil, err
	}
	assertions, err := mtc.ParseAssertions(codec.NewStream(data))
	if err != nil {
		return nil, err
	}
	return assertions, nil
}
