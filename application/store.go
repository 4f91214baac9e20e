package application

import (
	"strconv"

	"github.com/mtc-sys/mtc-go/codec"
	"github.com/mtc-sys/mtc-go/mtc"
	"github.com/mtc-sys/mtc-go/storage/kv"
)

// Store records issued batches in a kv database so the CA can pick up
// where it left off without re-reading the publication tree. Each
// batch is written atomically: its signed window, its assertion list
// and the latest pointer go into one kv batch.
type Store struct {
	db kv.DB
}

// NewStore wraps a kv database as a batch store.
func NewStore(db kv.DB) *Store {
	return &Store{db: db}
}

func batchKey(batchNumber uint32, suffix string) []byte {
	return []byte("batch:" + strconv.FormatUint(uint64(batchNumber), 10) + ":" + suffix)
}

var latestKey = []byte("latest")

// PutBatch records one issued batch.
func (s *Store) PutBatch(batchNumber uint32, window *mtc.SignedValidityWindow,
	assertions mtc.Assertions) error {
	wb := s.db.NewBatch()
	wb.Put(batchKey(batchNumber, "window"), window.Bytes())
	wb.Put(batchKey(batchNumber, "assertions"), assertions.Bytes())
	wb.Put(latestKey, []byte(strconv.FormatUint(uint64(batchNumber), 10)))
	return s.db.Write(wb)
}

// SignedValidityWindow returns the recorded window of one batch.
func (s *Store) SignedValidityWindow(batchNumber uint32) (*mtc.SignedValidityWindow, error) {
	data, err := s.db.Get(batchKey(batchNumber, "window"))
	if err != nil {
		return nil, err
	}
	window, _, err := mtc.ParseSignedValidityWindow(data)
	return window, err
}

// Assertions returns the recorded assertion list of one batch.
func (s *Store) Assertions(batchNumber uint32) (mtc.Assertions, error) {
	data, err := s.db.Get(batchKey(batchNumber, "assertions"))
	if err != nil {
		return nil, err
	}
	return mtc.ParseAssertions(codec.NewStream(data))
}

// LatestBatchNumber returns the newest recorded batch. ok is false
// when the store is empty.
func (s *Store) LatestBatchNumber() (batchNumber uint32, ok bool, err error) {
	data, err := s.db.Get(latestKey)
	if err == s.db.ErrNotFound() {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	n, err := strconv.ParseUint(string(data), 10, 32)
	if err != nil {
		return 0, false, err
	}
	return uint32(n), true, nil
}
