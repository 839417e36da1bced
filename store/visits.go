package store

import (
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/visitkit/visitk"
)

const (
	visitPrefix       = "visit:"
	restorationSuffix = "rid"
	seqKey            = "visit_seq"
)

// VisitStore records finished visits and the restoration identifier of each location
type VisitStore struct {
	Store    *badger.DB
	filepath string
	seq      *badger.Sequence
}

// NewVisitStore for visit history
func NewVisitStore(filepath string) *VisitStore {
	return &VisitStore{filepath: filepath}
}

// Init the visit storage
func (s *VisitStore) Init() error {
	var err error

	if err = os.MkdirAll(s.filepath, 0755); err != nil {
		return err
	}

	opts := badger.DefaultOptions(s.filepath).WithLogger(nil)
	s.Store, err = badger.Open(opts)

	if errors.Is(err, badger.ErrTruncateNeeded) {
		log.Warn().Msg("there was a failure re-opening database, trying to recover")
		opts.Truncate = true
		s.Store, err = badger.Open(opts)
	}

	if err != nil {
		return err
	}

	s.seq, err = s.Store.GetSequence([]byte(seqKey), 100)
	return errors.Wrap(err, "getting visit sequence")
}

// AddVisit stores the record, assigning it an id if it has none
func (s *VisitStore) AddVisit(record *visitk.VisitRecord) error {
	if record.ID == nil {
		id := uuid.New()
		record.ID = id[:]
	}
	if record.EndedTime.IsZero() {
		record.EndedTime = time.Now()
	}

	enc, err := EncodeStruct(record)
	if err != nil {
		return errors.Wrap(err, "encoding visit")
	}

	next, err := s.seq.Next()
	if err != nil {
		return errors.Wrap(err, "next visit sequence")
	}

	err = s.Store.Update(func(txn *badger.Txn) error {
		return txn.Set(SeqKey(visitPrefix, next), enc)
	})
	// TODO: retry on transaction conflict errors
	return errors.Wrap(err, "adding visit")
}

// SetRestorationIdentifier remembers the restoration id recorded for location
func (s *VisitStore) SetRestorationIdentifier(location, restorationIdentifier string) error {
	if restorationIdentifier == "" {
		return nil
	}
	err := s.Store.Update(func(txn *badger.Txn) error {
		return txn.Set(MakeKey([]byte(location), restorationSuffix), []byte(restorationIdentifier))
	})
	return errors.Wrap(err, "setting restoration identifier")
}

// RestorationIdentifier for location, empty if none was recorded
func (s *VisitStore) RestorationIdentifier(location string) (string, error) {
	var restorationIdentifier string
	err := s.Store.View(func(txn *badger.Txn) error {
		item, err := txn.Get(MakeKey([]byte(location), restorationSuffix))
		if err == badger.ErrKeyNotFound {
			return nil
		} else if err != nil {
			return err
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		restorationIdentifier = string(val)
		return nil
	})
	return restorationIdentifier, errors.Wrap(err, "getting restoration identifier")
}

// Visits returns up to limit records in the order they were added, limit <= 0 returns all
func (s *VisitStore) Visits(limit int) ([]*visitk.VisitRecord, error) {
	records := make([]*visitk.VisitRecord, 0)
	err := s.Store.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(visitPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(records) >= limit {
				return nil
			}
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			record := &visitk.VisitRecord{}
			if err := DecodeStruct(val, record); err != nil {
				log.Error().Err(err).Msg("failed to decode visit record")
				continue
			}
			records = append(records, record)
		}
		return nil
	})
	return records, errors.Wrap(err, "reading visits")
}

// Close the visit store
func (s *VisitStore) Close() error {
	if s.seq != nil {
		if err := s.seq.Release(); err != nil {
			log.Warn().Err(err).Msg("failed to release visit sequence")
		}
	}
	return s.Store.Close()
}
