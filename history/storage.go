package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/callebjorkell/smartcard-gateway/card"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/buntdb"
)

const keyPattern = "read:*"

var NotFoundErr = errors.New("read not found")

// breaks ties between reads that land on the same clock tick
var sequence uint32

// Record is a successful card read.
type Record struct {
	ID     string    `json:"id"`
	ATR    string    `json:"atr"`
	Reader string    `json:"reader"`
	ReadAt time.Time `json:"readAt"`
}

func (r Record) String() string {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("ID: %v, ATR: %v", r.ID, r.ATR)
	}
	return string(b)
}

func FromReading(r card.Reading) Record {
	return Record{
		ID:     fmt.Sprintf("%020d-%04d", r.ReadAt.UnixNano(), atomic.AddUint32(&sequence, 1)%10000),
		ATR:    card.FormatATR(r.ATR),
		Reader: r.Reader,
		ReadAt: r.ReadAt.UTC(),
	}
}

type DB struct {
	instance *buntdb.DB
}

// Open opens (or creates) the history file at path. ":memory:" keeps the history in memory.
func Open(path string) (*DB, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &DB{instance: db}, nil
}

func (db *DB) Close() error {
	return db.instance.Close()
}

func (db *DB) Store(r Record) error {
	return db.instance.Update(func(tx *buntdb.Tx) error {
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, _, err := tx.Set(getReadKey(r.ID), string(data), nil); err != nil {
			return err
		}
		return nil
	})
}

func (db *DB) Read(id string) (Record, error) {
	var r Record
	err := db.instance.View(func(tx *buntdb.Tx) error {
		s, err := tx.Get(getReadKey(id))
		if err == buntdb.ErrNotFound {
			return NotFoundErr
		}
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(s), &r)
	})
	return r, err
}

func (db *DB) Delete(id string) error {
	return db.instance.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(getReadKey(id))
		if err == buntdb.ErrNotFound {
			return NotFoundErr
		}
		return err
	})
}

// Recent returns at most limit records, newest first. A limit of 0 or less returns everything.
func (db *DB) Recent(limit int) ([]Record, error) {
	records := make([]Record, 0)
	err := db.instance.View(func(tx *buntdb.Tx) error {
		var decodeErr error
		err := tx.DescendKeys(keyPattern, func(key, value string) bool {
			var r Record
			if decodeErr = json.Unmarshal([]byte(value), &r); decodeErr != nil {
				return false
			}
			records = append(records, r)
			return limit <= 0 || len(records) < limit
		})
		if err != nil {
			return err
		}
		return decodeErr
	})
	return records, err
}

// Listener stores every reading it gets. Store failures are only logged, the card read
// itself still succeeds.
func (db *DB) Listener() func(card.Reading) {
	return func(r card.Reading) {
		rec := FromReading(r)
		if err := db.Store(rec); err != nil {
			log.Warnf("Could not store read %v: %v", rec.ID, err)
			return
		}
		log.Debugf("Stored read %v", rec.ID)
	}
}

func getReadKey(id string) string {
	return fmt.Sprintf("read:%v", id)
}
