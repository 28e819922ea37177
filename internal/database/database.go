// Package database defines the write-only global-database collaborator
// contract: a place to durably record what each compilation observed
// (inputs hashed, outputs produced, diagnostics raised) across runs, the
// way Wake's build database records job provenance for reuse. The core
// compiler never reads it back — it only ever calls Record.
package database

import (
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// Entry is one recorded fact about a compilation: a source file's digest,
// the artifact or diagnostic count it produced, and when.
type Entry struct {
	SessionID  string
	FilePath   string
	Digest     string
	DiagCount  int
	OK         bool
	RecordedAt time.Time
}

// Sink is the write-only contract the core pipeline depends on. cmd/loomc
// wires a concrete implementation in; the core package never constructs
// one itself.
type Sink interface {
	Record(entry Entry) error
}

var bucketName = []byte("compilations")

// BoltSink persists entries to a local bbolt file, keyed by
// "sessionID/filePath": recording the same file twice within one session
// overwrites the earlier entry, while each new session adds its own keys.
type BoltSink struct {
	db *bbolt.DB
}

// OpenBoltSink opens (creating if absent) a bbolt database at path.
func OpenBoltSink(path string) (*BoltSink, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "database: open %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database: create bucket")
	}
	return &BoltSink{db: db}, nil
}

func (s *BoltSink) Record(entry Entry) error {
	key := []byte(entry.SessionID + "/" + entry.FilePath)
	val, err := marshalEntry(entry)
	if err != nil {
		return errors.Wrap(err, "database: marshal entry")
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, val)
	})
	return errors.Wrap(err, "database: put entry")
}

func (s *BoltSink) Close() error { return s.db.Close() }

// NoopSink discards every entry, used when no cache directory is
// configured and by tests that don't care about persistence.
type NoopSink struct{}

func (NoopSink) Record(Entry) error { return nil }
