package journal

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/taskmanager/domain"
)

// Store keeps a local, append-only history of task changes in BoltDB.
// Entries live in one child bucket per task, keyed by record time.
type Store struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

// Open initializes the BoltDB file and ensures the root bucket exists.
func Open(path string, bucket string) (*Store, error) {
	if bucket == "" {
		bucket = "journal"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		bucket: []byte(bucket),
		now:    time.Now,
	}, nil
}

// Append records entry, assigning an id and timestamp when missing.
func (s *Store) Append(entry domain.JournalEntry) (domain.JournalEntry, error) {
	if s == nil || s.db == nil {
		return entry, bolt.ErrDatabaseNotOpen
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = s.now()
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return entry, err
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		child, err := tx.Bucket(s.bucket).CreateBucketIfNotExists(taskBucket(entry.TaskID))
		if err != nil {
			return err
		}
		return child.Put(entryKey(entry), payload)
	})
	return entry, err
}

// ListByTask returns the entries of one task, oldest first.
func (s *Store) ListByTask(taskID int64) ([]domain.JournalEntry, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}

	entries := make([]domain.JournalEntry, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		child := tx.Bucket(s.bucket).Bucket(taskBucket(taskID))
		if child == nil {
			return nil
		}
		return child.ForEach(func(k, v []byte) error {
			var entry domain.JournalEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				return fmt.Errorf("decode journal entry %x of task %d: %w", k, taskID, err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Size returns the number of stored entries across all tasks.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(s.bucket)
		return root.ForEachBucket(func(name []byte) error {
			return root.Bucket(name).ForEach(func(_, _ []byte) error {
				count++
				return nil
			})
		})
	})
	return count, err
}

// Cleanup removes entries recorded before olderThan and drops emptied task buckets.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	cutoff := timeKey(olderThan)
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(s.bucket)

		var names [][]byte
		if err := root.ForEachBucket(func(name []byte) error {
			names = append(names, append([]byte(nil), name...))
			return nil
		}); err != nil {
			return err
		}

		for _, name := range names {
			child := root.Bucket(name)
			var stale [][]byte
			c := child.Cursor()
			// keys sort by record time, so the first key past the cutoff ends the scan
			for k, _ := c.First(); k != nil && bytes.Compare(k[:8], cutoff) < 0; k, _ = c.Next() {
				stale = append(stale, append([]byte(nil), k...))
			}
			for _, k := range stale {
				if err := child.Delete(k); err != nil {
					return err
				}
				removed++
			}
			if k, _ := child.Cursor().First(); k == nil {
				if err := root.DeleteBucket(name); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func taskBucket(taskID int64) []byte {
	return []byte(fmt.Sprintf("%020d", taskID))
}

func timeKey(t time.Time) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(t.UnixNano()))
	return key
}

func entryKey(entry domain.JournalEntry) []byte {
	return append(timeKey(entry.RecordedAt), []byte(entry.ID)...)
}
