package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"aocd/classify"
)

const (
	// DefaultDBFile is the submission store filename under the cache root.
	DefaultDBFile = "aocd.db"

	// bucketName is the BoltDB bucket holding submission records.
	bucketName = "submissions"
)

// Outcome is one remembered submission result for a specific answer.
type Outcome struct {
	// Kind is the classified verdict the judge returned for this answer.
	Kind classify.Kind `json:"kind"`

	// Wait is the cooldown the judge demanded, for rate-limited outcomes.
	Wait time.Duration `json:"wait,omitempty"`

	// SubmittedAt is when the answer was submitted, used to compute the
	// remaining cooldown locally.
	SubmittedAt time.Time `json:"submitted_at"`
}

// Remaining returns how much of a rate-limit cooldown is still left at
// now. Zero for anything other than a rate-limited outcome, or once the
// cooldown has elapsed.
func (o Outcome) Remaining(now time.Time) time.Duration {
	if o.Kind != classify.RateLimited {
		return 0
	}

	left := o.Wait - now.Sub(o.SubmittedAt)
	if left < 0 {
		return 0
	}

	return left
}

// Record is the persisted submission state for one (year, day, part).
type Record struct {
	// Solved is set once a Correct verdict has been observed. Never cleared.
	Solved bool `json:"solved"`

	// Answers maps each submitted answer to its remembered outcome.
	Answers map[string]Outcome `json:"answers,omitempty"`
}

// Submissions stores submission records in BoltDB.
type Submissions struct {
	db *bbolt.DB
}

// OpenSubmissions opens (creating if needed) the submission store at path.
func OpenSubmissions(path string) (*Submissions, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open submission store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create submission bucket: %w", err)
	}

	return &Submissions{db: db}, nil
}

// Close closes the underlying database.
func (s *Submissions) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Get returns the record for (year, day, part). A part that has never
// been submitted yields the zero Record.
func (s *Submissions) Get(year, day, part int) (Record, error) {
	var rec Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		data := b.Get(recordKey(year, day, part))
		if data == nil {
			return nil
		}

		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to read submission record: %w", err)
	}

	return rec, nil
}

// IsSolved reports whether (year, day, part) has a recorded Correct verdict.
func (s *Submissions) IsSolved(year, day, part int) (bool, error) {
	rec, err := s.Get(year, day, part)
	if err != nil {
		return false, err
	}

	return rec.Solved, nil
}

// Put records the outcome of submitting answer for (year, day, part).
// A Correct verdict also marks the part solved; the solved flag is never
// cleared by later outcomes.
func (s *Submissions) Put(year, day, part int, answer string, outcome Outcome) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		key := recordKey(year, day, part)

		var rec Record
		if data := b.Get(key); data != nil {
			if err := json.Unmarshal(data, &rec); err != nil {
				return err
			}
		}

		if rec.Answers == nil {
			rec.Answers = make(map[string]Outcome)
		}

		rec.Answers[answer] = outcome

		if outcome.Kind == classify.Correct {
			rec.Solved = true
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}

		return b.Put(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to store submission record: %w", err)
	}

	return nil
}

func recordKey(year, day, part int) []byte {
	return []byte(fmt.Sprintf("%d/%d/%d", year, day, part))
}
