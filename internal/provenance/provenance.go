// Package provenance is the durable, append-only audit trail of decision
// cycles. One newline-delimited JSON record is written per cycle; records
// are hash-chained so tampering is detectable. There is no update or delete
// operation; corrections are new entries.
package provenance

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/arbiterhq/arbiter/internal/domain"
	"github.com/arbiterhq/arbiter/internal/errors"
	"github.com/zeebo/blake3"
)

// Log writes and reads the decision record file. Appends are serialized by
// a mutex so concurrent cycles never interleave lines.
type Log struct {
	mu       sync.Mutex
	path     string
	lastHash string
}

// Open creates a log over the given file, creating parent directories as
// needed. The existing chain tail is recovered so new records link onto it.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreAppend, "failed to create provenance directory", err)
	}

	l := &Log{path: path}

	records, err := l.scan()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		l.lastHash = records[len(records)-1].Hash
	}

	return l, nil
}

// Append writes one decision record. The record's PrevHash and Hash fields
// are set here; callers must treat the record as immutable afterwards.
func (l *Log) Append(record *domain.DecisionRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record.PrevHash = l.lastHash
	record.Hash = ""
	record.Hash = recordHash(record)

	data, err := json.Marshal(record)
	if err != nil {
		return errors.NewStoreAppendError("provenance log", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.NewStoreAppendError("provenance log", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errors.NewStoreAppendError("provenance log", err)
	}

	l.lastHash = record.Hash
	return nil
}

// recordHash digests the record's canonical JSON with blake3. The Hash
// field must be empty when called; PrevHash participates, which chains
// records together.
func recordHash(record *domain.DecisionRecord) string {
	data, err := json.Marshal(record)
	if err != nil {
		// Marshal of our own types cannot fail at runtime; an empty hash
		// would only break chain verification, not decisions.
		return ""
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// scan reads every parseable record in file order. Corrupt lines are
// skipped; a missing file is an empty log.
func (l *Log) scan() ([]domain.DecisionRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeStoreRead, "failed to open provenance log", err)
	}
	defer f.Close()

	var records []domain.DecisionRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record domain.DecisionRecord
		if err := json.Unmarshal(line, &record); err != nil {
			// A corrupt line never blocks reading the rest.
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreRead, "failed to read provenance log", err)
	}

	return records, nil
}

// Path returns the log file location.
func (l *Log) Path() string {
	return l.path
}

// Verify walks the chain and reports the first record whose hash or link
// does not match, if any.
func (l *Log) Verify() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.scan()
	if err != nil {
		return err
	}

	prev := ""
	for i := range records {
		record := records[i]
		if record.PrevHash != prev {
			return errors.New(errors.ErrCodeStoreCorrupt,
				fmt.Sprintf("record %s does not link to its predecessor", record.ID))
		}

		want := record.Hash
		record.Hash = ""
		if got := recordHash(&record); got != want {
			return errors.New(errors.ErrCodeStoreCorrupt,
				fmt.Sprintf("record %s fails hash verification", record.ID))
		}
		prev = want
	}

	return nil
}
