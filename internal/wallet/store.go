package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adeyemio/betwallet/pkg/logger"
)

// Store persists the ledger as one whole-document JSON blob, read-modify-
// write on every mutation. Concurrent writers are not coordinated: last
// write wins. Write failures never corrupt in-memory state; the store evicts
// oldest completed transactions when over capacity, retries once, then
// degrades to memory-only for the rest of the session.
type Store struct {
	path     string
	maxBytes int

	mu       sync.Mutex
	degraded bool
}

func NewStore(path string, maxBytes int) *Store {
	return &Store{path: path, maxBytes: maxBytes}
}

// Load reads the blob from disk. A missing or unreadable file yields an
// empty snapshot rather than an error: the ledger starts fresh.
func (s *Store) Load() *LedgerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() *LedgerSnapshot {
	empty := &LedgerSnapshot{Version: snapshotVersion}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Ledger store: read failed, starting empty", logger.WithError(err))
		}
		return empty
	}

	var snap LedgerSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Error("Ledger store: corrupt blob, starting empty", logger.WithError(err))
		return empty
	}

	for i := range snap.Transactions {
		reviveDates(snap.Transactions[i].Metadata)
	}

	if snap.Version == 0 {
		snap.Version = snapshotVersion
	}
	return &snap
}

func (s *Store) AppendTransaction(tx Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load()
	snap.Transactions = append(snap.Transactions, tx)
	s.save(snap)
}

func (s *Store) UpdateTransaction(tx Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load()
	for i := range snap.Transactions {
		if snap.Transactions[i].ID == tx.ID {
			snap.Transactions[i] = tx
			s.save(snap)
			return
		}
	}
	snap.Transactions = append(snap.Transactions, tx)
	s.save(snap)
}

func (s *Store) AppendPendingPayment(p PendingPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load()
	snap.PendingPayments = append(snap.PendingPayments, p)
	s.save(snap)
}

func (s *Store) UpdatePendingPayment(p PendingPayment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load()
	for i := range snap.PendingPayments {
		if snap.PendingPayments[i].ID == p.ID {
			snap.PendingPayments[i] = p
			s.save(snap)
			return
		}
	}
	snap.PendingPayments = append(snap.PendingPayments, p)
	s.save(snap)
}

// Replace writes a whole snapshot, used when the in-memory ledger is the
// source (refresh republish, admin bulk edits).
func (s *Store) Replace(snap *LedgerSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(snap)
}

func (s *Store) save(snap *LedgerSnapshot) {
	if s.degraded {
		return
	}

	snap.LastUpdated = time.Now()
	snap.Version = snapshotVersion

	data, err := json.Marshal(snap)
	if err != nil {
		logger.Error("Ledger store: marshal failed", logger.WithError(err))
		return
	}

	if s.maxBytes > 0 && len(data) > s.maxBytes {
		data = s.evict(snap, data)
		if data == nil {
			return
		}
	}

	if err := s.write(data); err != nil {
		// one retry after eviction, then degrade
		data = s.evict(snap, data)
		if data == nil || s.write(data) != nil {
			logger.Error("Ledger store: write failed, continuing in memory only", logger.WithError(err))
			s.degraded = true
		}
	}
}

// evict drops oldest completed transactions until the blob fits. Pending
// entries are never evicted. Returns nil when nothing more can go.
func (s *Store) evict(snap *LedgerSnapshot, data []byte) []byte {
	sorted := make([]Transaction, len(snap.Transactions))
	copy(sorted, snap.Transactions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	evicted := 0
	for len(data) > s.maxBytes {
		dropped := false
		for i, tx := range sorted {
			if tx.Status != StatusCompleted {
				continue
			}
			sorted = append(sorted[:i], sorted[i+1:]...)
			dropped = true
			evicted++
			break
		}
		if !dropped {
			logger.Warn("Ledger store: over capacity with nothing evictable", logger.Fields{"bytes": len(data)})
			return nil
		}

		snap.Transactions = sorted
		var err error
		data, err = json.Marshal(snap)
		if err != nil {
			logger.Error("Ledger store: marshal failed during eviction", logger.WithError(err))
			return nil
		}
	}

	if evicted > 0 {
		logger.Warn("Ledger store: evicted oldest completed transactions", logger.Fields{"count": evicted})
	}
	return data
}

func (s *Store) write(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}

// reviveDates restores time values in metadata after a JSON round trip.
// Any key containing a date-ish token whose value parses as ISO-8601 becomes
// a time.Time. Walks nested maps and slices.
func reviveDates(m map[string]interface{}) {
	for k, v := range m {
		switch val := v.(type) {
		case string:
			if !dateKey(k) {
				continue
			}
			if ts, err := time.Parse(time.RFC3339, val); err == nil {
				m[k] = ts
			}
		case map[string]interface{}:
			reviveDates(val)
		case []interface{}:
			for _, item := range val {
				if nested, ok := item.(map[string]interface{}); ok {
					reviveDates(nested)
				}
			}
		}
	}
}

func dateKey(k string) bool {
	lower := strings.ToLower(k)
	return strings.Contains(lower, "date") ||
		strings.Contains(lower, "time") ||
		strings.HasSuffix(k, "At") ||
		strings.HasSuffix(lower, "_at")
}
