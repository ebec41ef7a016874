package reports

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps reports in process. Used for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*Report)}
}

// StoreReport upserts by report id, assigning one when empty.
func (s *MemoryStore) StoreReport(ctx context.Context, patientID string, report *Report) (string, error) {
	if err := validate(patientID, report); err != nil {
		return "", err
	}
	cp := report.Clone()
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	cp.PatientID = patientID

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.reports[cp.ID]; ok && existing.PatientID != patientID {
		return "", ErrIDConflict
	}
	s.reports[cp.ID] = cp
	return cp.ID, nil
}

func (s *MemoryStore) GetReport(ctx context.Context, patientID, reportID string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[reportID]
	if !ok || r.PatientID != patientID {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// ListReports returns the patient's reports, newest first.
func (s *MemoryStore) ListReports(ctx context.Context, patientID string, limit int) ([]*Report, error) {
	s.mu.RLock()
	var out []*Report
	for _, r := range s.reports {
		if r.PatientID == patientID {
			out = append(out, r.Clone())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
