package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Record(ctx context.Context, e *Entry) error
	ListByPatient(ctx context.Context, patientUUID string, limit, offset int) ([]*Entry, int, error)
}

// MemoryRepo keeps entries in process. It is used when no database is configured.
type MemoryRepo struct {
	mu      sync.RWMutex
	entries []*Entry
	nowFunc func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nowFunc: time.Now}
}

func (r *MemoryRepo) Record(_ context.Context, e *Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = uuid.New()
	e.CreatedAt = r.nowFunc()
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

// ListByPatient returns the patient's entries newest first.
func (r *MemoryRepo) ListByPatient(_ context.Context, patientUUID string, limit, offset int) ([]*Entry, int, error) {
	r.mu.RLock()
	var matched []*Entry
	for _, e := range r.entries {
		if e.PatientUUID == patientUUID {
			cp := *e
			matched = append(matched, &cp)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if offset >= total {
		return []*Entry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
