package payload

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/icap-ethiopia/kpp/internal/platform/openmrs"
)

// ErrSubmissionInFlight is returned when the same patient workspace already
// has a submission on the wire.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// Gateway persists encounters.
type Gateway interface {
	SaveEncounter(ctx context.Context, encounterUUID string, p *openmrs.EncounterPayload) (*openmrs.Encounter, error)
}

// Submitter upserts encounter payloads. An empty encounter UUID creates a new
// encounter; otherwise the existing one is replaced. Gateway errors are
// returned to the caller unchanged in kind.
type Submitter struct {
	gateway Gateway
}

func NewSubmitter(gw Gateway) *Submitter {
	return &Submitter{gateway: gw}
}

func (s *Submitter) Submit(ctx context.Context, p *openmrs.EncounterPayload, encounterUUID string) (*openmrs.Encounter, error) {
	enc, err := s.gateway.SaveEncounter(ctx, encounterUUID, p)
	if err != nil {
		if encounterUUID == "" {
			return nil, fmt.Errorf("create encounter: %w", err)
		}
		return nil, fmt.Errorf("update encounter %s: %w", encounterUUID, err)
	}
	return enc, nil
}

// InFlightGuard admits one submission at a time per key.
type InFlightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{active: make(map[string]struct{})}
}

// GuardKey identifies a patient workspace.
func GuardKey(patient, workspace string) string {
	return patient + "/" + workspace
}

// Acquire marks key as in flight. The returned release func must be called
// once the submission settles.
func (g *InFlightGuard) Acquire(key string) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return nil, ErrSubmissionInFlight
	}
	g.active[key] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, nil
}
