package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo_ListByPatientNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	r.nowFunc = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}

	for _, enc := range []string{"e-1", "e-2", "e-3"} {
		require.NoError(t, r.Record(ctx, &Entry{
			Workspace: "transfer-out-workspace", PatientUUID: "p-1", EncounterUUID: enc,
			Action: ActionCreate, Status: StatusSucceeded,
		}))
	}
	require.NoError(t, r.Record(ctx, &Entry{PatientUUID: "p-2", Action: ActionDelete, Status: StatusFailed}))

	entries, total, err := r.ListByPatient(ctx, "p-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, entries, 2)
	assert.Equal(t, "e-3", entries[0].EncounterUUID)
	assert.Equal(t, "e-2", entries[1].EncounterUUID)

	entries, _, err = r.ListByPatient(ctx, "p-1", 2, 2)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e-1", entries[0].EncounterUUID)

	entries, total, err = r.ListByPatient(ctx, "p-1", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, entries)
}

func TestMemoryRepo_RecordAssignsIdentity(t *testing.T) {
	r := NewMemoryRepo()
	e := &Entry{PatientUUID: "p-1", Action: ActionUpdate, Status: StatusRejected, Unmapped: []string{"pmtctLinkageDate"}}
	require.NoError(t, r.Record(context.Background(), e))
	assert.NotEmpty(t, e.ID.String())
	assert.False(t, e.CreatedAt.IsZero())

	entries, _, _ := r.ListByPatient(context.Background(), "p-1", 10, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, []string{"pmtctLinkageDate"}, entries[0].Unmapped)
}
