package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const entryCols = `id, workspace, patient_uuid, encounter_uuid, provider_uuid,
	action, status, error, unmapped, created_at`

func (r *repoPG) Record(ctx context.Context, e *Entry) error {
	e.ID = uuid.New()
	unmapped := e.Unmapped
	if unmapped == nil {
		unmapped = []string{}
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO submission_ledger (
			id, workspace, patient_uuid, encounter_uuid, provider_uuid,
			action, status, error, unmapped
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at`,
		e.ID, e.Workspace, e.PatientUUID, e.EncounterUUID, e.ProviderUUID,
		string(e.Action), string(e.Status), e.Error, unmapped,
	).Scan(&e.CreatedAt)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientUUID string, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM submission_ledger WHERE patient_uuid = $1`, patientUUID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+entryCols+` FROM submission_ledger WHERE patient_uuid = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientUUID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var (
		e              Entry
		action, status string
	)
	if err := row.Scan(&e.ID, &e.Workspace, &e.PatientUUID, &e.EncounterUUID, &e.ProviderUUID,
		&action, &status, &e.Error, &e.Unmapped, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Action = Action(action)
	e.Status = Status(status)
	return &e, nil
}
