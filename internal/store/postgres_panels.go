package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/models"
)

// PostgresPanelStore is the pgx-backed PanelStore. The one-panel-per-case
// rule is backed by a unique index on case_id.
type PostgresPanelStore struct {
	db *pgxpool.Pool
}

// NewPostgresPanelStore creates a Postgres-backed panel store.
func NewPostgresPanelStore(db *pgxpool.Pool) *PostgresPanelStore {
	return &PostgresPanelStore{db: db}
}

// Create inserts the panel, rejecting a second panel for the same case.
func (s *PostgresPanelStore) Create(ctx context.Context, p *models.MediationPanel) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO mediation_panels (id, case_id, lawyer_id, religious_id, community_rep_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.CaseID, p.LawyerID, p.ReligiousID, p.CommunityRepID, p.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Validationf("case %s already has a mediation panel", p.CaseID)
		}
		return apperr.Dependency("insert panel", err)
	}
	return nil
}

// GetByCaseID fetches the panel assigned to the case, if any.
func (s *PostgresPanelStore) GetByCaseID(ctx context.Context, caseID uuid.UUID) (*models.MediationPanel, error) {
	var p models.MediationPanel
	row := s.db.QueryRow(ctx, `
		SELECT id, case_id, lawyer_id, religious_id, community_rep_id, created_at
		FROM mediation_panels WHERE case_id = $1`, caseID)
	err := row.Scan(&p.ID, &p.CaseID, &p.LawyerID, &p.ReligiousID, &p.CommunityRepID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("mediation panel for case", caseID.String())
	}
	if err != nil {
		return nil, apperr.Dependency("select panel", err)
	}
	return &p, nil
}

// List returns every panel, oldest first.
func (s *PostgresPanelStore) List(ctx context.Context) ([]models.MediationPanel, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, case_id, lawyer_id, religious_id, community_rep_id, created_at
		FROM mediation_panels ORDER BY created_at`)
	if err != nil {
		return nil, apperr.Dependency("list panels", err)
	}
	defer rows.Close()

	panels := []models.MediationPanel{}
	for rows.Next() {
		var p models.MediationPanel
		if err := rows.Scan(&p.ID, &p.CaseID, &p.LawyerID, &p.ReligiousID, &p.CommunityRepID, &p.CreatedAt); err != nil {
			return nil, apperr.Dependency("scan panel", err)
		}
		panels = append(panels, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("list panels", err)
	}
	return panels, nil
}
