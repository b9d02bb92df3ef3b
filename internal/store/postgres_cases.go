package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/models"
)

// PostgresCaseStore is the pgx-backed CaseStore.
type PostgresCaseStore struct {
	db    *pgxpool.Pool
	users *PostgresUserStore
}

// NewPostgresCaseStore creates a Postgres-backed case store. The user store
// is used to hydrate party references on reads.
func NewPostgresCaseStore(db *pgxpool.Pool, users *PostgresUserStore) *PostgresCaseStore {
	return &PostgresCaseStore{db: db, users: users}
}

const caseSelect = `
	SELECT id, case_type, description, status, legal_status, legal_extra_info,
		proof_files, claimant_id, opposite_party_id, created_at, updated_at
	FROM cases`

func scanCase(row pgx.Row) (*models.Case, error) {
	var (
		c          models.Case
		legal      *string
		legalExtra *string
	)
	err := row.Scan(&c.ID, &c.CaseType, &c.Description, &c.Status, &legal, &legalExtra,
		&c.ProofFiles, &c.ClaimantID, &c.OppositeID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if legal != nil {
		c.LegalStatus = models.LegalStatus(*legal)
	}
	if legalExtra != nil {
		c.LegalExtraInfo = *legalExtra
	}
	if c.ProofFiles == nil {
		c.ProofFiles = []string{}
	}
	return &c, nil
}

// Create inserts the case and its witness batch in one transaction.
func (s *PostgresCaseStore) Create(ctx context.Context, c *models.Case) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperr.Dependency("begin case insert", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO cases (id, case_type, description, status, legal_status, legal_extra_info,
			proof_files, claimant_id, opposite_party_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11)`,
		c.ID, c.CaseType, c.Description, c.Status, string(c.LegalStatus), c.LegalExtraInfo,
		c.ProofFiles, c.ClaimantID, c.OppositeID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return apperr.Dependency("insert case", err)
	}

	for _, w := range c.Witnesses {
		_, err = tx.Exec(ctx, `
			INSERT INTO witnesses (id, case_id, name, contact) VALUES ($1, $2, $3, $4)`,
			w.ID, c.ID, w.Name, w.Contact,
		)
		if err != nil {
			return apperr.Dependency("insert witness", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Dependency("commit case insert", err)
	}
	return nil
}

func (s *PostgresCaseStore) hydrate(ctx context.Context, c *models.Case) error {
	claimant, err := s.users.GetByID(ctx, c.ClaimantID)
	if err != nil {
		return err
	}
	opposite, err := s.users.GetByID(ctx, c.OppositeID)
	if err != nil {
		return err
	}
	c.Claimant = claimant
	c.OppositeParty = opposite

	rows, err := s.db.Query(ctx, `
		SELECT id, case_id, name, contact FROM witnesses WHERE case_id = $1 ORDER BY name`, c.ID)
	if err != nil {
		return apperr.Dependency("select witnesses", err)
	}
	defer rows.Close()

	c.Witnesses = []models.Witness{}
	for rows.Next() {
		var w models.Witness
		if err := rows.Scan(&w.ID, &w.CaseID, &w.Name, &w.Contact); err != nil {
			return apperr.Dependency("scan witness", err)
		}
		c.Witnesses = append(c.Witnesses, w)
	}
	if err := rows.Err(); err != nil {
		return apperr.Dependency("select witnesses", err)
	}

	var p models.MediationPanel
	row := s.db.QueryRow(ctx, `
		SELECT id, case_id, lawyer_id, religious_id, community_rep_id, created_at
		FROM mediation_panels WHERE case_id = $1`, c.ID)
	err = row.Scan(&p.ID, &p.CaseID, &p.LawyerID, &p.ReligiousID, &p.CommunityRepID, &p.CreatedAt)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		// no panel yet
	case err != nil:
		return apperr.Dependency("select panel", err)
	default:
		c.Panel = &p
	}
	return nil
}

// GetByID fetches a case hydrated with parties, witnesses, and panel.
func (s *PostgresCaseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	row := s.db.QueryRow(ctx, caseSelect+` WHERE id = $1`, id)
	c, err := scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("case", id.String())
	}
	if err != nil {
		return nil, apperr.Dependency("select case", err)
	}
	if err := s.hydrate(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns every case, hydrated, newest first.
func (s *PostgresCaseStore) List(ctx context.Context) ([]models.Case, error) {
	rows, err := s.db.Query(ctx, caseSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperr.Dependency("list cases", err)
	}
	defer rows.Close()

	cases := []models.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, apperr.Dependency("scan case", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Dependency("list cases", err)
	}

	for i := range cases {
		if err := s.hydrate(ctx, &cases[i]); err != nil {
			return nil, err
		}
	}
	return cases, nil
}

// Update merges the provided fields and returns the rehydrated case.
func (s *PostgresCaseStore) Update(ctx context.Context, id uuid.UUID, upd CaseUpdate) (*models.Case, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE cases SET
			description      = COALESCE($2, description),
			legal_status     = COALESCE($3, legal_status),
			legal_extra_info = COALESCE($4, legal_extra_info),
			proof_files      = COALESCE($5, proof_files),
			status           = COALESCE($6, status),
			updated_at       = now()
		WHERE id = $1`,
		id, upd.Description, upd.LegalStatus, upd.LegalExtraInfo, upd.ProofFiles, upd.Status,
	)
	if err != nil {
		return nil, apperr.Dependency("update case", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.NotFound("case", id.String())
	}
	return s.GetByID(ctx, id)
}

// Delete removes the case; witnesses and panel go with it via cascade.
func (s *PostgresCaseStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return apperr.Dependency("delete case", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("case", id.String())
	}
	return nil
}

// CountByParty counts cases referencing the user as claimant or opposite party.
func (s *PostgresCaseStore) CountByParty(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM cases WHERE claimant_id = $1 OR opposite_party_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, apperr.Dependency("count cases by party", err)
	}
	return count, nil
}
