// Package store defines the persistence interfaces for parties, cases and
// mediation panels, with a PostgreSQL implementation for production and an
// in-memory implementation for tests.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/mediatiff/mediation-server/internal/models"
)

// UserUpdate carries the fields of a partial user update. Nil pointers
// leave the stored value untouched; a non-nil Address replaces the owned
// address wholesale.
type UserUpdate struct {
	Name     *string
	Birthday *string // YYYY-MM-DD, parsed by the service layer
	Gender   *string
	Email    *string
	Phone    *string
	PhotoURL *string
	Address  *models.Address
}

// CaseUpdate carries the fields of a partial case update.
type CaseUpdate struct {
	Description    *string
	LegalStatus    *models.LegalStatus
	LegalExtraInfo *string
	ProofFiles     []string
	Status         *models.CaseStatus
}

// UserStore persists party directory entries. Implementations return
// apperr.NotFoundError when the requested user is absent and
// apperr.ValidationError on email uniqueness conflicts.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CaseStore persists cases with their owned witnesses. Reads return the
// case hydrated with claimant, opposite party (addresses included),
// witnesses, and the panel when one exists.
type CaseStore interface {
	Create(ctx context.Context, c *models.Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error)
	List(ctx context.Context) ([]models.Case, error)
	Update(ctx context.Context, id uuid.UUID, upd CaseUpdate) (*models.Case, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// CountByParty counts cases referencing the user as claimant or
	// opposite party. Used to refuse directory deletes that would leave
	// dangling references.
	CountByParty(ctx context.Context, userID uuid.UUID) (int64, error)
}

// PanelStore persists mediation panels. At most one panel exists per case.
type PanelStore interface {
	Create(ctx context.Context, p *models.MediationPanel) error
	GetByCaseID(ctx context.Context, caseID uuid.UUID) (*models.MediationPanel, error)
	List(ctx context.Context) ([]models.MediationPanel, error)
}
