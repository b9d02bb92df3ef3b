package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/mailer"
	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/store"
)

// CaseService is the case lifecycle manager. It creates cases at PENDING,
// triggers the opposite-party notification, and guards every status change
// against the lifecycle transition table.
type CaseService struct {
	cases  store.CaseStore
	users  store.UserStore
	mailer mailer.Mailer
	logger *zap.SugaredLogger

	// baseURL is the public frontend origin used to build case links.
	baseURL string
	// notifyTimeout bounds the notification call so a slow mail provider
	// cannot stall case creation.
	notifyTimeout time.Duration
}

// NewCaseService creates a new case lifecycle manager.
func NewCaseService(cases store.CaseStore, users store.UserStore, m mailer.Mailer,
	baseURL string, notifyTimeout time.Duration, logger *zap.SugaredLogger) *CaseService {
	return &CaseService{
		cases:         cases,
		users:         users,
		mailer:        m,
		logger:        logger,
		baseURL:       baseURL,
		notifyTimeout: notifyTimeout,
	}
}

func parsePartyID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validationf("%s must be a valid id", field)
	}
	return id, nil
}

// Create validates and persists a new case at PENDING, then attempts the
// opposite-party notification. Persisting the case is the durable step:
// notification failure is logged and reported, never fatal, and the case
// simply stays at PENDING until a later retry succeeds.
func (s *CaseService) Create(ctx context.Context, req *models.CreateCaseRequest) (*models.Case, error) {
	missing := []string{}
	if req.CaseType == "" {
		missing = append(missing, "caseType")
	}
	if req.Description == "" {
		missing = append(missing, "description")
	}
	if req.ClaimantID == "" {
		missing = append(missing, "claimantId")
	}
	if req.OppositePartyID == "" {
		missing = append(missing, "oppositePartyId")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	caseType := models.CaseType(req.CaseType)
	if !caseType.Valid() {
		return nil, apperr.Validationf("unknown case type %q", req.CaseType)
	}
	if len(req.Description) < 10 {
		return nil, apperr.Validation("description must be at least 10 characters")
	}
	var legalStatus models.LegalStatus
	if req.LegalStatus != "" {
		legalStatus = models.LegalStatus(req.LegalStatus)
		if !legalStatus.Valid() {
			return nil, apperr.Validationf("unknown legal status %q", req.LegalStatus)
		}
	}

	claimantID, err := parsePartyID(req.ClaimantID, "claimantId")
	if err != nil {
		return nil, err
	}
	oppositeID, err := parsePartyID(req.OppositePartyID, "oppositePartyId")
	if err != nil {
		return nil, err
	}
	if claimantID == oppositeID {
		return nil, apperr.Validation("claimant and opposite party must be different users")
	}

	// Parties are references, not owned records; both must already exist
	// in the directory.
	if _, err := s.users.GetByID(ctx, claimantID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, oppositeID); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &models.Case{
		ID:             uuid.New(),
		CaseType:       caseType,
		Description:    req.Description,
		Status:         models.StatusPending,
		LegalStatus:    legalStatus,
		LegalExtraInfo: req.LegalExtraInfo,
		ProofFiles:     req.ProofFiles,
		ClaimantID:     claimantID,
		OppositeID:     oppositeID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if c.ProofFiles == nil {
		c.ProofFiles = []string{}
	}
	for _, w := range req.Witnesses {
		c.Witnesses = append(c.Witnesses, models.Witness{
			ID:      uuid.New(),
			CaseID:  c.ID,
			Name:    w.Name,
			Contact: w.Contact,
		})
	}

	if err := s.cases.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Infow("Case created", "id", c.ID, "type", c.CaseType, "claimant", claimantID)

	if req.OppositePartyEmail != "" {
		s.notifyAndAdvance(ctx, c.ID, req.OppositePartyEmail)
	}

	return s.cases.GetByID(ctx, c.ID)
}

// notifyAndAdvance sends the opposite-party email and, on delivery,
// advances the case to AWAITING_RESPONSE through the guarded update path.
// The two effects are not atomic: a case left at PENDING with the email
// already out is a valid state, not a correctness violation.
func (s *CaseService) notifyAndAdvance(ctx context.Context, caseID uuid.UUID, email string) {
	nctx, cancel := context.WithTimeout(ctx, s.notifyTimeout)
	defer cancel()

	caseURL := fmt.Sprintf("%s/case/%s", s.baseURL, caseID)
	res := s.mailer.NotifyOppositeParty(nctx, email, caseURL)
	if !res.Delivered {
		s.logger.Warnw("Opposite party not notified, case stays PENDING",
			"case_id", caseID, "error", res.Err)
		return
	}

	status := string(models.StatusAwaitingResponse)
	if _, err := s.Update(ctx, caseID, &models.UpdateCaseRequest{Status: &status}); err != nil {
		s.logger.Errorw("Failed to advance notified case", "case_id", caseID, "error", err)
	}
}

// Get fetches a hydrated case.
func (s *CaseService) Get(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return s.cases.GetByID(ctx, id)
}

// List returns every case, hydrated. No pagination.
func (s *CaseService) List(ctx context.Context) ([]models.Case, error) {
	return s.cases.List(ctx)
}

// Update merges the provided fields. A requested status change must be a
// legal transition from the case's current state; anything else is
// rejected. Case type and party references are immutable.
func (s *CaseService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateCaseRequest) (*models.Case, error) {
	if req.Description != nil && len(*req.Description) < 10 {
		return nil, apperr.Validation("description must be at least 10 characters")
	}

	upd := store.CaseUpdate{
		Description:    req.Description,
		LegalExtraInfo: req.LegalExtraInfo,
		ProofFiles:     req.ProofFiles,
	}

	if req.LegalStatus != nil {
		legal := models.LegalStatus(*req.LegalStatus)
		if !legal.Valid() {
			return nil, apperr.Validationf("unknown legal status %q", *req.LegalStatus)
		}
		upd.LegalStatus = &legal
	}

	if req.Status != nil {
		next := models.CaseStatus(*req.Status)
		if !next.Valid() {
			return nil, apperr.Validationf("unknown status %q", *req.Status)
		}
		current, err := s.cases.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if next != current.Status && !current.Status.CanTransitionTo(next) {
			return nil, apperr.Validationf("illegal status transition %s -> %s", current.Status, next)
		}
		upd.Status = &next
	}

	c, err := s.cases.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		s.logger.Infow("Case status changed", "id", id, "status", c.Status)
	}
	return c, nil
}

// Delete removes a case with its witnesses and panel.
func (s *CaseService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.cases.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("Case deleted", "id", id)
	return nil
}
