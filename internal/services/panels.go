package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/store"
)

// PanelService registers mediation panels. Creating a panel does not
// advance the case status; callers drive the lifecycle explicitly through
// the case update operation.
type PanelService struct {
	panels store.PanelStore
	cases  store.CaseStore
	users  store.UserStore
	logger *zap.SugaredLogger
}

// NewPanelService creates a new mediation panel registrar.
func NewPanelService(panels store.PanelStore, cases store.CaseStore, users store.UserStore, logger *zap.SugaredLogger) *PanelService {
	return &PanelService{panels: panels, cases: cases, users: users, logger: logger}
}

// Create registers the three-member panel for a case. The case must exist,
// every member must resolve in the directory, and a case accepts only one
// panel.
func (s *PanelService) Create(ctx context.Context, req *models.CreatePanelRequest) (*models.MediationPanel, error) {
	missing := []string{}
	if req.LawyerID == "" {
		missing = append(missing, "lawyerId")
	}
	if req.ReligiousID == "" {
		missing = append(missing, "religiousId")
	}
	if req.CommunityRepID == "" {
		missing = append(missing, "communityRepId")
	}
	if req.CaseID == "" {
		missing = append(missing, "caseId")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	lawyerID, err := parsePartyID(req.LawyerID, "lawyerId")
	if err != nil {
		return nil, err
	}
	religiousID, err := parsePartyID(req.ReligiousID, "religiousId")
	if err != nil {
		return nil, err
	}
	communityID, err := parsePartyID(req.CommunityRepID, "communityRepId")
	if err != nil {
		return nil, err
	}
	caseID, err := parsePartyID(req.CaseID, "caseId")
	if err != nil {
		return nil, err
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	for _, memberID := range []uuid.UUID{lawyerID, religiousID, communityID} {
		if _, err := s.users.GetByID(ctx, memberID); err != nil {
			return nil, err
		}
	}

	panel := &models.MediationPanel{
		ID:             uuid.New(),
		CaseID:         c.ID,
		LawyerID:       lawyerID,
		ReligiousID:    religiousID,
		CommunityRepID: communityID,
		CreatedAt:      time.Now(),
	}
	if err := s.panels.Create(ctx, panel); err != nil {
		return nil, err
	}

	s.logger.Infow("Mediation panel created", "id", panel.ID, "case_id", c.ID)
	return panel, nil
}

// List returns every panel with its linked case hydrated.
func (s *PanelService) List(ctx context.Context) ([]models.MediationPanel, error) {
	panels, err := s.panels.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range panels {
		c, err := s.cases.GetByID(ctx, panels[i].CaseID)
		if err != nil {
			return nil, err
		}
		panels[i].Case = c
	}
	return panels, nil
}
