package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/models"
)

// Memory is an in-process implementation of all three store interfaces.
// It exists for tests and local development without a database; every read
// returns deep copies so callers cannot mutate stored state.
type Memory struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*models.User
	cases  map[uuid.UUID]*models.Case
	panels map[uuid.UUID]*models.MediationPanel
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[uuid.UUID]*models.User),
		cases:  make(map[uuid.UUID]*models.Case),
		panels: make(map[uuid.UUID]*models.MediationPanel),
	}
}

func copyUser(u *models.User) *models.User {
	out := *u
	if u.Address != nil {
		addr := *u.Address
		out.Address = &addr
	}
	return &out
}

func copyPanel(p *models.MediationPanel) *models.MediationPanel {
	out := *p
	out.Case = nil
	return &out
}

func (m *Memory) copyCase(c *models.Case) *models.Case {
	out := *c
	out.Witnesses = append([]models.Witness{}, c.Witnesses...)
	out.ProofFiles = append([]string{}, c.ProofFiles...)
	if u, ok := m.users[c.ClaimantID]; ok {
		out.Claimant = copyUser(u)
	}
	if u, ok := m.users[c.OppositeID]; ok {
		out.OppositeParty = copyUser(u)
	}
	for _, p := range m.panels {
		if p.CaseID == c.ID {
			out.Panel = copyPanel(p)
			break
		}
	}
	return &out
}

// --- UserStore ---

func (m *Memory) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return apperr.Validationf("email %s is already registered", user.Email)
		}
	}
	m.users[user.ID] = copyUser(user)
	return nil
}

func (m *Memory) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id.String())
	}
	return copyUser(u), nil
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, apperr.NotFound("user", email)
}

func (m *Memory) List(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := []models.User{}
	for _, u := range m.users {
		users = append(users, *copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (m *Memory) Update(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user", id.String())
	}
	if upd.Email != nil {
		for otherID, other := range m.users {
			if otherID != id && other.Email == *upd.Email {
				return nil, apperr.Validation("email is already registered")
			}
		}
		u.Email = *upd.Email
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Birthday != nil {
		bday, err := time.Parse("2006-01-02", *upd.Birthday)
		if err != nil {
			return nil, apperr.Validation("birthday must be a YYYY-MM-DD date")
		}
		u.Birthday = bday
	}
	if upd.Gender != nil {
		u.Gender = *upd.Gender
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	if upd.Address != nil {
		addr := *upd.Address
		u.Address = &addr
	}
	u.UpdatedAt = time.Now()
	return copyUser(u), nil
}

func (m *Memory) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return apperr.NotFound("user", id.String())
	}
	delete(m.users, id)
	return nil
}

// --- CaseStore ---

func (m *Memory) CreateCase(ctx context.Context, c *models.Case) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *c
	stored.Witnesses = append([]models.Witness{}, c.Witnesses...)
	stored.ProofFiles = append([]string{}, c.ProofFiles...)
	stored.Claimant = nil
	stored.OppositeParty = nil
	m.cases[c.ID] = &stored
	return nil
}

func (m *Memory) GetCase(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, apperr.NotFound("case", id.String())
	}
	return m.copyCase(c), nil
}

func (m *Memory) ListCases(ctx context.Context) ([]models.Case, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cases := []models.Case{}
	for _, c := range m.cases {
		cases = append(cases, *m.copyCase(c))
	}
	sort.Slice(cases, func(i, j int) bool { return cases[i].CreatedAt.After(cases[j].CreatedAt) })
	return cases, nil
}

func (m *Memory) UpdateCase(ctx context.Context, id uuid.UUID, upd CaseUpdate) (*models.Case, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, apperr.NotFound("case", id.String())
	}
	if upd.Description != nil {
		c.Description = *upd.Description
	}
	if upd.LegalStatus != nil {
		c.LegalStatus = *upd.LegalStatus
	}
	if upd.LegalExtraInfo != nil {
		c.LegalExtraInfo = *upd.LegalExtraInfo
	}
	if upd.ProofFiles != nil {
		c.ProofFiles = append([]string{}, upd.ProofFiles...)
	}
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	c.UpdatedAt = time.Now()
	return m.copyCase(c), nil
}

func (m *Memory) DeleteCase(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cases[id]; !ok {
		return apperr.NotFound("case", id.String())
	}
	delete(m.cases, id)
	return nil
}

func (m *Memory) CountByParty(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, c := range m.cases {
		if c.ClaimantID == userID || c.OppositeID == userID {
			count++
		}
	}
	return count, nil
}

// --- PanelStore ---

func (m *Memory) CreatePanel(ctx context.Context, p *models.MediationPanel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.panels {
		if existing.CaseID == p.CaseID {
			return apperr.Validationf("case %s already has a mediation panel", p.CaseID)
		}
	}
	m.panels[p.ID] = copyPanel(p)
	return nil
}

func (m *Memory) GetPanelByCaseID(ctx context.Context, caseID uuid.UUID) (*models.MediationPanel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.panels {
		if p.CaseID == caseID {
			return copyPanel(p), nil
		}
	}
	return nil, apperr.NotFound("mediation panel for case", caseID.String())
}

func (m *Memory) ListPanels(ctx context.Context) ([]models.MediationPanel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	panels := []models.MediationPanel{}
	for _, p := range m.panels {
		panels = append(panels, *copyPanel(p))
	}
	sort.Slice(panels, func(i, j int) bool { return panels[i].CreatedAt.Before(panels[j].CreatedAt) })
	return panels, nil
}

// MemoryUsers adapts Memory to the UserStore interface.
type MemoryUsers struct{ *Memory }

// MemoryCases adapts Memory to the CaseStore interface, whose method names
// collide with UserStore's.
type MemoryCases struct{ *Memory }

func (m MemoryCases) Create(ctx context.Context, c *models.Case) error { return m.CreateCase(ctx, c) }
func (m MemoryCases) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	return m.GetCase(ctx, id)
}
func (m MemoryCases) List(ctx context.Context) ([]models.Case, error) { return m.ListCases(ctx) }
func (m MemoryCases) Update(ctx context.Context, id uuid.UUID, upd CaseUpdate) (*models.Case, error) {
	return m.UpdateCase(ctx, id, upd)
}
func (m MemoryCases) Delete(ctx context.Context, id uuid.UUID) error { return m.DeleteCase(ctx, id) }

// MemoryPanels adapts Memory to the PanelStore interface.
type MemoryPanels struct{ *Memory }

func (m MemoryPanels) Create(ctx context.Context, p *models.MediationPanel) error {
	return m.CreatePanel(ctx, p)
}
func (m MemoryPanels) GetByCaseID(ctx context.Context, caseID uuid.UUID) (*models.MediationPanel, error) {
	return m.GetPanelByCaseID(ctx, caseID)
}
func (m MemoryPanels) List(ctx context.Context) ([]models.MediationPanel, error) {
	return m.ListPanels(ctx)
}
