package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/mailer"
	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/store"
)

// fakeMailer records notification calls and delivers (or not) on command.
type fakeMailer struct {
	mu      sync.Mutex
	deliver bool
	calls   []notifyCall
}

type notifyCall struct {
	To      string
	CaseURL string
}

func (f *fakeMailer) NotifyOppositeParty(ctx context.Context, to, caseURL string) mailer.Result {
	f.mu.Lock()
	f.calls = append(f.calls, notifyCall{To: to, CaseURL: caseURL})
	f.mu.Unlock()
	if !f.deliver {
		return mailer.Result{Delivered: false, Err: errors.New("provider down")}
	}
	return mailer.Result{Delivered: true, MessageID: "msg_test"}
}

type fixture struct {
	users  *UserService
	cases  *CaseService
	panels *PanelService
	mail   *fakeMailer
}

func newFixture(t *testing.T, deliver bool) *fixture {
	t.Helper()
	mem := store.NewMemory()
	userStore := store.MemoryUsers{Memory: mem}
	caseStore := store.MemoryCases{Memory: mem}
	panelStore := store.MemoryPanels{Memory: mem}

	logger := zap.NewNop().Sugar()
	mail := &fakeMailer{deliver: deliver}

	return &fixture{
		users:  NewUserService(userStore, caseStore, logger),
		cases:  NewCaseService(caseStore, userStore, mail, "http://localhost:3000", 5*time.Second, logger),
		panels: NewPanelService(panelStore, caseStore, userStore, logger),
		mail:   mail,
	}
}

func (f *fixture) mustCreateUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), &models.CreateUserRequest{
		Name:     name,
		Birthday: "1990-01-01",
		Gender:   "Female",
		Email:    email,
		Phone:    "+15551234567",
	})
	require.NoError(t, err)
	return user
}

func newRandomID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func validCaseRequest(claimant, opposite *models.User) *models.CreateCaseRequest {
	return &models.CreateCaseRequest{
		CaseType:           "FAMILY",
		Description:        "Dispute over shared property boundary line",
		ClaimantID:         claimant.ID.String(),
		OppositePartyID:    opposite.ID.String(),
		OppositePartyEmail: opposite.Email,
	}
}
