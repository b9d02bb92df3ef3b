package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/mailer"
	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/services"
	"github.com/mediatiff/mediation-server/internal/storage"
	"github.com/mediatiff/mediation-server/internal/store"
)

// deliverAll always reports successful delivery.
type deliverAll struct{}

func (deliverAll) NotifyOppositeParty(context.Context, string, string) mailer.Result {
	return mailer.Result{Delivered: true, MessageID: "msg_test"}
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	mem := store.NewMemory()
	logger := zap.NewNop()
	sugar := logger.Sugar()

	userStore := store.MemoryUsers{Memory: mem}
	caseStore := store.MemoryCases{Memory: mem}
	panelStore := store.MemoryPanels{Memory: mem}

	userSvc := services.NewUserService(userStore, caseStore, sugar)
	caseSvc := services.NewCaseService(caseStore, userStore, deliverAll{}, "http://localhost:3000", time.Second, sugar)
	panelSvc := services.NewPanelService(panelStore, caseStore, userStore, sugar)
	archive := storage.NewArchive(storage.NewMemoryBlobStore(), sugar)

	userHandler := NewUserHandler(userSvc, sugar)
	caseHandler := NewCaseHandler(caseSvc, sugar)
	panelHandler := NewPanelHandler(panelSvc, sugar)
	uploadHandler := NewUploadHandler(archive, sugar)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Get("/lookup", userHandler.Lookup)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}", userHandler.Update)
			r.Delete("/{id}", userHandler.Delete)
		})
		r.Route("/cases", func(r chi.Router) {
			r.Post("/", caseHandler.Create)
			r.Get("/", caseHandler.List)
			r.Get("/{id}", caseHandler.Get)
			r.Put("/{id}", caseHandler.Update)
			r.Delete("/{id}", caseHandler.Delete)
		})
		r.Route("/panels", func(r chi.Router) {
			r.Post("/", panelHandler.Create)
			r.Get("/", panelHandler.List)
		})
		r.Post("/upload", uploadHandler.Single)
		r.Post("/upload/batch", uploadHandler.Batch)
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (string, json.RawMessage, string) {
	t.Helper()
	var env struct {
		Status  string          `json:"status"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Status, env.Data, env.Message
}

func createTestUser(t *testing.T, r http.Handler, name, email string) models.User {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/v1/users", models.CreateUserRequest{
		Name:     name,
		Birthday: "1990-01-01",
		Gender:   "Female",
		Email:    email,
		Phone:    "+15551234567",
		Address:  &models.AddressInput{Street: "123 Market St", City: "San Francisco", ZipCode: "94105"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	status, data, _ := decodeEnvelope(t, rec)
	require.Equal(t, "success", status)
	var user models.User
	require.NoError(t, json.Unmarshal(data, &user))
	return user
}

func TestCreateCaseFlow(t *testing.T) {
	r := newTestRouter(t)
	claimant := createTestUser(t, r, "Claimant", "claimant@example.com")
	jane := createTestUser(t, r, "Jane Doe", "jane@example.com")

	rec := doJSON(t, r, http.MethodPost, "/api/v1/cases", models.CreateCaseRequest{
		CaseType:           "FAMILY",
		Description:        "Dispute over shared property boundary line",
		ClaimantID:         claimant.ID.String(),
		OppositePartyID:    jane.ID.String(),
		OppositePartyEmail: "jane@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	status, data, _ := decodeEnvelope(t, rec)
	require.Equal(t, "success", status)

	var c models.Case
	require.NoError(t, json.Unmarshal(data, &c))
	assert.Equal(t, models.StatusAwaitingResponse, c.Status)
	require.NotNil(t, c.Claimant)
	require.NotNil(t, c.OppositeParty)
	assert.Equal(t, "jane@example.com", c.OppositeParty.Email)
	assert.Equal(t, []string{}, c.ProofFiles)

	// fetch the case back through the API
	rec = doJSON(t, r, http.MethodGet, "/api/v1/cases/"+c.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateCaseMissingDescription(t *testing.T) {
	r := newTestRouter(t)
	claimant := createTestUser(t, r, "Claimant", "claimant@example.com")
	jane := createTestUser(t, r, "Jane Doe", "jane@example.com")

	rec := doJSON(t, r, http.MethodPost, "/api/v1/cases", models.CreateCaseRequest{
		CaseType:        "FAMILY",
		ClaimantID:      claimant.ID.String(),
		OppositePartyID: jane.ID.String(),
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	status, _, message := decodeEnvelope(t, rec)
	assert.Equal(t, "error", status)
	assert.Contains(t, message, "description")

	// no case was persisted
	rec = doJSON(t, r, http.MethodGet, "/api/v1/cases", nil)
	_, data, _ := decodeEnvelope(t, rec)
	var cases []models.Case
	require.NoError(t, json.Unmarshal(data, &cases))
	assert.Empty(t, cases)
}

func TestGetCaseNotFound(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/v1/cases/6e9a3a7c-9f60-4a1e-9a52-0a3c1f9b2d11", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	status, _, _ := decodeEnvelope(t, rec)
	assert.Equal(t, "error", status)
}

func TestGetCaseBadID(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/api/v1/cases/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserLookupByEmail(t *testing.T) {
	r := newTestRouter(t)
	created := createTestUser(t, r, "Jane Doe", "jane@example.com")

	rec := doJSON(t, r, http.MethodGet, "/api/v1/users/lookup?email=jane@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, data, _ := decodeEnvelope(t, rec)
	var user models.User
	require.NoError(t, json.Unmarshal(data, &user))
	assert.Equal(t, created.ID, user.ID)
	require.NotNil(t, user.Address)
	assert.Equal(t, "94105", user.Address.ZipCode)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/users/lookup?email=nobody@example.com", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePanelOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	claimant := createTestUser(t, r, "Claimant", "claimant@example.com")
	jane := createTestUser(t, r, "Jane Doe", "jane@example.com")

	rec := doJSON(t, r, http.MethodPost, "/api/v1/cases", models.CreateCaseRequest{
		CaseType:        "COMMUNITY",
		Description:     "Noise dispute between adjacent households",
		ClaimantID:      claimant.ID.String(),
		OppositePartyID: jane.ID.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, data, _ := decodeEnvelope(t, rec)
	var c models.Case
	require.NoError(t, json.Unmarshal(data, &c))

	lawyer := createTestUser(t, r, "Lawyer", "lawyer@example.com")
	religious := createTestUser(t, r, "Religious Rep", "religious@example.com")
	community := createTestUser(t, r, "Community Rep", "community@example.com")

	panelReq := models.CreatePanelRequest{
		LawyerID:       lawyer.ID.String(),
		ReligiousID:    religious.ID.String(),
		CommunityRepID: community.ID.String(),
		CaseID:         c.ID.String(),
	}
	rec = doJSON(t, r, http.MethodPost, "/api/v1/panels", panelReq)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// one panel per case
	rec = doJSON(t, r, http.MethodPost, "/api/v1/panels", panelReq)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadSingle(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload?filename=deed.pdf",
		bytes.NewReader([]byte("pdf-bytes")))
	req.Header.Set("Content-Type", "application/pdf")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	_, data, _ := decodeEnvelope(t, rec)
	var uploaded struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(data, &uploaded))
	assert.Equal(t, "deed.pdf", uploaded.Name)
	assert.Contains(t, uploaded.URL, "deed.pdf")
}

func TestUploadSingleMissingFilename(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", bytes.NewReader([]byte("x")))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadBatch(t *testing.T) {
	r := newTestRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i := 0; i < 3; i++ {
		part, err := mw.CreateFormFile("files", fmt.Sprintf("proof-%d.jpg", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("jpeg-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, data, _ := decodeEnvelope(t, rec)
	var resp struct {
		URLs   []string `json:"urls"`
		Failed []any    `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Len(t, resp.URLs, 3)
	assert.Empty(t, resp.Failed)
}
