// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema and to the public JSON API, which keeps
// the camelCase field names the Mediatiff frontend already speaks.
package models

import (
	"time"

	"github.com/google/uuid"
)

// CaseType classifies the dispute being submitted.
type CaseType string

const (
	CaseTypeFamily    CaseType = "FAMILY"
	CaseTypeBusiness  CaseType = "BUSINESS"
	CaseTypeCriminal  CaseType = "CRIMINAL"
	CaseTypeCommunity CaseType = "COMMUNITY"
	CaseTypeOther     CaseType = "OTHER"
)

// Valid reports whether t is one of the known case types.
func (t CaseType) Valid() bool {
	switch t {
	case CaseTypeFamily, CaseTypeBusiness, CaseTypeCriminal, CaseTypeCommunity, CaseTypeOther:
		return true
	}
	return false
}

// CaseStatus is the lifecycle state of a case.
type CaseStatus string

const (
	StatusPending             CaseStatus = "PENDING"
	StatusAwaitingResponse    CaseStatus = "AWAITING_RESPONSE"
	StatusAccepted            CaseStatus = "ACCEPTED"
	StatusPanelCreated        CaseStatus = "PANEL_CREATED"
	StatusMediationInProgress CaseStatus = "MEDIATION_IN_PROGRESS"
	StatusResolved            CaseStatus = "RESOLVED"
	StatusUnresolved          CaseStatus = "UNRESOLVED"
)

// statusTransitions is the closed transition table for the case lifecycle.
// The order is monotonic except for the terminal RESOLVED/UNRESOLVED fork.
var statusTransitions = map[CaseStatus][]CaseStatus{
	StatusPending:             {StatusAwaitingResponse},
	StatusAwaitingResponse:    {StatusAccepted},
	StatusAccepted:            {StatusPanelCreated},
	StatusPanelCreated:        {StatusMediationInProgress},
	StatusMediationInProgress: {StatusResolved, StatusUnresolved},
	StatusResolved:            {},
	StatusUnresolved:          {},
}

// Valid reports whether s is one of the known lifecycle states.
func (s CaseStatus) Valid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal
// lifecycle transition.
func (s CaseStatus) CanTransitionTo(next CaseStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (s CaseStatus) Terminal() bool {
	return s.Valid() && len(statusTransitions[s]) == 0
}

// LegalStatus records whether a dispute is already pending before an
// external court or police authority.
type LegalStatus string

const (
	LegalPendingInCourt  LegalStatus = "PENDING_IN_COURT"
	LegalPendingInPolice LegalStatus = "PENDING_IN_POLICE"
	LegalNotRegistered   LegalStatus = "NOT_REGISTERED"
)

// Valid reports whether l is one of the known legal statuses.
func (l LegalStatus) Valid() bool {
	switch l {
	case LegalPendingInCourt, LegalPendingInPolice, LegalNotRegistered:
		return true
	}
	return false
}

// StatusColor maps lifecycle states to the badge colors used by clients.
var StatusColor = map[CaseStatus]string{
	StatusPending:             "yellow",
	StatusAwaitingResponse:    "orange",
	StatusAccepted:            "blue",
	StatusPanelCreated:        "purple",
	StatusMediationInProgress: "cyan",
	StatusResolved:            "green",
	StatusUnresolved:          "red",
}

// CaseTypeColor maps case types to the badge colors used by clients.
var CaseTypeColor = map[CaseType]string{
	CaseTypeFamily:    "pink",
	CaseTypeBusiness:  "blue",
	CaseTypeCriminal:  "red",
	CaseTypeCommunity: "green",
	CaseTypeOther:     "gray",
}

// Address is the optional postal address owned by exactly one User.
// It has no identity of its own and is written only as part of a user write.
type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	ZipCode string `json:"zipCode" db:"zip_code"`
}

// User is any natural person referenced by a case: claimant, opposite
// party, or panel member. Users are created before any case references
// them and outlive the cases that do.
type User struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Birthday  time.Time `json:"birthday" db:"birthday"`
	Gender    string    `json:"gender" db:"gender"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	PhotoURL  string    `json:"photoUrl,omitempty" db:"photo_url"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Witness is a named third party attached to a case at creation time.
// Witnesses are batch-created with the case and never updated on their own.
type Witness struct {
	ID      uuid.UUID `json:"id" db:"id"`
	CaseID  uuid.UUID `json:"caseId" db:"case_id"`
	Name    string    `json:"name" db:"name"`
	Contact string    `json:"contact" db:"contact"`
}

// Case is the central dispute record tracked through the status lifecycle.
// Claimant and OppositeParty are references, not owned records.
type Case struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	CaseType       CaseType        `json:"caseType" db:"case_type"`
	Description    string          `json:"description" db:"description"`
	Status         CaseStatus      `json:"status" db:"status"`
	LegalStatus    LegalStatus     `json:"legalStatus,omitempty" db:"legal_status"`
	LegalExtraInfo string          `json:"legalExtraInfo,omitempty" db:"legal_extra_info"`
	ProofFiles     []string        `json:"proofFiles" db:"proof_files"`
	ClaimantID     uuid.UUID       `json:"claimantId" db:"claimant_id"`
	Claimant       *User           `json:"claimant,omitempty"`
	OppositeID     uuid.UUID       `json:"oppositePartyId" db:"opposite_party_id"`
	OppositeParty  *User           `json:"oppositeParty,omitempty"`
	Witnesses      []Witness       `json:"witnesses"`
	Panel          *MediationPanel `json:"panel,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time       `json:"updatedAt" db:"updated_at"`
}

// MediationPanel is the set of three facilitators assigned to a case.
// A case holds at most one panel.
type MediationPanel struct {
	ID             uuid.UUID `json:"id" db:"id"`
	CaseID         uuid.UUID `json:"caseId" db:"case_id"`
	LawyerID       uuid.UUID `json:"lawyerId" db:"lawyer_id"`
	ReligiousID    uuid.UUID `json:"religiousId" db:"religious_id"`
	CommunityRepID uuid.UUID `json:"communityRepId" db:"community_rep_id"`
	Case           *Case     `json:"case,omitempty"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// AddressInput is the address payload accepted on user writes.
type AddressInput struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
}

// CreateUserRequest is the request body for registering a party.
// Birthday is a YYYY-MM-DD calendar date.
type CreateUserRequest struct {
	Name     string        `json:"name"`
	Birthday string        `json:"birthday"`
	Gender   string        `json:"gender"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	PhotoURL string        `json:"photoUrl,omitempty"`
	Address  *AddressInput `json:"address,omitempty"`
}

// UpdateUserRequest merges the provided fields into an existing user.
// A supplied address replaces the owned address wholesale.
type UpdateUserRequest struct {
	Name     *string       `json:"name,omitempty"`
	Birthday *string       `json:"birthday,omitempty"`
	Gender   *string       `json:"gender,omitempty"`
	Email    *string       `json:"email,omitempty"`
	Phone    *string       `json:"phone,omitempty"`
	PhotoURL *string       `json:"photoUrl,omitempty"`
	Address  *AddressInput `json:"address,omitempty"`
}

// WitnessInput is a witness entry supplied at case creation.
type WitnessInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// CreateCaseRequest is the request body for filing a new case.
type CreateCaseRequest struct {
	CaseType           string         `json:"caseType"`
	Description        string         `json:"description"`
	LegalStatus        string         `json:"legalStatus,omitempty"`
	LegalExtraInfo     string         `json:"legalExtraInfo,omitempty"`
	ClaimantID         string         `json:"claimantId"`
	OppositePartyID    string         `json:"oppositePartyId"`
	OppositePartyEmail string         `json:"oppositePartyEmail,omitempty"`
	Witnesses          []WitnessInput `json:"witnesses,omitempty"`
	ProofFiles         []string       `json:"proofFiles,omitempty"`
}

// UpdateCaseRequest merges the provided fields into an existing case.
// Case type and party references are immutable after creation and are
// deliberately absent here.
type UpdateCaseRequest struct {
	Description    *string  `json:"description,omitempty"`
	LegalStatus    *string  `json:"legalStatus,omitempty"`
	LegalExtraInfo *string  `json:"legalExtraInfo,omitempty"`
	ProofFiles     []string `json:"proofFiles,omitempty"`
	Status         *string  `json:"status,omitempty"`
}

// CreatePanelRequest is the request body for registering a mediation panel.
type CreatePanelRequest struct {
	LawyerID       string `json:"lawyerId"`
	ReligiousID    string `json:"religiousId"`
	CommunityRepID string `json:"communityRepId"`
	CaseID         string `json:"caseId"`
}

// HealthStatus represents the server health check response.
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database,omitempty"`
}
