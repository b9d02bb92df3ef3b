// Package services contains business logic layers.
// Services are called by handlers and interact with the stores.
package services

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/models"
	"github.com/mediatiff/mediation-server/internal/store"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[1-9]\d{1,14}$`)
)

const birthdayLayout = "2006-01-02"

// UserService is the party directory: it manages the people referenced by
// cases (claimants, opposite parties, panel members).
type UserService struct {
	users  store.UserStore
	cases  store.CaseStore
	logger *zap.SugaredLogger
}

// NewUserService creates a new party directory service.
func NewUserService(users store.UserStore, cases store.CaseStore, logger *zap.SugaredLogger) *UserService {
	return &UserService{users: users, cases: cases, logger: logger}
}

// Create registers a party. The address, when supplied, is created
// atomically with the user.
func (s *UserService) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	missing := []string{}
	if req.Name == "" {
		missing = append(missing, "name")
	}
	if req.Birthday == "" {
		missing = append(missing, "birthday")
	}
	if req.Gender == "" {
		missing = append(missing, "gender")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing...)
	}

	if len(req.Name) < 2 {
		return nil, apperr.Validation("name must be at least 2 characters")
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, apperr.Validation("invalid email format")
	}
	if !phonePattern.MatchString(req.Phone) {
		return nil, apperr.Validation("invalid phone number format")
	}
	birthday, err := time.Parse(birthdayLayout, req.Birthday)
	if err != nil {
		return nil, apperr.Validation("birthday must be a YYYY-MM-DD date")
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Name:      req.Name,
		Birthday:  birthday,
		Gender:    req.Gender,
		Email:     req.Email,
		Phone:     req.Phone,
		PhotoURL:  req.PhotoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Address != nil {
		user.Address = &models.Address{
			Street:  req.Address.Street,
			City:    req.Address.City,
			ZipCode: req.Address.ZipCode,
		}
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Infow("User created", "id", user.ID, "email", user.Email)
	return user, nil
}

// FindByEmail looks a party up by its unique email.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apperr.MissingFields("email")
	}
	return s.users.GetByEmail(ctx, email)
}

// Get fetches a party by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns every directory entry. No pagination; acceptable at this
// system's scale.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

// Update merges the provided fields into the user. A supplied address
// replaces the owned one wholesale.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error) {
	if req.Email != nil && !emailPattern.MatchString(*req.Email) {
		return nil, apperr.Validation("invalid email format")
	}
	if req.Phone != nil && !phonePattern.MatchString(*req.Phone) {
		return nil, apperr.Validation("invalid phone number format")
	}
	if req.Birthday != nil {
		if _, err := time.Parse(birthdayLayout, *req.Birthday); err != nil {
			return nil, apperr.Validation("birthday must be a YYYY-MM-DD date")
		}
	}

	upd := store.UserUpdate{
		Name:     req.Name,
		Birthday: req.Birthday,
		Gender:   req.Gender,
		Email:    req.Email,
		Phone:    req.Phone,
		PhotoURL: req.PhotoURL,
	}
	if req.Address != nil {
		upd.Address = &models.Address{
			Street:  req.Address.Street,
			City:    req.Address.City,
			ZipCode: req.Address.ZipCode,
		}
	}

	user, err := s.users.Update(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.logger.Infow("User updated", "id", id)
	return user, nil
}

// Delete removes a party. Deletion is refused while any case still
// references the user, so case records never point at ghosts.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	count, err := s.cases.CountByParty(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.Validationf("user is referenced by %d case(s) and cannot be deleted", count)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("User deleted", "id", id)
	return nil
}
