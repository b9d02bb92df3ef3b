package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediatiff/mediation-server/internal/apperr"
	"github.com/mediatiff/mediation-server/internal/models"
)

func TestUserCreateWithAddressRoundTrip(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	created, err := f.users.Create(ctx, &models.CreateUserRequest{
		Name:     "Jane Doe",
		Birthday: "1990-01-01",
		Gender:   "Female",
		Email:    "jane@example.com",
		Phone:    "+15551234567",
		Address: &models.AddressInput{
			Street:  "123 Market St",
			City:    "San Francisco",
			ZipCode: "94105",
		},
	})
	require.NoError(t, err)
	require.NotEqual(t, "", created.ID.String())

	got, err := f.users.Get(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Address)
	assert.Equal(t, "123 Market St", got.Address.Street)
	assert.Equal(t, "San Francisco", got.Address.City)
	assert.Equal(t, "94105", got.Address.ZipCode)
	assert.Equal(t, "1990-01-01", got.Birthday.Format("2006-01-02"))
}

func TestUserCreateValidation(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.CreateUserRequest
	}{
		{"malformed email", models.CreateUserRequest{
			Name: "Jane Doe", Birthday: "1990-01-01", Gender: "Female",
			Email: "not-an-email", Phone: "+15551234567",
		}},
		{"malformed phone", models.CreateUserRequest{
			Name: "Jane Doe", Birthday: "1990-01-01", Gender: "Female",
			Email: "jane2@example.com", Phone: "phone",
		}},
		{"bad birthday", models.CreateUserRequest{
			Name: "Jane Doe", Birthday: "01/01/1990", Gender: "Female",
			Email: "jane3@example.com", Phone: "+15551234567",
		}},
		{"short name", models.CreateUserRequest{
			Name: "J", Birthday: "1990-01-01", Gender: "Female",
			Email: "jane4@example.com", Phone: "+15551234567",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.users.Create(ctx, &tt.req)
			assert.True(t, apperr.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestUserCreateMissingFieldsListed(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.users.Create(context.Background(), &models.CreateUserRequest{Email: "x@example.com"})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ElementsMatch(t, []string{"name", "birthday", "gender", "phone"}, ve.Fields)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	f := newFixture(t, true)
	f.mustCreateUser(t, "Jane Doe", "jane@example.com")

	_, err := f.users.Create(context.Background(), &models.CreateUserRequest{
		Name:     "Other Jane",
		Birthday: "1991-02-02",
		Gender:   "Female",
		Email:    "jane@example.com",
		Phone:    "+15557654321",
	})
	assert.True(t, apperr.IsValidation(err))
}

func TestUserFindByEmail(t *testing.T) {
	f := newFixture(t, true)
	created := f.mustCreateUser(t, "Jane Doe", "jane@example.com")

	got, err := f.users.FindByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.users.FindByEmail(context.Background(), "nobody@example.com")
	assert.True(t, apperr.IsNotFound(err))
}

func TestUserUpdateReplacesAddress(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	created := f.mustCreateUser(t, "Jane Doe", "jane@example.com")

	name := "Jane Q. Doe"
	updated, err := f.users.Update(ctx, created.ID, &models.UpdateUserRequest{
		Name:    &name,
		Address: &models.AddressInput{Street: "9 Elm St", City: "Oakland", ZipCode: "94601"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Q. Doe", updated.Name)
	require.NotNil(t, updated.Address)
	assert.Equal(t, "9 Elm St", updated.Address.Street)
	// untouched fields survive the merge
	assert.Equal(t, "jane@example.com", updated.Email)
}

func TestUserUpdateNotFound(t *testing.T) {
	f := newFixture(t, true)
	name := "Nobody"
	_, err := f.users.Update(context.Background(), newRandomID(t), &models.UpdateUserRequest{Name: &name})
	assert.True(t, apperr.IsNotFound(err))
}

func TestUserDeleteRefusedWhileReferenced(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	claimant := f.mustCreateUser(t, "Claimant", "claimant@example.com")
	opposite := f.mustCreateUser(t, "Opposite", "opposite@example.com")

	_, err := f.cases.Create(ctx, validCaseRequest(claimant, opposite))
	require.NoError(t, err)

	err = f.users.Delete(ctx, opposite.ID)
	assert.True(t, apperr.IsValidation(err))

	// an unreferenced user deletes fine
	bystander := f.mustCreateUser(t, "Bystander", "bystander@example.com")
	require.NoError(t, f.users.Delete(ctx, bystander.ID))
	_, err = f.users.Get(ctx, bystander.ID)
	assert.True(t, apperr.IsNotFound(err))
}
