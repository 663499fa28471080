package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"admissions_backend/internals/features/users/auth/model"
)

func TestUpdateUserRequestChanges(t *testing.T) {
	name := "  Meera Nair "
	phone := " "
	active := false
	got := UpdateUserRequest{FullName: &name, Phone: &phone, IsActive: &active}.Changes()
	assert.Equal(t, map[string]any{
		"user_full_name": "Meera Nair",
		"user_phone":     nil,
		"user_is_active": false,
	}, got)
	assert.Empty(t, UpdateUserRequest{}.Changes())
}

func TestCreateUserRequestToModel(t *testing.T) {
	m := CreateUserRequest{FullName: " Ravi ", Email: " Ravi@College.EDU ", Role: "accountant"}.ToModel("hash")
	assert.Equal(t, "Ravi", m.UserFullName)
	assert.Equal(t, "ravi@college.edu", m.UserEmail)
	assert.Equal(t, "hash", m.UserPassword)
	assert.True(t, m.UserIsActive)
}

func TestFromUserHidesSecrets(t *testing.T) {
	gid := "google-sub"
	r := FromUser(model.UserModel{UserID: uuid.New(), UserPassword: "hash", UserGoogleID: &gid})
	assert.True(t, r.UserHasGoogle)
	assert.Len(t, FromUsers([]model.UserModel{{}, {}}), 2)
}
