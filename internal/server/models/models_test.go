package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Public_StripsSecrets(t *testing.T) {
	u := &User{
		FirstName:    "Ann",
		LastName:     "Lee",
		UserName:     "annlee",
		Email:        "ann@x.com",
		PasswordHash: "$2a$10$hash",
		RefreshToken: "refresh.jwt.value",
	}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	assert.JSONEq(t, `{"firstname":"Ann","lastname":"Lee","username":"annlee","email":"ann@x.com"}`, string(b))
	assert.NotContains(t, string(b), "hash")
	assert.NotContains(t, string(b), "refresh.jwt.value")
}

func TestTaskPatch_Empty(t *testing.T) {
	done := true
	owner := "annlee"

	assert.True(t, TaskPatch{TaskID: "t1"}.Empty())
	assert.True(t, TaskPatch{TaskID: "t1", UserName: &owner}.Empty(), "username alone is not an update")
	assert.False(t, TaskPatch{TaskID: "t1", IsCompleted: &done}.Empty())
}
