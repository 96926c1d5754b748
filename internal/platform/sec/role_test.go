// Copyright (c) 2026 NutriSync. All rights reserved.

package sec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RolePatient.Valid())
	assert.True(t, RoleDoctor.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("superuser").Valid())
	assert.False(t, Role("").Valid())
}

func TestRoleInIsFlatMembership(t *testing.T) {
	// Roles are a flat set: admin does not implicitly pass a doctor gate.
	assert.True(t, RoleDoctor.In(RoleDoctor, RoleAdmin))
	assert.False(t, RoleAdmin.In(RoleDoctor))
	assert.False(t, RolePatient.In(RoleDoctor, RoleAdmin))
	assert.False(t, RolePatient.In())
}

func TestRegistrationRole(t *testing.T) {
	testCases := []struct {
		requested string
		granted   Role
	}{
		{"patient", RolePatient},
		{"doctor", RoleDoctor},
		{"admin", RolePatient},
		{"", RolePatient},
		{"nonsense", RolePatient},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.granted, RegistrationRole(testCase.requested),
			"requested role %q", testCase.requested)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2-secret")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter2-secret", hash)

	assert.True(t, CheckPasswordHash("hunter2-secret", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}
