package game

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raminperspolisi/MafiaVERSE-backend/internal"
)

func countRoles(roles []internal.Role) map[internal.Role]int {
	counts := make(map[internal.Role]int)
	for _, r := range roles {
		counts[r]++
	}
	return counts
}

func TestProportionalRoles(t *testing.T) {
	tests := []struct {
		n         int
		mafia     int
		doctor    int
		detective int
	}{
		{n: 4, mafia: 1, doctor: 1, detective: 1},
		{n: 5, mafia: 1, doctor: 1, detective: 1},
		{n: 6, mafia: 2, doctor: 1, detective: 1},
		{n: 8, mafia: 2, doctor: 1, detective: 1},
		{n: 9, mafia: 3, doctor: 1, detective: 1},
		{n: 12, mafia: 4, doctor: 1, detective: 1},
	}
	for _, tt := range tests {
		roles := ProportionalRoles(tt.n)
		require.Len(t, roles, tt.n, "n=%d", tt.n)

		counts := countRoles(roles)
		assert.Equal(t, tt.mafia, counts[internal.RoleMafia], "mafia for n=%d", tt.n)
		assert.Equal(t, tt.doctor, counts[internal.RoleDoctor], "doctor for n=%d", tt.n)
		assert.Equal(t, tt.detective, counts[internal.RoleDetective], "detective for n=%d", tt.n)
		assert.Equal(t, tt.n-tt.mafia-tt.doctor-tt.detective, counts[internal.RoleCitizen], "citizens for n=%d", tt.n)
	}
}

func TestRolesFromSettings(t *testing.T) {
	settings := internal.RoleSettings{
		MafiaCount: 2, DoctorCount: 1, DetectiveCount: 1,
		SniperCount: 1, BodyguardCount: 1, CitizenCount: 2,
	}

	roles, err := RolesFromSettings(settings, 8)
	require.NoError(t, err)
	require.Len(t, roles, 8)
	assert.Equal(t, 2, countRoles(roles)[internal.RoleMafia])

	_, err = RolesFromSettings(settings, 9)
	require.ErrorIs(t, err, internal.ErrValidation)
}

func TestClassicTenScenario(t *testing.T) {
	roles, err := RolesForRoom(internal.RoleSettings{ClassicTen: true}, 10)
	require.NoError(t, err)
	require.Len(t, roles, 10)

	mafiaAligned := 0
	for _, r := range roles {
		if r.Faction() == internal.FactionMafia {
			mafiaAligned++
		}
	}
	assert.Equal(t, 3, mafiaAligned)

	// Every role in the scenario is distinct.
	counts := countRoles(roles)
	assert.Len(t, counts, 10)

	_, err = RolesForRoom(internal.RoleSettings{ClassicTen: true}, 8)
	require.ErrorIs(t, err, internal.ErrValidation)
}

func TestAssignRolesPreservesMultiset(t *testing.T) {
	players := []*internal.Player{
		{Id: "a"}, {Id: "b"}, {Id: "c"}, {Id: "d"}, {Id: "e"}, {Id: "f"},
	}
	roles := ProportionalRoles(len(players))
	require.NoError(t, AssignRoles(players, roles))

	var dealt []internal.Role
	for _, p := range players {
		require.NotEmpty(t, p.Role)
		dealt = append(dealt, p.Role)
	}

	want := append([]internal.Role(nil), roles...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	sort.Slice(dealt, func(i, j int) bool { return dealt[i] < dealt[j] })
	if diff := cmp.Diff(want, dealt); diff != "" {
		t.Errorf("dealt roles mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignRolesSizeMismatch(t *testing.T) {
	players := []*internal.Player{{Id: "a"}, {Id: "b"}}
	err := AssignRoles(players, []internal.Role{internal.RoleCitizen})
	require.ErrorIs(t, err, internal.ErrInvariantViolation)
}

func TestRoleDescriptions(t *testing.T) {
	for _, r := range classicTenRoles {
		assert.NotEmpty(t, RoleDescription(r), "role %s", r)
	}
}
