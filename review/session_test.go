package review

import (
	"testing"

	"accessreview/codes"
	"accessreview/roster"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRoster(t *testing.T) *roster.Roster {
	t.Helper()
	r, _, err := roster.Normalize([]roster.File{{
		Name: "roster.csv",
		Data: []byte("User ID,User Name,Role,Role Name,Supervisor\n" +
			"E1,Alice,R1,Admin,Jordan\n" +
			"E2,Bob,R2,Viewer,Jordan\n" +
			"E3,Carol,R3,Editor,Casey\n"),
	}})
	require.NoError(t, err)
	return r
}

var testCodes = map[string]string{"Jordan": "4242", "Casey": "1717"}

func TestStartWithValidCode(t *testing.T) {
	s := NewSession()
	assert.Equal(t, AwaitingCode, s.Phase)

	err := s.Start("4242", testCodes, testRoster(t))
	require.NoError(t, err)
	assert.Equal(t, InReview, s.Phase)
	assert.Equal(t, "Jordan", s.Supervisor)
	require.Len(t, s.Team, 2)
	assert.Equal(t, "E1 - Alice", s.Team[0].Label())
}

func TestStartWithUnknownCodeStaysAwaiting(t *testing.T) {
	s := NewSession()

	err := s.Start("0000", testCodes, testRoster(t))
	assert.ErrorIs(t, err, codes.ErrNotFound)
	assert.Equal(t, AwaitingCode, s.Phase)
	assert.Empty(t, s.Supervisor)
}

func TestTogglesAreIndependent(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("4242", testCodes, testRoster(t)))

	// Сотрудник может оказаться и в approve, и в remove одновременно
	s.ToggleApprove(0)
	s.ToggleRemove(0)
	assert.True(t, s.IsApproved(0))
	assert.True(t, s.IsRemoved(0))

	s.ToggleApprove(0)
	assert.False(t, s.IsApproved(0))
	assert.True(t, s.IsRemoved(0))

	// Индекс за пределами команды игнорируется
	s.ToggleApprove(99)
	s.ToggleRemove(-1)
}

func TestApproveAllAllowsOverride(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("4242", testCodes, testRoster(t)))

	s.ApproveAll()
	assert.True(t, s.IsApproved(0))
	assert.True(t, s.IsApproved(1))
	assert.False(t, s.IsRemoved(0))

	s.ToggleApprove(1)
	assert.False(t, s.IsApproved(1))
}

func TestSubmitCollectsLabelsInTeamOrder(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("4242", testCodes, testRoster(t)))

	s.ToggleApprove(0)
	s.ToggleRemove(1)

	approved, removed := s.Submit()
	assert.Equal(t, Completed, s.Phase)
	assert.Equal(t, []string{"E1 - Alice"}, approved)
	assert.Equal(t, []string{"E2 - Bob"}, removed)
}

func TestSubmitEmptyDecisions(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("1717", testCodes, testRoster(t)))

	approved, removed := s.Submit()
	assert.Empty(t, approved)
	assert.Empty(t, removed)
	assert.Equal(t, Completed, s.Phase)
}

func TestResetClearsEverything(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("4242", testCodes, testRoster(t)))
	s.ApproveAll()
	s.Submit()

	s.Reset()
	assert.Equal(t, AwaitingCode, s.Phase)
	assert.Empty(t, s.Supervisor)
	assert.Nil(t, s.Team)

	// Сессия пригодна для новой проверки другим кодом
	require.NoError(t, s.Start("1717", testCodes, testRoster(t)))
	assert.Equal(t, "Casey", s.Supervisor)
	require.Len(t, s.Team, 1)
}
