package verification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sdy329/bigbro-fork/database"
)

type mockRegistry struct {
	registered bool
	err        error
	calls      int
	lastIDs    []int
	lastNumber string
}

func (m *mockRegistry) TeamRegistered(_ context.Context, programIDs []int, number string) (bool, error) {
	m.calls++
	m.lastIDs = programIDs
	m.lastNumber = number
	return m.registered, m.err
}

type mockSettings struct {
	settings database.GuildSettings
	exists   bool
}

func (m *mockSettings) Settings(string) (database.GuildSettings, bool, error) {
	return m.settings, m.exists, nil
}

func newPipeline(registry *mockRegistry, settings *mockSettings) *Pipeline {
	return New(registry, settings, zap.NewNop().Sugar())
}

func configuredSettings() *mockSettings {
	return &mockSettings{
		settings: database.GuildSettings{
			VerificationChannel: "chan-verification",
			VerifiedRole:        "role-verified",
			VerifiedChannel:     "chan-verified",
		},
		exists: true,
	}
}

func notifyMessages(effects []Effect) []string {
	var messages []string
	for _, e := range effects {
		if n, ok := e.(Notify); ok {
			messages = append(messages, n.Message)
		}
	}
	return messages
}

func TestSubmitRejectsBlankName(t *testing.T) {
	registry := &mockRegistry{registered: true}
	p := newPipeline(registry, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "   ", Program: "FRC", Team: "118",
	})
	require.NoError(t, err)

	assert.Equal(t, StateValidating, out.State)
	require.Len(t, out.Effects, 1)
	assert.Contains(t, notifyMessages(out.Effects)[0], "at least 1 non-whitespace character")
	assert.Zero(t, registry.calls, "validation must short-circuit before the registry")
}

func TestSubmitRejectsDisallowedCharacters(t *testing.T) {
	p := newPipeline(&mockRegistry{registered: true}, configuredSettings())

	for _, name := range []string{"Алексей", "Alex😀", "Alex|118"} {
		out, err := p.Submit(context.Background(), "guild", Input{
			UserID: "user", Name: name, Program: "FRC", Team: "118",
		})
		require.NoError(t, err)
		assert.Equal(t, StateValidating, out.State, "name %q", name)
		assert.Contains(t, notifyMessages(out.Effects)[0], "may contain only", "name %q", name)
	}
}

func TestSubmitRejectsUnknownProgram(t *testing.T) {
	registry := &mockRegistry{registered: true}
	p := newPipeline(registry, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "chess club", Team: "118",
	})
	require.NoError(t, err)

	assert.Equal(t, StateValidating, out.State)
	messages := notifyMessages(out.Effects)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "`FRC`")
	assert.Contains(t, messages[0], "`None`")
	assert.Zero(t, registry.calls)
}

func TestSubmitMatchesProgramCaseInsensitively(t *testing.T) {
	registry := &mockRegistry{registered: true}
	p := newPipeline(registry, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "v5rc", Team: "123a",
	})
	require.NoError(t, err)

	assert.Equal(t, StateAutoGranted, out.State)
	assert.Equal(t, "V5RC", out.Claim.Program.Name)
	assert.Equal(t, "123A", out.Claim.TeamID, "team ID must be uppercased")
	assert.Equal(t, []int{1}, registry.lastIDs)
	assert.Equal(t, "123A", registry.lastNumber)
}

func TestSubmitRejectsMalformedTeamID(t *testing.T) {
	registry := &mockRegistry{registered: true}
	p := newPipeline(registry, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "FRC", Team: "99999",
	})
	require.NoError(t, err)

	assert.Equal(t, StateValidating, out.State)
	messages := notifyMessages(out.Effects)
	require.Len(t, messages, 1)
	assert.Contains(t, messages[0], "valid FRC team ID#")
	assert.Contains(t, messages[0], "`1234`")
	assert.Zero(t, registry.calls)
}

func TestSubmitRejectsUnregisteredTeam(t *testing.T) {
	p := newPipeline(&mockRegistry{registered: false}, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "V5RC", Team: "12345A",
	})
	require.NoError(t, err)

	assert.Equal(t, StateValidating, out.State)
	assert.Contains(t, notifyMessages(out.Effects)[0], "No V5RC team with ID# 12345A has ever been registered")
}

func TestSubmitPropagatesRegistryFailure(t *testing.T) {
	p := newPipeline(&mockRegistry{err: errors.New("connection refused")}, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "V5RC", Team: "12345A",
	})

	require.Error(t, err, "registry failure must stay distinct from an empty result")
	assert.Empty(t, out.Effects)
}

func TestSubmitSkipsRegistryForProgramsWithoutIDs(t *testing.T) {
	registry := &mockRegistry{registered: false}
	p := newPipeline(registry, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "FRC", Team: "118",
	})
	require.NoError(t, err)

	assert.Equal(t, StateAutoGranted, out.State)
	assert.Zero(t, registry.calls)
}

func TestSubmitSentinelRequiresExplanation(t *testing.T) {
	p := newPipeline(&mockRegistry{registered: true}, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Sam", Program: "None", Explanation: "  ",
	})
	require.NoError(t, err)

	assert.Equal(t, StateValidating, out.State)
	require.Len(t, out.Effects, 1)
	assert.Contains(t, notifyMessages(out.Effects)[0], "must provide an explanation")
}

func TestSubmitSentinelOpensReview(t *testing.T) {
	p := newPipeline(&mockRegistry{}, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Sam", Program: "none", Explanation: "Mentor for a local team",
	})
	require.NoError(t, err)

	assert.Equal(t, StateAwaitingReview, out.State)
	require.Len(t, out.Effects, 1)
	review, ok := out.Effects[0].(OpenReview)
	require.True(t, ok)
	assert.Equal(t, "chan-verification", review.ChannelID)
	assert.Equal(t, "guild", review.Pending.GuildID)
	assert.Equal(t, "user", review.Pending.UserID)
	assert.Equal(t, "Sam", review.Pending.Name)
	assert.Equal(t, "None", review.Pending.Program)
	assert.Equal(t, "Mentor for a local team", review.Pending.Explanation)

	// The review branch never grants anything.
	for _, e := range out.Effects {
		_, isGrant := e.(AddRoles)
		assert.False(t, isGrant)
	}
}

func TestSubmitNoOpWithoutVerifiedRole(t *testing.T) {
	settings := configuredSettings()
	settings.settings.VerifiedRole = ""
	p := newPipeline(&mockRegistry{registered: true}, settings)

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "FRC", Team: "118",
	})
	require.NoError(t, err)

	assert.Equal(t, StateValidating, out.State)
	assert.Empty(t, out.Effects, "unconfigured guilds get no side effects at all")
}

func TestSubmitAutoGrant(t *testing.T) {
	p := newPipeline(&mockRegistry{registered: true}, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user-1", Name: "Alex", Program: "FRC", Team: "118",
	})
	require.NoError(t, err)
	require.Equal(t, StateAutoGranted, out.State)
	require.Len(t, out.Effects, 4)

	nickname := out.Effects[0].(SetNickname)
	assert.Equal(t, "Alex│FRC 118", nickname.Nickname)
	assert.Equal(t, "user-1", nickname.UserID)

	roles := out.Effects[1].(AddRoles)
	assert.Equal(t, []string{"role-verified", "263900951738318849"}, roles.RoleIDs)

	welcome := out.Effects[2].(PostWelcome)
	assert.Equal(t, "chan-verified", welcome.ChannelID)
	assert.Equal(t, "user-1", welcome.UserID)

	_, ok := out.Effects[3].(Notify)
	assert.True(t, ok)
}

func TestSubmitCommonProgramUsesBareTeamID(t *testing.T) {
	p := newPipeline(&mockRegistry{registered: true}, configuredSettings())

	out, err := p.Submit(context.Background(), "guild", Input{
		UserID: "user", Name: "Alex", Program: "V5RC", Team: "118a",
	})
	require.NoError(t, err)
	require.Equal(t, StateAutoGranted, out.State)

	assert.Equal(t, "Alex│118A", out.Effects[0].(SetNickname).Nickname)
}

func TestApproveReplaysGrant(t *testing.T) {
	p := newPipeline(&mockRegistry{}, configuredSettings())

	out, err := p.Approve(database.PendingVerification{
		GuildID:     "guild",
		UserID:      "user-2",
		Name:        "Sam",
		Program:     "None",
		Explanation: "Mentor",
	})
	require.NoError(t, err)
	require.Equal(t, StateApproved, out.State)
	require.Len(t, out.Effects, 4)

	// Sentinel claims carry no team, so the nickname is the bare name.
	assert.Equal(t, "Sam", out.Effects[0].(SetNickname).Nickname)
	assert.Equal(t, []string{"role-verified", "197817210729791489"}, out.Effects[1].(AddRoles).RoleIDs)
}

func TestApproveNoOpWhenUnconfigured(t *testing.T) {
	p := newPipeline(&mockRegistry{}, &mockSettings{})

	out, err := p.Approve(database.PendingVerification{
		GuildID: "guild", UserID: "user", Name: "Sam", Program: "None",
	})
	require.NoError(t, err)
	assert.Equal(t, StateApproved, out.State)
	assert.Empty(t, out.Effects)
}

func TestDenyOnlyNotifies(t *testing.T) {
	p := newPipeline(&mockRegistry{}, configuredSettings())

	out := p.Deny(database.PendingVerification{GuildID: "guild", UserID: "user", Name: "Sam"})

	assert.Equal(t, StateDenied, out.State)
	require.Len(t, out.Effects, 1)
	_, ok := out.Effects[0].(Notify)
	assert.True(t, ok)
}
