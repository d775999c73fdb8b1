// Package verification decides what happens to an identity claim: it
// validates the submission, then either grants access, routes it to a
// manual-review thread, or rejects it. Decisions come back as side-effect
// intents so the pipeline can be exercised without a live session.
package verification

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
)

// State - where a submission is in the pipeline. Validation failures are
// terminal in StateValidating; unconfigured guilds never leave it either.
type State int

const (
	StateIntake State = iota
	StateValidating
	StateAutoGranted
	StateAwaitingReview
	StateApproved
	StateDenied
)

// RegistryClient confirms a claimed team has ever been registered.
type RegistryClient interface {
	TeamRegistered(ctx context.Context, programIDs []int, number string) (bool, error)
}

// SettingsSource resolves per-guild configuration.
type SettingsSource interface {
	Settings(guildID string) (database.GuildSettings, bool, error)
}

// Input - raw values from a verification submission
type Input struct {
	UserID      string
	Name        string
	Program     string
	Team        string
	Explanation string
}

// Claim - a validated submission
type Claim struct {
	UserID      string
	Name        string
	Program     config.Program
	TeamID      string
	Explanation string
}

// Outcome - terminal state of one pipeline invocation plus the side
// effects the caller must execute
type Outcome struct {
	State   State
	Claim   Claim
	Effects []Effect
}

// Pipeline orchestrates claim intake, validation and the grant/review
// branch.
type Pipeline struct {
	registry RegistryClient
	settings SettingsSource
	log      *zap.SugaredLogger
}

// New creates a Pipeline.
func New(registry RegistryClient, settings SettingsSource, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{registry: registry, settings: settings, log: log}
}

// Matches printable ASCII except '|', which would collide with the
// nickname separator.
var nameCharset = regexp.MustCompile(`^[ -{}~]*$`)

// Submit runs a claim through validation to one terminal branch. A
// returned error means an external dependency failed; everything
// user-recoverable is expressed as a Notify effect.
func (p *Pipeline) Submit(ctx context.Context, guildID string, in Input) (Outcome, error) {
	claim, reason, err := p.validate(ctx, in)
	if err != nil {
		return Outcome{State: StateValidating}, err
	}
	if reason != "" {
		return Outcome{
			State:   StateValidating,
			Effects: []Effect{Notify{Color: config.ColorRed, Message: reason}},
		}, nil
	}

	gs, _, err := p.settings.Settings(guildID)
	if err != nil {
		return Outcome{State: StateValidating}, fmt.Errorf("failed to load guild settings: %w", err)
	}

	if claim.Program.IsSentinel() {
		if gs.VerificationChannel == "" {
			p.log.Warnw("no verification channel configured, dropping review request",
				"guild", guildID, "user", claim.UserID)
			return Outcome{State: StateValidating, Claim: claim}, nil
		}
		return Outcome{
			State: StateAwaitingReview,
			Claim: claim,
			Effects: []Effect{OpenReview{
				ChannelID: gs.VerificationChannel,
				Pending: database.PendingVerification{
					GuildID:     guildID,
					UserID:      claim.UserID,
					Name:        claim.Name,
					Program:     claim.Program.Name,
					TeamID:      claim.TeamID,
					Explanation: claim.Explanation,
					Timestamp:   time.Now(),
				},
			}},
		}, nil
	}

	if gs.VerifiedRole == "" || gs.VerifiedChannel == "" {
		p.log.Warnw("verification not configured, dropping valid claim",
			"guild", guildID, "user", claim.UserID)
		return Outcome{State: StateValidating, Claim: claim}, nil
	}

	return Outcome{
		State:   StateAutoGranted,
		Claim:   claim,
		Effects: grantEffects(claim, gs),
	}, nil
}

// Approve replays the grant for a claim captured at review time. The same
// effect computation backs the auto-grant branch.
func (p *Pipeline) Approve(pending database.PendingVerification) (Outcome, error) {
	program, ok := config.ProgramNamed(pending.Program)
	if !ok {
		return Outcome{State: StateAwaitingReview}, fmt.Errorf("pending request references unknown program %q", pending.Program)
	}
	claim := Claim{
		UserID:      pending.UserID,
		Name:        pending.Name,
		Program:     program,
		TeamID:      pending.TeamID,
		Explanation: pending.Explanation,
	}

	gs, _, err := p.settings.Settings(pending.GuildID)
	if err != nil {
		return Outcome{State: StateAwaitingReview}, fmt.Errorf("failed to load guild settings: %w", err)
	}
	if gs.VerifiedRole == "" || gs.VerifiedChannel == "" {
		p.log.Warnw("verification not configured, approval has no effect",
			"guild", pending.GuildID, "user", pending.UserID)
		return Outcome{State: StateApproved, Claim: claim}, nil
	}

	return Outcome{
		State:   StateApproved,
		Claim:   claim,
		Effects: grantEffects(claim, gs),
	}, nil
}

// Deny notifies the submitter without granting anything.
func (p *Pipeline) Deny(pending database.PendingVerification) Outcome {
	return Outcome{
		State: StateDenied,
		Claim: Claim{UserID: pending.UserID, Name: pending.Name},
		Effects: []Effect{Notify{
			Color:   config.ColorRed,
			Message: "Your verification request has been denied. You may submit a new request with corrected information.",
		}},
	}
}

// validate applies the short-circuit validation chain. The first failing
// check wins; its reason comes back as a non-empty string. An error is
// only returned for registry failures.
func (p *Pipeline) validate(ctx context.Context, in Input) (Claim, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Claim{}, "Name or preferred nickname must contain at least 1 non-whitespace character", nil
	}
	if !nameCharset.MatchString(name) {
		return Claim{}, "Name or preferred nickname may contain only the following non-alphanumeric characters: `` !\"#$%&'()*+,-./:;<=>?@[\\]^_`{}~ ``", nil
	}

	program, ok := config.ProgramNamed(strings.TrimSpace(in.Program))
	if !ok {
		names := config.ProgramNames()
		for i, n := range names {
			names[i] = "`" + n + "`"
		}
		return Claim{}, "Robotics competition program must be one of: " + strings.Join(names, ", "), nil
	}

	teamID := strings.ToUpper(strings.TrimSpace(in.Team))
	if program.TeamPattern != nil && !program.TeamPattern.MatchString(teamID) {
		examples := make([]string, len(program.TeamExamples))
		for i, e := range program.TeamExamples {
			examples[i] = "`" + e + "`"
		}
		return Claim{}, fmt.Sprintf(
			"Robotics competition team ID# must be a valid %s team ID#, for example: %s",
			program.Name, strings.Join(examples, ", ")), nil
	}

	if len(program.RegistryIDs) > 0 {
		registered, err := p.registry.TeamRegistered(ctx, program.RegistryIDs, teamID)
		if err != nil {
			return Claim{}, "", fmt.Errorf("registry lookup for %s team %s failed: %w", program.Name, teamID, err)
		}
		if !registered {
			return Claim{}, fmt.Sprintf("No %s team with ID# %s has ever been registered", program.Name, teamID), nil
		}
	}

	explanation := strings.TrimSpace(in.Explanation)
	if program.IsSentinel() && explanation == "" {
		return Claim{}, fmt.Sprintf(
			"By entering a robotics competition program of `%s`, you must provide an explanation", program.Name), nil
	}

	return Claim{
		UserID:      in.UserID,
		Name:        name,
		Program:     program,
		TeamID:      teamID,
		Explanation: explanation,
	}, "", nil
}
