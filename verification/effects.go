package verification

import (
	"github.com/sdy329/bigbro-fork/config"
	"github.com/sdy329/bigbro-fork/database"
)

// Effect - a side effect decided by the pipeline and executed by the
// caller's effect runner. The pipeline itself never touches the platform.
type Effect interface {
	isEffect()
}

// Notify - message for the submitter (ephemeral reply or DM, depending on
// where the transition was triggered from)
type Notify struct {
	Color   int
	Message string
}

// SetNickname - set the subject's guild nickname
type SetNickname struct {
	UserID   string
	Nickname string
	Reason   string
}

// AddRoles - grant roles to the subject
type AddRoles struct {
	UserID  string
	RoleIDs []string
	Reason  string
}

// PostWelcome - post the welcome message in the verified channel
type PostWelcome struct {
	ChannelID string
	UserID    string
}

// OpenReview - anchor a manual review: ensure the subject's review thread
// exists under the verification channel and post the request there
type OpenReview struct {
	ChannelID string
	Pending   database.PendingVerification
}

func (Notify) isEffect()      {}
func (SetNickname) isEffect() {}
func (AddRoles) isEffect()    {}
func (PostWelcome) isEffect() {}
func (OpenReview) isEffect()  {}

// grantEffects - the one place grant side effects are computed, shared by
// the auto-grant branch and moderator approval so the two paths cannot
// diverge
func grantEffects(claim Claim, gs database.GuildSettings) []Effect {
	nickname := claim.Name
	if claim.TeamID != "" {
		nickname += config.NicknameSeparator + claim.Program.TeamLabel(claim.TeamID)
	}

	const reason = "Automatic verification"
	return []Effect{
		SetNickname{UserID: claim.UserID, Nickname: nickname, Reason: reason},
		AddRoles{UserID: claim.UserID, RoleIDs: []string{gs.VerifiedRole, claim.Program.RoleID}, Reason: reason},
		PostWelcome{ChannelID: gs.VerifiedChannel, UserID: claim.UserID},
		Notify{Color: config.ColorGreen, Message: "You now have access to the server!"},
	}
}
