package config

// PermsCode - minimal channel perms for the bot to operate (view, send,
// embed links, attach files)
const PermsCode int64 = 0x8000 | 0x800 | 0x4000 | 0x400

// Embed colors per action category
const (
	ColorGreen  int = 0x57F287
	ColorBlue   int = 0x3498DB
	ColorRed    int = 0xED4245
	ColorYellow int = 0xFEE75C
)

// Component custom IDs
const (
	ButtonVerify  string = "verify"
	ButtonApprove string = "approve"
	ButtonDeny    string = "deny"
	ButtonPrev    string = "prev"
	ButtonNext    string = "next"
	SelectLogView string = "category"
)

// ModalVerify - custom ID of the verification modal
const ModalVerify string = "verify-modal"

// Verification modal input IDs
const (
	InputName        string = "name"
	InputProgram     string = "program"
	InputTeam        string = "team"
	InputExplanation string = "explanation"
)

// NicknameSeparator - separator between a verified member's name and team
const NicknameSeparator string = "│"

// LogPageSize - rows per page of the moderation logs leaderboard view
const LogPageSize int = 5

// LeaderboardSize - rows on the guild-wide message leaderboard
const LeaderboardSize int = 20

// UserURL - profile link for a user ID
func UserURL(userID string) string {
	return "https://discord.com/users/" + userID
}

// MessageURL - jump link for a message
func MessageURL(guildID, channelID, messageID string) string {
	return "https://discord.com/channels/" + guildID + "/" + channelID + "/" + messageID
}
