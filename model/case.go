package model

// Case types. A case is one ledger entry describing an enforcement or
// utility action. The database table is named 'cases'.
const (
	CaseTypeKick          = "kick"
	CaseTypeBan           = "ban"
	CaseTypeUnban         = "unban"
	CaseTypeTimeout       = "timeout"
	CaseTypeWarn          = "warn"
	CaseTypeTempban       = "tempban"
	CaseTypePurge         = "purge"
	CaseTypeLock          = "lock"
	CaseTypeUnlock        = "unlock"
	CaseTypeAutomodFilter = "automod_filter"
	CaseTypeAutomodInvite = "automod_invite"
	CaseTypeAutomodSpam   = "automod_spam"
)

// UtilityCaseTypes are the case types that record channel housekeeping
// rather than user punishment.
var UtilityCaseTypes = []string{CaseTypePurge, CaseTypeLock, CaseTypeUnlock}

// SystemActorID marks cases created by the bot itself rather than a moderator.
const SystemActorID = "system"

// Case represents a single moderation case record.
// DurationSeconds is only set for timeout/tempban, ExpiresAt only for
// tempban, Category only for warn. Everything except Reason is immutable
// after insertion.
type Case struct {
	ID                 int64  `db:"case_id"` // Primary Key, Auto-increment
	GuildID            string `db:"guild_id"`
	Type               string `db:"type"`
	SubjectID          string `db:"subject_id"`
	SubjectTag         string `db:"subject_tag"`
	ActorID            string `db:"actor_id"`
	ActorTag           string `db:"actor_tag"`
	Reason             string `db:"reason"`
	DurationSeconds    int64  `db:"duration_seconds"` // 0 when not applicable
	Category           string `db:"category"`
	ExpiresAt          int64  `db:"expires_at"` // Unix seconds, 0 when not applicable
	ThresholdTriggered bool   `db:"threshold_triggered"`
	CreatedAt          int64  `db:"created_at"` // Unix seconds, assigned at insertion
}

// Action is one step of a configured enforcement action list.
type Action int

const (
	ActionDelete Action = iota
	ActionWarn
	ActionTimeout
	ActionKick
)

func (a Action) String() string {
	switch a {
	case ActionDelete:
		return "delete"
	case ActionWarn:
		return "warn"
	case ActionTimeout:
		return "timeout"
	case ActionKick:
		return "kick"
	}
	return "unknown"
}

// ParseAction maps a configured action name to its Action value.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "delete":
		return ActionDelete, true
	case "warn":
		return ActionWarn, true
	case "timeout":
		return ActionTimeout, true
	case "kick":
		return ActionKick, true
	}
	return 0, false
}

// MessageRef identifies one platform message for deletion.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// WarningThresholdRule promotes a warning count to a harsher action once
// Count active warnings are reached.
type WarningThresholdRule struct {
	Count    int    `mapstructure:"count"`
	Action   string `mapstructure:"action"`   // timeout | kick | ban
	Duration string `mapstructure:"duration"` // duration spec such as "1h", optional
}

// ThresholdAction is the decision produced by the escalation engine when a
// warning threshold is crossed.
type ThresholdAction struct {
	Action          string
	DurationSeconds int64
	Reason          string
	ThresholdCount  int
}
