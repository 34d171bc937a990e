package model

import "time"

// Clock abstracts "now" so window pruning and expiry checks are testable.
type Clock interface {
	Now() time.Time
}

// Notifier delivers best-effort direct messages to users. Callers decide
// what to do with a failure; the notifier never hides it.
type Notifier interface {
	SendDirectMessage(userID, content string) error
}

// ModlogSink receives a human-readable record of each case.
type ModlogSink interface {
	Publish(c *Case) error
}

// CapabilityOracle answers whether the bot currently has sufficient
// standing over a subject for a given enforcement action. The core never
// inspects role hierarchies itself, it only branches on these.
type CapabilityOracle interface {
	CanTimeout(guildID, subjectID string) bool
	CanKick(guildID, subjectID string) bool
	CanBan(guildID, subjectID string) bool
}

// MemberGateway mutates guild membership state on the platform.
type MemberGateway interface {
	ApplyTimeout(guildID, subjectID string, seconds int64, reason string) error
	Kick(guildID, subjectID, reason string) error
	Ban(guildID, subjectID, reason string, retentionDays int) error
	Unban(guildID, subjectID, reason string) error
	IsBanned(guildID, subjectID string) (bool, error)
	GuildExists(guildID string) bool
}

// MessageGateway deletes platform messages, best-effort.
type MessageGateway interface {
	DeleteMessage(ref MessageRef) error
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
