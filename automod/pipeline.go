package automod

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"modbot/automod/spam"
	"modbot/model"
)

// minSpamCheckLength is the shortest message the spam stage considers;
// anything shorter cannot meaningfully match.
const minSpamCheckLength = 5

var inviteRegex = regexp.MustCompile(`(?i)(?:discord\.gg|discord\.com/invite|discordapp\.com/invite)/([a-zA-Z0-9-]+)`)

// InboundMessage is the slice of a platform message the pipeline needs.
type InboundMessage struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorID  string
	AuthorTag string
	RoleIDs   []string
	Content   string
}

// Pipeline evaluates inbound messages against the configured filters.
// Filters run in fixed priority order (spam, words, invites); the first
// match handles the message and later stages are skipped.
type Pipeline struct {
	Detector *spam.Detector
	Messages model.MessageGateway
	Executor *Executor
}

// Process runs one message through the filter stages.
func (p *Pipeline) Process(msg InboundMessage, cfg model.AutoModConfig) {
	if p.runSpamStage(msg, cfg.Spam) {
		return
	}
	if p.runWordStage(msg, cfg.Words) {
		return
	}
	p.runInviteStage(msg, cfg.Invites)
}

func (p *Pipeline) runSpamStage(msg InboundMessage, cfg model.SpamFilterConfig) bool {
	if !cfg.Enabled || isExempt(msg, cfg.FilterCommon) {
		return false
	}
	if utf8.RuneCountInString(msg.Content) < minSpamCheckLength {
		return false
	}

	result := p.Detector.Check(msg.GuildID, msg.AuthorID, msg.Content, cfg)
	if !result.IsSpam {
		p.Detector.Track(msg.GuildID, msg.AuthorID, model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.MessageID}, msg.Content)
		return false
	}

	p.deleteMessage(model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.MessageID})
	for _, ref := range result.MatchedRefs {
		p.deleteMessage(ref)
	}

	// Drop the history so the same burst cannot immediately re-trigger.
	p.Detector.Clear(msg.GuildID, msg.AuthorID)

	p.execute(msg, cfg.FilterCommon, model.CaseTypeAutomodSpam,
		fmt.Sprintf("Spam detected: %d similar messages", result.SimilarCount))
	return true
}

func (p *Pipeline) runWordStage(msg InboundMessage, cfg model.WordFilterConfig) bool {
	if !cfg.Enabled || isExempt(msg, cfg.FilterCommon) {
		return false
	}

	content := strings.ToLower(msg.Content)
	for _, word := range cfg.BannedWords {
		if word == "" || !strings.Contains(content, strings.ToLower(word)) {
			continue
		}
		p.deleteMessage(model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.MessageID})
		p.execute(msg, cfg.FilterCommon, model.CaseTypeAutomodFilter, "Banned word or phrase")
		return true
	}
	return false
}

func (p *Pipeline) runInviteStage(msg InboundMessage, cfg model.InviteFilterConfig) bool {
	if !cfg.Enabled || isExempt(msg, cfg.FilterCommon) {
		return false
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedCodes))
	for _, code := range cfg.AllowedCodes {
		allowed[code] = struct{}{}
	}

	for _, match := range inviteRegex.FindAllStringSubmatch(msg.Content, -1) {
		if _, ok := allowed[match[1]]; ok {
			continue
		}
		p.deleteMessage(model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.MessageID})
		p.execute(msg, cfg.FilterCommon, model.CaseTypeAutomodInvite, "Unauthorized invite link")
		return true
	}
	return false
}

func (p *Pipeline) execute(msg InboundMessage, cfg model.FilterCommon, caseType, reason string) {
	_, err := p.Executor.Execute(Incident{
		GuildID:         msg.GuildID,
		CaseType:        caseType,
		SubjectID:       msg.AuthorID,
		SubjectTag:      msg.AuthorTag,
		ActorID:         model.SystemActorID,
		ActorTag:        "AutoMod",
		Reason:          reason,
		TimeoutDuration: cfg.TimeoutDuration,
	}, cfg.Actions)
	if err != nil {
		log.Printf("Failed to execute automod actions for user %s: %v", msg.AuthorID, err)
	}
}

func (p *Pipeline) deleteMessage(ref model.MessageRef) {
	// A message already gone is not an error worth surfacing.
	if err := p.Messages.DeleteMessage(ref); err != nil {
		log.Printf("Failed to delete message %s: %v", ref.MessageID, err)
	}
}

func isExempt(msg InboundMessage, cfg model.FilterCommon) bool {
	for _, channelID := range cfg.ExemptChannels {
		if channelID == msg.ChannelID {
			return true
		}
	}
	for _, roleID := range cfg.ExemptRoles {
		for _, memberRole := range msg.RoleIDs {
			if roleID == memberRole {
				return true
			}
		}
	}
	return false
}
