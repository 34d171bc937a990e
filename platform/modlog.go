package platform

import (
	"fmt"
	"time"

	"modbot/model"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

// ChannelModlog publishes cases as embeds to each guild's configured
// modlog channel. Guilds without a channel are a silent no-op.
type ChannelModlog struct {
	Session  *discordgo.Session
	Channels func(guildID string) string
}

var _ model.ModlogSink = (*ChannelModlog)(nil)

var caseColors = map[string]int{
	model.CaseTypeWarn:          0xFEE75C,
	model.CaseTypeTimeout:       0xE67E22,
	model.CaseTypeKick:          0xE67E22,
	model.CaseTypeBan:           0xED4245,
	model.CaseTypeTempban:       0xED4245,
	model.CaseTypeUnban:         0x57F287,
	model.CaseTypeAutomodSpam:   0xED4245,
	model.CaseTypeAutomodFilter: 0xED4245,
	model.CaseTypeAutomodInvite: 0xED4245,
}

// Publish sends the case embed to the guild's modlog channel.
func (m *ChannelModlog) Publish(c *model.Case) error {
	channelID := m.Channels(c.GuildID)
	if channelID == "" {
		return nil
	}

	color, ok := caseColors[c.Type]
	if !ok {
		color = 0x5865F2
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Subject", Value: subjectLine(c.SubjectID, c.SubjectTag), Inline: true},
		{Name: "Moderator", Value: actorLine(c.ActorID, c.ActorTag), Inline: true},
		{Name: "Reason", Value: orDash(c.Reason), Inline: false},
	}
	if c.DurationSeconds > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Duration", Value: utils.FormatDurationSeconds(c.DurationSeconds), Inline: true,
		})
	}
	if c.Category != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Category", Value: c.Category, Inline: true,
		})
	}

	title := fmt.Sprintf("Case #%d | %s", c.ID, c.Type)
	if c.ThresholdTriggered {
		title += " (threshold)"
	}

	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     color,
		Fields:    fields,
		Timestamp: time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
	}

	if _, err := m.Session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("failed to send modlog embed for case %d: %w", c.ID, err)
	}
	return nil
}

func subjectLine(id, tag string) string {
	if tag != "" {
		return fmt.Sprintf("%s (<@%s>)", tag, id)
	}
	return fmt.Sprintf("<@%s>", id)
}

func actorLine(id, tag string) string {
	if id == model.SystemActorID {
		return "AutoMod"
	}
	return subjectLine(id, tag)
}

func orDash(s string) string {
	if s == "" {
		return "(no reason)"
	}
	return s
}
