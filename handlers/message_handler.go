package handlers

import (
	"modbot/automod"
	"modbot/bot"

	"github.com/bwmarrin/discordgo"
)

// HandleMessageCreate feeds guild messages into the auto-mod pipeline.
func HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate, b *bot.Bot) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	guildCfg := b.GuildConfig(m.GuildID)
	cfg := guildCfg.AutoMod
	if !cfg.Spam.Enabled && !cfg.Words.Enabled && !cfg.Invites.Enabled {
		return
	}

	var roleIDs []string
	if m.Member != nil {
		roleIDs = m.Member.Roles
	}

	b.Pipeline.Process(automod.InboundMessage{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		AuthorID:  m.Author.ID,
		AuthorTag: m.Author.String(),
		RoleIDs:   roleIDs,
		Content:   m.Content,
	}, cfg)
}
