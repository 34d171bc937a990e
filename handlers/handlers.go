package handlers

import (
	"log"

	"modbot/bot"
	"modbot/handlers/mod"
	"modbot/utils"

	"github.com/bwmarrin/discordgo"
)

func Register(b *bot.Bot) {
	b.CommandHandlers = commandHandlers(b)
	addHandlers(b)
}

func commandHandlers(b *bot.Bot) map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	moderatorOnly := func(handler func(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot)) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			if i.Member == nil {
				utils.SendErrorResponse(s, i, "This command can only be used in a server.")
				return
			}
			guildCfg := b.GuildConfig(i.GuildID)
			if !utils.IsModerator(i.Member.Roles, guildCfg.AdminRoleIDs) {
				utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
				return
			}
			handler(s, i, b)
		}
	}

	return map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate){
		"warn":    moderatorOnly(mod.HandleWarnCommand),
		"tempban": moderatorOnly(mod.HandleTempbanCommand),
		"case":    moderatorOnly(mod.HandleCaseCommand),
		"reason":  moderatorOnly(mod.HandleReasonCommand),
		"history": moderatorOnly(mod.HandleHistoryCommand),
		"botinfo": func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			HandleBotInfoCommand(s, i, b)
		},
	}
}

func addHandlers(b *bot.Bot) {
	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Printf("Logged in as: %v#%v", s.State.User.Username, s.State.User.Discriminator)
	})
	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		if h, ok := b.CommandHandlers[i.ApplicationCommandData().Name]; ok {
			h(s, i)
		}
	})
	b.Session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		HandleMessageCreate(s, m, b)
	})
}
