package bot

import (
	"log"
	"sync/atomic"

	"modbot/automod"
	"modbot/automod/escalation"
	"modbot/automod/spam"
	"modbot/model"
	"modbot/platform"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
)

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	DB                 *sqlx.DB
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	Platform   *platform.Discord
	Modlog     *platform.ChannelModlog
	Detector   *spam.Detector
	Pipeline   *automod.Pipeline
	Escalation *escalation.Engine
	Scheduler  *Scheduler

	config atomic.Value // *model.Config
}

func New(cfg *model.Config, db *sqlx.DB) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers | discordgo.IntentMessageContent

	b := &Bot{
		Session: dg,
		DB:      db,
	}
	b.config.Store(cfg)

	b.Platform = &platform.Discord{Session: dg}
	b.Modlog = &platform.ChannelModlog{
		Session: dg,
		Channels: func(guildID string) string {
			return b.GetConfig().GuildConfigs[guildID].ModlogChannelID
		},
	}

	b.Detector = spam.NewDetector(model.SystemClock{})
	executor := &automod.Executor{
		DB:       db,
		Oracle:   b.Platform,
		Members:  b.Platform,
		Notifier: b.Platform,
		Modlog:   b.Modlog,
	}
	b.Pipeline = &automod.Pipeline{
		Detector: b.Detector,
		Messages: b.Platform,
		Executor: executor,
	}
	b.Escalation = &escalation.Engine{
		DB:       db,
		Oracle:   b.Platform,
		Members:  b.Platform,
		Notifier: b.Platform,
		Modlog:   b.Modlog,
	}
	b.Scheduler = NewScheduler(b)

	return b, nil
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func (b *Bot) GetSession() *discordgo.Session {
	return b.Session
}

func (b *Bot) GetDB() *sqlx.DB {
	return b.DB
}

// GuildConfig returns the moderation config for a guild, zero-valued when
// the guild is not configured.
func (b *Bot) GuildConfig(guildID string) model.GuildConfig {
	return b.GetConfig().GuildConfigs[guildID]
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.Scheduler.Stop()
	b.Session.Close()
}
