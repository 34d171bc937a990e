package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"modbot/commands"
)

func (b *Bot) Run() {
	if err := b.Session.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	log.Println("Registering commands for configured guilds...")
	for guildID := range b.GetConfig().GuildConfigs {
		registered, err := b.Session.ApplicationCommandBulkOverwrite(b.GetConfig().AppID, guildID, commands.Definitions())
		if err != nil {
			log.Printf("cannot register commands for guild '%s': %v", guildID, err)
			continue
		}
		b.RegisteredCommands = append(b.RegisteredCommands, registered...)
	}

	b.Scheduler.Start()

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
