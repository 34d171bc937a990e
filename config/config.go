package config

import (
	"fmt"
	"log"
	"os"

	"modbot/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from environment variables and the automod
// config file.
func Load() (*model.Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: .env file not found, relying on environment variables")
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("Error: BOT_TOKEN environment variable not set")
	}

	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("Error: APP_ID environment variable not set")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/cases.db"
	}

	cfg := &model.Config{
		BotToken:     token,
		AppID:        appID,
		DatabasePath: dbPath,
		GuildConfigs: make(map[string]model.GuildConfig),
	}

	if err := loadAutomodConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadAutomodConfig reads data/automod.yaml (per-guild filters, thresholds,
// action lists) and parses the configured action names into the closed
// action enum. Unknown action names are dropped with a warning so a typo
// disables one action, not the whole filter.
func loadAutomodConfig(cfg *model.Config) error {
	v := viper.New()
	v.SetConfigFile(configPath())

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("Warning: automod config not found at %s, moderation filters disabled", configPath())
			return nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: automod config not found at %s, moderation filters disabled", configPath())
			return nil
		}
		return fmt.Errorf("failed to read automod config: %w", err)
	}

	guilds := make(map[string]model.GuildConfig)
	if err := v.UnmarshalKey("guilds", &guilds); err != nil {
		return fmt.Errorf("failed to parse automod config: %w", err)
	}

	for guildID, guildCfg := range guilds {
		guildCfg.GuildID = guildID
		guildCfg.AutoMod.Spam.Actions = parseActionList(guildID, "spam", guildCfg.AutoMod.Spam.ActionNames)
		guildCfg.AutoMod.Words.Actions = parseActionList(guildID, "words", guildCfg.AutoMod.Words.ActionNames)
		guildCfg.AutoMod.Invites.Actions = parseActionList(guildID, "invites", guildCfg.AutoMod.Invites.ActionNames)
		guilds[guildID] = guildCfg
	}
	cfg.GuildConfigs = guilds

	return nil
}

func parseActionList(guildID, filter string, names []string) []model.Action {
	actions := make([]model.Action, 0, len(names))
	for _, name := range names {
		action, ok := model.ParseAction(name)
		if !ok {
			log.Printf("Warning: unknown automod action %q in %s filter for guild %s, skipping", name, filter, guildID)
			continue
		}
		actions = append(actions, action)
	}
	return actions
}

func configPath() string {
	if path := os.Getenv("AUTOMOD_CONFIG"); path != "" {
		return path
	}
	return "data/automod.yaml"
}
