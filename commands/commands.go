package commands

import "github.com/bwmarrin/discordgo"

var warn = &discordgo.ApplicationCommand{
	Name:        "warn",
	Description: "Warn a user and evaluate escalation thresholds",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to warn",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the warning",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "category",
			Description: "Warning category (used for category-specific thresholds)",
			Required:    false,
		},
	},
}

var tempban = &discordgo.ApplicationCommand{
	Name:        "tempban",
	Description: "Ban a user temporarily; the ban lifts automatically",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to ban",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "duration",
			Description: "Ban duration, e.g. 1d, 2h30m",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "Reason for the ban",
			Required:    false,
		},
	},
}

var caseInfo = &discordgo.ApplicationCommand{
	Name:        "case",
	Description: "Show the details of a moderation case",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "Case ID",
			Required:    true,
		},
	},
}

var caseReason = &discordgo.ApplicationCommand{
	Name:        "reason",
	Description: "Edit the reason of an existing case",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "id",
			Description: "Case ID",
			Required:    true,
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "reason",
			Description: "New reason",
			Required:    true,
		},
	},
}

var history = &discordgo.ApplicationCommand{
	Name:        "history",
	Description: "Show a user's moderation history",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to look up",
			Required:    true,
		},
	},
}

var botInfo = &discordgo.ApplicationCommand{
	Name:        "botinfo",
	Description: "Display bot and system status information",
}

// Definitions returns the slash commands this bot registers per guild.
func Definitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{warn, tempban, caseInfo, caseReason, history, botInfo}
}
