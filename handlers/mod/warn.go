package mod

import (
	"fmt"
	"log"

	"modbot/bot"
	"modbot/model"
	"modbot/utils"
	"modbot/utils/database/cases"

	"github.com/bwmarrin/discordgo"
)

// HandleWarnCommand records a warning case and then runs threshold
// escalation for the subject.
func HandleWarnCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	reason := opts["reason"].StringValue()

	var category string
	if opt, ok := opts["category"]; ok {
		category = opt.StringValue()
	}

	caseID, err := cases.CreateCase(b.DB, model.Case{
		GuildID:    i.GuildID,
		Type:       model.CaseTypeWarn,
		SubjectID:  targetUser.ID,
		SubjectTag: targetUser.String(),
		ActorID:    i.Member.User.ID,
		ActorTag:   i.Member.User.String(),
		Reason:     reason,
		Category:   category,
	})
	if err != nil {
		log.Printf("Error saving warn case: %v", err)
		utils.SendErrorResponse(s, i, "Failed to save the warning.")
		return
	}

	if err := b.Platform.SendDirectMessage(targetUser.ID, fmt.Sprintf("You have been warned: %s", reason)); err != nil {
		// Best-effort: the user may have DMs closed.
		log.Printf("Failed to notify warned user %s: %v", targetUser.ID, err)
	}

	if c, err := cases.GetCaseByID(b.DB, caseID); err == nil && c != nil {
		if err := b.Modlog.Publish(c); err != nil {
			log.Printf("Failed to publish warn case %d to modlog: %v", caseID, err)
		}
	}

	guildCfg := b.GuildConfig(i.GuildID)
	response := fmt.Sprintf("✅ Warned %s (case #%d).", targetUser.Username, caseID)

	ta, err := b.Escalation.Evaluate(targetUser.ID, category, guildCfg.Thresholds)
	if err != nil {
		log.Printf("Error evaluating warning thresholds for user %s: %v", targetUser.ID, err)
	} else if ta != nil {
		escalationID, err := b.Escalation.ApplyThresholdAction(i.GuildID, targetUser.ID, targetUser.String(), ta, guildCfg.NotifyOnAction)
		if err != nil {
			log.Printf("Error applying threshold action for user %s: %v", targetUser.ID, err)
		} else {
			response += fmt.Sprintf("\nThreshold reached: %s applied (case #%d).", ta.Action, escalationID)
		}
	}

	utils.SendSimpleResponse(s, i, response)
}

// optionMap indexes the interaction's command options by name.
func optionMap(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
