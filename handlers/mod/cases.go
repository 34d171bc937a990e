package mod

import (
	"fmt"
	"log"
	"strings"
	"time"

	"modbot/bot"
	"modbot/model"
	"modbot/utils"
	"modbot/utils/database/cases"

	"github.com/bwmarrin/discordgo"
)

// HandleCaseCommand shows the details of one case.
func HandleCaseCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	caseID := opts["id"].IntValue()

	c, err := cases.GetCaseByID(b.DB, caseID)
	if err != nil {
		log.Printf("Error fetching case %d: %v", caseID, err)
		utils.SendErrorResponse(s, i, "Failed to look up the case.")
		return
	}
	if c == nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Case #%d does not exist.", caseID))
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Type", Value: c.Type, Inline: true},
		{Name: "Subject", Value: fmt.Sprintf("<@%s>", c.SubjectID), Inline: true},
		{Name: "Moderator", Value: actorDisplay(c), Inline: true},
		{Name: "Reason", Value: c.Reason, Inline: false},
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
	if c.ExpiresAt > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Expires", Value: fmt.Sprintf("<t:%d:R>", c.ExpiresAt), Inline: true,
		})
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Case #%d", c.ID),
		Color:     0x5865F2,
		Fields:    fields,
		Timestamp: time.Unix(c.CreatedAt, 0).Format(time.RFC3339),
	})
}

// HandleReasonCommand edits the reason of an existing case.
func HandleReasonCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	caseID := opts["id"].IntValue()
	newReason := opts["reason"].StringValue()

	ok, err := cases.UpdateReason(b.DB, caseID, newReason)
	if err != nil {
		log.Printf("Error updating reason for case %d: %v", caseID, err)
		utils.SendErrorResponse(s, i, "Failed to update the case.")
		return
	}
	if !ok {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Case #%d does not exist.", caseID))
		return
	}

	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Updated reason for case #%d.", caseID))
}

// HandleHistoryCommand lists a user's punishment cases, newest first.
func HandleHistoryCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)

	records, err := cases.GetPunishmentCases(b.DB, targetUser.ID)
	if err != nil {
		log.Printf("Error fetching history for user %s: %v", targetUser.ID, err)
		utils.SendErrorResponse(s, i, "Failed to look up the user's history.")
		return
	}
	if len(records) == 0 {
		utils.SendSimpleResponse(s, i, fmt.Sprintf("%s has no recorded cases.", targetUser.Username))
		return
	}

	const maxShown = 10
	var lines []string
	for idx, c := range records {
		if idx == maxShown {
			lines = append(lines, fmt.Sprintf("... and %d more", len(records)-maxShown))
			break
		}
		line := fmt.Sprintf("`#%d` **%s** <t:%d:d> %s", c.ID, c.Type, c.CreatedAt, c.Reason)
		if c.ThresholdTriggered {
			line += " (threshold)"
		}
		lines = append(lines, line)
	}

	utils.SendEmbedResponse(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("History for %s (%d cases)", targetUser.Username, len(records)),
		Color:       0x5865F2,
		Description: strings.Join(lines, "\n"),
	})
}

func actorDisplay(c *model.Case) string {
	if c.ActorID == model.SystemActorID {
		return "AutoMod"
	}
	return fmt.Sprintf("<@%s>", c.ActorID)
}
