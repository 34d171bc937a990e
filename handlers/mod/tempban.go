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

// HandleTempbanCommand bans a user with an expiry the scheduler lifts.
func HandleTempbanCommand(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	opts := optionMap(i)
	targetUser := opts["user"].UserValue(s)
	durationSpec := opts["duration"].StringValue()

	reason := "Temporary ban"
	if opt, ok := opts["reason"]; ok {
		reason = opt.StringValue()
	}

	seconds, err := utils.ParseDurationSpec(durationSpec)
	if err != nil {
		utils.SendErrorResponse(s, i, fmt.Sprintf("Invalid duration %q. Use forms like 1d, 2h30m.", durationSpec))
		return
	}

	if !b.Platform.CanBan(i.GuildID, targetUser.ID) {
		utils.SendErrorResponse(s, i, "The bot cannot ban this user.")
		return
	}

	if err := b.Platform.Ban(i.GuildID, targetUser.ID, reason, 0); err != nil {
		log.Printf("Error banning user %s: %v", targetUser.ID, err)
		utils.SendErrorResponse(s, i, "Failed to ban the user.")
		return
	}

	now := model.SystemClock{}.Now()
	caseID, err := cases.CreateCase(b.DB, model.Case{
		GuildID:         i.GuildID,
		Type:            model.CaseTypeTempban,
		SubjectID:       targetUser.ID,
		SubjectTag:      targetUser.String(),
		ActorID:         i.Member.User.ID,
		ActorTag:        i.Member.User.String(),
		Reason:          reason,
		DurationSeconds: seconds,
		ExpiresAt:       now.Unix() + seconds,
	})
	if err != nil {
		log.Printf("Error saving tempban case: %v", err)
		utils.SendErrorResponse(s, i, "The ban was applied but recording the case failed.")
		return
	}

	if c, err := cases.GetCaseByID(b.DB, caseID); err == nil && c != nil {
		if err := b.Modlog.Publish(c); err != nil {
			log.Printf("Failed to publish tempban case %d to modlog: %v", caseID, err)
		}
	}

	utils.SendSimpleResponse(s, i, fmt.Sprintf("✅ Banned %s for %s (case #%d).",
		targetUser.Username, utils.FormatDurationSeconds(seconds), caseID))
}
