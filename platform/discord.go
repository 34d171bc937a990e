package platform

import (
	"fmt"
	"time"

	"modbot/model"

	"github.com/bwmarrin/discordgo"
)

// Discord adapts a discordgo session to the collaborator interfaces the
// moderation core consumes. The core never touches the session directly.
type Discord struct {
	Session *discordgo.Session
}

var _ model.CapabilityOracle = (*Discord)(nil)
var _ model.MemberGateway = (*Discord)(nil)
var _ model.MessageGateway = (*Discord)(nil)
var _ model.Notifier = (*Discord)(nil)

// CanTimeout reports whether the bot outranks the subject and holds the
// moderate-members permission.
func (d *Discord) CanTimeout(guildID, subjectID string) bool {
	return d.canAct(guildID, subjectID, discordgo.PermissionModerateMembers)
}

func (d *Discord) CanKick(guildID, subjectID string) bool {
	return d.canAct(guildID, subjectID, discordgo.PermissionKickMembers)
}

func (d *Discord) CanBan(guildID, subjectID string) bool {
	return d.canAct(guildID, subjectID, discordgo.PermissionBanMembers)
}

func (d *Discord) canAct(guildID, subjectID string, permission int64) bool {
	guild, err := d.Session.State.Guild(guildID)
	if err != nil {
		guild, err = d.Session.Guild(guildID)
		if err != nil {
			return false
		}
	}

	// The guild owner is never actionable.
	if subjectID == guild.OwnerID {
		return false
	}

	botID := d.Session.State.User.ID
	botMember, err := d.member(guildID, botID)
	if err != nil {
		return false
	}

	perms := memberPermissions(guild, botMember)
	if perms&discordgo.PermissionAdministrator == 0 && perms&permission == 0 {
		return false
	}

	subjectMember, err := d.member(guildID, subjectID)
	if err != nil {
		// A subject who already left can still be banned/unbanned.
		return permission == discordgo.PermissionBanMembers
	}

	return highestRolePosition(guild, botMember) > highestRolePosition(guild, subjectMember)
}

func (d *Discord) member(guildID, userID string) (*discordgo.Member, error) {
	if member, err := d.Session.State.Member(guildID, userID); err == nil {
		return member, nil
	}
	return d.Session.GuildMember(guildID, userID)
}

func memberPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	var perms int64
	for _, role := range guild.Roles {
		if role.ID == guild.ID { // @everyone
			perms |= role.Permissions
		}
		for _, roleID := range member.Roles {
			if role.ID == roleID {
				perms |= role.Permissions
			}
		}
	}
	return perms
}

func highestRolePosition(guild *discordgo.Guild, member *discordgo.Member) int {
	highest := -1
	for _, role := range guild.Roles {
		for _, roleID := range member.Roles {
			if role.ID == roleID && role.Position > highest {
				highest = role.Position
			}
		}
	}
	return highest
}

// ApplyTimeout times the subject out for the given number of seconds.
func (d *Discord) ApplyTimeout(guildID, subjectID string, seconds int64, reason string) error {
	until := time.Now().Add(time.Duration(seconds) * time.Second)
	if err := d.Session.GuildMemberTimeout(guildID, subjectID, &until); err != nil {
		return fmt.Errorf("failed to timeout user %s: %w", subjectID, err)
	}
	return nil
}

func (d *Discord) Kick(guildID, subjectID, reason string) error {
	if err := d.Session.GuildMemberDeleteWithReason(guildID, subjectID, reason); err != nil {
		return fmt.Errorf("failed to kick user %s: %w", subjectID, err)
	}
	return nil
}

func (d *Discord) Ban(guildID, subjectID, reason string, retentionDays int) error {
	if err := d.Session.GuildBanCreateWithReason(guildID, subjectID, reason, retentionDays); err != nil {
		return fmt.Errorf("failed to ban user %s: %w", subjectID, err)
	}
	return nil
}

func (d *Discord) Unban(guildID, subjectID, reason string) error {
	if err := d.Session.GuildBanDelete(guildID, subjectID); err != nil {
		return fmt.Errorf("failed to unban user %s: %w", subjectID, err)
	}
	return nil
}

// IsBanned checks the guild's ban list for the subject.
func (d *Discord) IsBanned(guildID, subjectID string) (bool, error) {
	ban, err := d.Session.GuildBan(guildID, subjectID)
	if err != nil {
		if restErr, ok := err.(*discordgo.RESTError); ok && restErr.Response != nil && restErr.Response.StatusCode == 404 {
			return false, nil
		}
		return false, fmt.Errorf("failed to fetch ban for user %s: %w", subjectID, err)
	}
	return ban != nil, nil
}

// GuildExists reports whether the session can resolve the guild.
func (d *Discord) GuildExists(guildID string) bool {
	if _, err := d.Session.State.Guild(guildID); err == nil {
		return true
	}
	_, err := d.Session.Guild(guildID)
	return err == nil
}

// DeleteMessage removes a message, best-effort semantics are the caller's.
func (d *Discord) DeleteMessage(ref model.MessageRef) error {
	if err := d.Session.ChannelMessageDelete(ref.ChannelID, ref.MessageID); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", ref.MessageID, err)
	}
	return nil
}

// SendDirectMessage delivers a DM to the user.
func (d *Discord) SendDirectMessage(userID, content string) error {
	channel, err := d.Session.UserChannelCreate(userID)
	if err != nil {
		return fmt.Errorf("failed to create private channel with user %s: %w", userID, err)
	}
	if _, err := d.Session.ChannelMessageSend(channel.ID, content); err != nil {
		return fmt.Errorf("failed to send private message to user %s: %w", userID, err)
	}
	return nil
}
