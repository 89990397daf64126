package common

import (
	"github.com/bwmarrin/discordgo"
)

const guildMembersPageSize = 1000

// RoleMemberIDs lists the non-bot members of a guild that hold roleID
func RoleMemberIDs(s *discordgo.Session, guildID, roleID string) ([]int64, error) {
	var (
		ids   []int64
		after string
	)
	for {
		page, err := s.GuildMembers(guildID, after, guildMembersPageSize)
		if err != nil {
			return nil, err
		}
		ids = append(ids, FilterRoleMembers(page, roleID)...)
		if len(page) < guildMembersPageSize {
			return ids, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// FilterRoleMembers picks the non-bot members holding roleID
func FilterRoleMembers(members []*discordgo.Member, roleID string) []int64 {
	var ids []int64
	for _, m := range members {
		if m.User == nil || m.User.Bot {
			continue
		}
		for _, r := range m.Roles {
			if r != roleID {
				continue
			}
			if id, err := ParseID(m.User.ID); err == nil {
				ids = append(ids, id)
			}
			break
		}
	}
	return ids
}

// Targets is the set of accounts a user-or-role command applies to
type Targets struct {
	UserIDs []int64
	// Label names the target in replies: a username or a role name
	Label  string
	IsRole bool
}

// ResolveTargets reads the "user" and "role" options of a command. Exactly
// one must be given; bots are never targeted.
func ResolveTargets(c *Command) (*Targets, error) {
	user := c.UserOption("user")
	role := c.RoleOption("role")

	switch {
	case user == nil && role == nil:
		return nil, NewUserError("ユーザーまたはロールのどちらかを指定してください。", "No target given")
	case user != nil && role != nil:
		return nil, NewUserError("ユーザーとロールを同時に指定することはできません。", "Both user and role given")
	case user != nil:
		if user.Bot {
			return nil, NewUserError("ボットを対象にすることはできません。", "Bot targeted")
		}
		id, err := ParseID(user.ID)
		if err != nil {
			return nil, NewSystemError(err, "Failed to parse target user ID")
		}
		return &Targets{UserIDs: []int64{id}, Label: user.Username}, nil
	}

	ids, err := RoleMemberIDs(c.Session, c.Interaction.GuildID, role.ID)
	if err != nil {
		return nil, NewSystemError(err, "Failed to list role members")
	}
	if len(ids) == 0 {
		return nil, NewUserError("指定されたロールのメンバーが見つかりませんでした。", "Role has no members")
	}
	return &Targets{UserIDs: ids, Label: role.Name, IsRole: true}, nil
}

// IsAdministrator reports whether the invoking member has the Administrator permission
func IsAdministrator(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// DisplayName returns the server nickname of a user, falling back to the
// account username and then to fallback when Discord cannot be reached
func DisplayName(s *discordgo.Session, guildID string, userID int64, fallback string) string {
	id := FormatUserID(userID)
	if member, err := s.State.Member(guildID, id); err == nil && member != nil {
		return memberName(member)
	}
	if member, err := s.GuildMember(guildID, id); err == nil && member != nil {
		return memberName(member)
	}
	if user, err := s.User(id); err == nil && user != nil {
		return user.Username
	}
	return fallback
}

func memberName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User != nil {
		return member.User.Username
	}
	return ""
}
