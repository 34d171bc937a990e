package utils

// contains checks if a slice of strings contains an element.
func contains(slice []string, item string) bool {
	for _, a := range slice {
		if a == item {
			return true
		}
	}
	return false
}

// IsModerator reports whether any of the member's roles is a configured
// admin role for the guild.
func IsModerator(memberRoleIDs, adminRoleIDs []string) bool {
	for _, roleID := range memberRoleIDs {
		if contains(adminRoleIDs, roleID) {
			return true
		}
	}
	return false
}
