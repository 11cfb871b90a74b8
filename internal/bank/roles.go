package bank

import "strings"

type CompanyRole struct {
	Name string
	ID   string
}

// CompanyRoles in precedence order: a member's balance scope is the first of
// these roles they hold.
var CompanyRoles = []CompanyRole{
	{Name: "settler", ID: "1040383506481692693"},
	{Name: "officer", ID: "1040383501188468886"},
	{Name: "consul", ID: "1040383486856540181"},
	{Name: "governor", ID: "1040383340320149554"},
}

// LeadRoles exempt their holders from War Token review.
var LeadRoles = map[string]string{
	"STR Bruiser Lead":   "1168251564419461120",
	"INT Bruiser Lead":   "1168251540046364836",
	"Healer Lead":        "1168251525043339294",
	"Utility Mage":       "1168251553405223022",
	"Assassin Team Lead": "1167943700983316591",
}

// ResolveCompanyRole returns the member's balance scope given their Discord
// role IDs, or ok=false when they hold no company role.
func ResolveCompanyRole(roleIDs []string) (string, bool) {
	held := make(map[string]bool, len(roleIDs))
	for _, id := range roleIDs {
		held[id] = true
	}
	for _, role := range CompanyRoles {
		if held[role.ID] {
			return role.Name, true
		}
	}
	return "", false
}

// CompanyRoleByName reports whether name is a recognized company role,
// matching case-insensitively the way role mentions arrive from chat.
func CompanyRoleByName(name string) (string, bool) {
	for _, role := range CompanyRoles {
		if strings.EqualFold(role.Name, name) {
			return role.Name, true
		}
	}
	return "", false
}

// HasLeadRole reports whether any of the Discord role IDs is an exempt lead
// role.
func HasLeadRole(roleIDs []string) bool {
	ids := make(map[string]bool, len(LeadRoles))
	for _, id := range LeadRoles {
		ids[id] = true
	}
	for _, id := range roleIDs {
		if ids[id] {
			return true
		}
	}
	return false
}
