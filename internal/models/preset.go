package models

// RoleRequirement is how many participants with a role a single party needs.
type RoleRequirement struct {
	RoleID   string `json:"role_id"`
	RoleName string `json:"role_name"`
	Count    int    `json:"count"`
}

// PresetData wraps the ordered role quotas. Order matters: earlier
// requirements claim multi-role participants first.
type PresetData struct {
	Roles []RoleRequirement `json:"roles"`
}

// Preset is a named template for building parties for one game or activity.
type Preset struct {
	ID      string `json:"id"`
	GuildID string `json:"guild_id"`
	Name    string `json:"preset_name"`

	// ScopeRoleName and ScopeRoleID identify the game role this preset applies to.
	ScopeRoleName string `json:"game_role_name"`
	ScopeRoleID   string `json:"game_role_id"`

	// PartySize is the target number of members per party. Zero disables allocation.
	PartySize int `json:"party_size"`

	Data PresetData `json:"data"`

	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Requirements returns the preset's role quotas in processing order.
func (p Preset) Requirements() []RoleRequirement {
	return p.Data.Roles
}
