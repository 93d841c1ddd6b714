package models

// GuildConfig holds the dashboard settings the bot stores for a guild.
type GuildConfig struct {
	// Channel is the announcement channel the bot posts events to.
	Channel string `json:"channel,omitempty"`

	Color  string `json:"color,omitempty"`
	Icon   string `json:"icon,omitempty"`
	Title  string `json:"title,omitempty"`
	Banner string `json:"banner,omitempty"`

	// Password is the guild's dashboard secret. The API may send it; it must be
	// removed with Sanitized before the config is cached or handed to anyone.
	Password string `json:"password,omitempty"`
}

// Sanitized returns a copy of the config with the password removed.
func (c GuildConfig) Sanitized() GuildConfig {
	c.Password = ""
	return c
}

// Member is a guild member as reported by the bot.
type Member struct {
	GuildID  string `json:"guild_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}
