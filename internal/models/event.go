package models

import "time"

// Event represents a scheduled community event.
type Event struct {
	ID        string `json:"id"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`

	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Summary     string `json:"summary"`
	Debrief     string `json:"debrief"`

	// EventDate is when the event takes place.
	EventDate time.Time `json:"event_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ThumbnailURL string   `json:"thumbnail_url"`
	ImageURLs    []string `json:"image_urls"`

	// GameID and GameName link the event to the game role its presets target.
	GameID   string `json:"game_id"`
	GameName string `json:"game_name"`
}

// Participant is a person signed up for an event.
// The Roles set drives which preset quotas they can fill.
type Participant struct {
	ID          string   `json:"user_id"`
	DisplayName string   `json:"name"`
	Roles       []string `json:"roles"`
}
