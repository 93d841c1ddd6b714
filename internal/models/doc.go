// Package models defines the core domain models for the party planner.
//
// # Inputs
//
// These arrive from the guild bot's API and are read-only to the planner:
//   - GuildConfig: per-guild dashboard settings (the password is never kept)
//   - Member: a guild member known to the bot
//   - Event: a scheduled community event
//   - Preset: party size and role quotas for one game or activity
//   - Participant: a person who signed up for an event, with the roles they can play
//
// # Outputs
//
// One allocation run produces an Allocation:
//   - Party: a numbered group of Assignments
//   - Assignment: a participant placed in a party under one role
//   - UnusedParticipant: a participant left out of every party
//
// Allocations are held in memory only. They are rebuilt whenever allocation runs
// again and dropped when the planning session ends.
//
// # JSON
//
// Field tags follow the bot API's snake_case wire format so the same types are
// used for decoding API responses, writing cache entries, and RPC payloads.
package models
