package storage

import (
	"database/sql"
)

type MoodEntry struct {
	ID         int64
	UserID     string
	Day        string
	Mood       string
	Sleep      sql.NullString
	Journal    string
	Tags       string
	Version    int64
	SyncStatus string
	CreatedAt  string
	UpdatedAt  string
	SyncedAt   sql.NullString
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	PhotoUrl     string
	CreatedAt    string
	LastLoginAt  sql.NullString
}
