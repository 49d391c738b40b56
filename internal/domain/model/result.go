package model

import "time"

// User is the public identity attached to a game result.
type User struct {
	ID        int64
	Username  string
	Avatar    string // empty when the user has no avatar
	DiscordID string
}

// Result is one user's outcome for one daily puzzle.
type Result struct {
	ID          string
	UserID      int64
	User        User
	PuzzleDate  time.Time
	PuzzleTitle string
	GuessCount  int
	Won         bool
	CreatedAt   time.Time
}

// Completion signals that a result was recorded and derived views are stale.
type Completion struct {
	ResultID   string
	UserID     int64
	PuzzleDate time.Time
	RecordedAt time.Time
}
