package models

import (
	"time"
)

// Sign values recorded in a ranking member
const (
	SignPositive = "POSITIVE"
	SignNegative = "NEGATIVE"
)

// GameRecord archives one accepted score submission
type GameRecord struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Day         string    `gorm:"size:10;not null;index:idx_game_records_day_score,priority:1" json:"day"`
	Nickname    string    `gorm:"not null;index" json:"nickname"`
	Sign        string    `gorm:"size:8;not null" json:"sign"`
	Diff        float64   `gorm:"not null" json:"diff"`
	Score       float64   `gorm:"not null;index:idx_game_records_day_score,priority:2" json:"score"`
	Member      string    `gorm:"not null" json:"member"`
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (GameRecord) TableName() string {
	return "game_records"
}

// NicknameRequest represents the request payload for reserving a nickname
type NicknameRequest struct {
	Nickname string `json:"nickname" validate:"required"`
}

// NicknameResponse is returned once a nickname is reserved for the day
type NicknameResponse struct {
	Success bool   `json:"success"`
	User    string `json:"user"`
}

// SubmitRequest represents the request payload for submitting a game result.
// Diff is a pointer so that an explicit 0 is distinguishable from a missing field.
type SubmitRequest struct {
	Nickname string   `json:"nickname" validate:"required"`
	Diff     *float64 `json:"diff" validate:"required"`
}

// SubmitResponse echoes the stored ranking member and its score
type SubmitResponse struct {
	Member string  `json:"member"`
	Score  float64 `json:"score"`
}

// RankingEntry is one row of the daily top list
type RankingEntry struct {
	Nickname  string  `json:"nickname"`
	Sign      string  `json:"sign"`
	Timestamp int64   `json:"timestamp"`
	Diff      float64 `json:"diff"`
}

// ErrorBody carries the code and message of a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}
