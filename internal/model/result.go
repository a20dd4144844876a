package model

import "time"

// PlayerStanding is one line of a finished game's scoreboard.
type PlayerStanding struct {
	PlayerID   string `json:"playerId" bson:"playerId"`
	PlayerName string `json:"playerName" bson:"playerName"`
	Score      int    `json:"score" bson:"score"`
}

// GameResult is the archived outcome of a finished game.
type GameResult struct {
	RoomID     string           `json:"roomId" bson:"roomId"`
	GameID     string           `json:"gameId" bson:"gameId"`
	Standings  []PlayerStanding `json:"standings" bson:"standings"`
	FinishedAt time.Time        `json:"finishedAt" bson:"finishedAt"`
}
