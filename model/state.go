package model

import "thistoken/indexer/coord"

// Player is a live participant, keyed by address. Created by PlayerStart,
// moved by PlayerMove, removed by either death event.
type Player struct {
	Address   string      `json:"address"`
	Team      string      `json:"team"`
	Coord     coord.Coord `json:"coord"`
	Health    int64       `json:"health"`
	CellIndex int         `json:"cellIndex"`
}

// Cell is the derived occupancy of one coordinate: player addresses in
// arrival order plus the length the contract reports after trims. Never
// persisted on its own; always rebuilt by replay.
type Cell struct {
	Players []string `json:"players"`
	Len     int      `json:"len"`
}
