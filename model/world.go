package model

import "thistoken/indexer/coord"

// Placement queue action kinds.
const (
	ActionStart   = "start"
	ActionUpgrade = "upgrade"
)

// PlacementAction is one generated instruction of the placement queue.
// Address is only set for start actions. Queue order matters: an upgrade
// assumes an earlier start already claimed the cell for that player.
type PlacementAction struct {
	Action  string      `json:"action"`
	Address string      `json:"address,omitempty"`
	Coord   coord.Coord `json:"coord"`
	Player  int         `json:"player"`
}

// WorldDescriptor is the compiled form of an ASCII map: dimensions, city
// coordinates in discovery order and the placement queue that seeds the
// contract. Immutable once produced.
type WorldDescriptor struct {
	Name   string            `json:"name"`
	Width  int               `json:"width"`
	Height int               `json:"height"`
	Queue  []PlacementAction `json:"queue"`
	Cities []coord.Coord     `json:"cities"`
}

// City is a claimable settlement on the grid. Level and Coord come from
// the compiled map; Title and Defence are filled in by CityUpdate events.
type City struct {
	Coord   coord.Coord `json:"coord"`
	X       int         `json:"x"`
	Y       int         `json:"y"`
	Level   int         `json:"level,omitempty"`
	Title   string      `json:"title,omitempty"`
	Defence int64       `json:"defence"`
}
