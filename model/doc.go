package model

import (
	"encoding/json"
	"fmt"
)

// Document types stored in the couch database.
const (
	DocTypeMap   = "map"
	DocTypeBlock = "block"
)

// MapDocument is the durable per-map checkpoint: where the contract
// lives and the block replays resume from. One per map name.
type MapDocument struct {
	ID          string          `json:"_id"`
	Rev         string          `json:"_rev,omitempty"`
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	NetworkID   string          `json:"networkId"`
	Address     string          `json:"address"`
	BlockNumber uint64          `json:"blockNumber"`
	Cities      map[string]City `json:"cities"`
	Teams       map[string]int  `json:"teams"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	ABI         json.RawMessage `json:"abi,omitempty"`
}

// SnapshotDocument is a point-in-time serialization of the materialized
// view, one per processed block boundary.
type SnapshotDocument struct {
	ID          string             `json:"_id"`
	Rev         string             `json:"_rev,omitempty"`
	Type        string             `json:"type"`
	Name        string             `json:"name"`
	NetworkID   string             `json:"networkId"`
	BlockNumber uint64             `json:"blockNumber"`
	Timestamp   uint64             `json:"timestamp"`
	Cities      map[string]City    `json:"cities"`
	Players     map[string]*Player `json:"players"`
	Cells       map[string]*Cell   `json:"cells"`
}

// SnapshotID builds the composite identity of a block snapshot.
func SnapshotID(networkID, mapName string, blockNumber uint64) string {
	return fmt.Sprintf("%s-%s-%d", networkID, mapName, blockNumber)
}
