// Package game holds the decoded event vocabulary of the contract and
// the materialized view rebuilt by folding those events.
package game

import (
	"math/big"
	"strings"

	"thistoken/indexer/coord"
)

// Record is an event as delivered by the external log: a name plus an
// untyped argument bag. The chain package produces these from receipt
// logs; tests build them by hand.
type Record struct {
	Name string
	Args map[string]interface{}
}

// Event is one decoded game event. The set is closed; anything the
// contract emits beyond it decodes to Unknown rather than failing, so
// the contract can grow events without breaking this side.
type Event interface {
	eventName() string
}

type CityUpdate struct {
	Coord   coord.Coord
	Title   string
	Defence int64
}

type PlayerStart struct {
	Player string
	Token  string
	Coord  coord.Coord
}

type PlayerMove struct {
	Player   string
	OldCoord coord.Coord
	NewCoord coord.Coord
}

type DefenderDamage struct {
	Defender       string
	CityDefence    int64
	DefenderHealth int64
	Damage         int64
}

type HealthUpdate struct {
	Player string
	Health int64
}

type DefenderDeath struct {
	Player string
	Token  string
	Coord  coord.Coord
}

type AttackerDeath struct {
	Player   string
	Token    string
	OldCoord coord.Coord
	NewCoord coord.Coord
}

type PlayerCellAdded struct {
	Player    string
	Coord     coord.Coord
	CellIndex int
	Len       int
}

type PlayerCellRemoved struct {
	Player string
	Coord  coord.Coord
}

type PlayerCellTrimmed struct {
	Coord coord.Coord
	Len   int
}

// Unknown carries an event name this release does not recognize, raw
// arguments included for logging.
type Unknown struct {
	Name string
	Args map[string]interface{}
}

func (CityUpdate) eventName() string        { return "CityUpdate" }
func (PlayerStart) eventName() string       { return "PlayerStart" }
func (PlayerMove) eventName() string        { return "PlayerMove" }
func (DefenderDamage) eventName() string    { return "DefenderDamage" }
func (HealthUpdate) eventName() string      { return "HealthUpdate" }
func (DefenderDeath) eventName() string     { return "DefenderDeath" }
func (AttackerDeath) eventName() string     { return "AttackerDeath" }
func (PlayerCellAdded) eventName() string   { return "PlayerCellAdded" }
func (PlayerCellRemoved) eventName() string { return "PlayerCellRemoved" }
func (PlayerCellTrimmed) eventName() string { return "PlayerCellTrimmed" }
func (e Unknown) eventName() string         { return e.Name }

// Decode maps a raw record onto its typed variant. It never fails: an
// unrecognized name comes back as Unknown, and malformed argument
// values fall back to zero values.
func Decode(rec Record) Event {
	args := rec.Args
	switch rec.Name {
	case "CityUpdate":
		return CityUpdate{
			Coord:   argCoord(args, "coord"),
			Title:   argString(args, "title"),
			Defence: argInt64(args, "defence"),
		}
	case "PlayerStart":
		return PlayerStart{
			Player: argString(args, "player"),
			Token:  argString(args, "token"),
			Coord:  argCoord(args, "coord"),
		}
	case "PlayerMove":
		return PlayerMove{
			Player:   argString(args, "player"),
			OldCoord: argCoord(args, "oldCoord"),
			NewCoord: argCoord(args, "newCoord"),
		}
	case "DefenderDamage":
		return DefenderDamage{
			Defender:       argString(args, "defender"),
			CityDefence:    argInt64(args, "cityDefence"),
			DefenderHealth: argInt64(args, "defenderHealth"),
			Damage:         argInt64(args, "damage"),
		}
	case "HealthUpdate":
		return HealthUpdate{
			Player: argString(args, "player"),
			Health: argInt64(args, "health"),
		}
	case "DefenderDeath":
		return DefenderDeath{
			Player: argString(args, "player"),
			Token:  argString(args, "token"),
			Coord:  argCoord(args, "coord"),
		}
	case "AttackerDeath":
		return AttackerDeath{
			Player:   argString(args, "player"),
			Token:    argString(args, "token"),
			OldCoord: argCoord(args, "oldCoord"),
			NewCoord: argCoord(args, "newCoord"),
		}
	case "PlayerCellAdded":
		return PlayerCellAdded{
			Player:    argString(args, "player"),
			Coord:     argCoord(args, "coord"),
			CellIndex: int(argInt64(args, "cellIndex")),
			Len:       int(argInt64(args, "len")),
		}
	case "PlayerCellRemoved":
		return PlayerCellRemoved{
			Player: argString(args, "player"),
			Coord:  argCoord(args, "coord"),
		}
	case "PlayerCellTrimmed":
		return PlayerCellTrimmed{
			Coord: argCoord(args, "coord"),
			Len:   int(argInt64(args, "len")),
		}
	default:
		return Unknown{Name: rec.Name, Args: args}
	}
}

func argCoord(args map[string]interface{}, key string) coord.Coord {
	v, ok := args[key]
	if !ok {
		return 0
	}
	c, err := coord.Parse(v)
	if err != nil {
		return 0
	}
	return c
}

func argString(args map[string]interface{}, key string) string {
	switch t := args[key].(type) {
	case string:
		return t
	case []byte:
		return trimNul(string(t))
	case [32]byte:
		// bytes32 titles arrive right-padded with NULs
		return trimNul(string(t[:]))
	default:
		return ""
	}
}

func argInt64(args map[string]interface{}, key string) int64 {
	switch t := args[key].(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case uint64:
		return int64(t)
	case uint32:
		return int64(t)
	case float64:
		return int64(t)
	case *big.Int:
		if t == nil {
			return 0
		}
		return t.Int64()
	case big.Int:
		return t.Int64()
	default:
		return 0
	}
}

func trimNul(s string) string {
	return strings.TrimRight(s, "\x00")
}
