package game

import (
	"strconv"
	"sync"

	"thistoken/indexer/coord"
	"thistoken/indexer/log"
	"thistoken/indexer/model"
)

// initialHealth is assumed for players created before their first
// HealthUpdate arrives (replay can start mid-stream).
const initialHealth = 100

// World is the materialized view: cities, players and per-cell
// occupancy, rebuilt by folding the ordered event stream. The replay
// session is the only writer; the mutex exists for the read API, which
// only ever takes copies.
type World struct {
	mu      sync.RWMutex
	cities  map[string]model.City
	players map[string]*model.Player
	cells   map[string]*model.Cell
}

func NewWorld() *World {
	return &World{
		cities:  make(map[string]model.City),
		players: make(map[string]*model.Player),
		cells:   make(map[string]*model.Cell),
	}
}

// Key is the document key of a coordinate: the packed value in decimal,
// matching how stored snapshots index cities and cells.
func Key(c coord.Coord) string {
	return strconv.FormatUint(uint64(c), 10)
}

// SeedCities registers the compiled city list so snapshots carry every
// city even before its first CityUpdate.
func (w *World) SeedCities(cities map[string]model.City) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, c := range cities {
		w.cities[k] = c
	}
}

// Apply folds one decoded event into the view. It is total: events
// referencing players or coordinates never seen before create the
// entries on the spot, and Unknown events change nothing.
func (w *World) Apply(ev Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch e := ev.(type) {
	case CityUpdate:
		city := w.cities[Key(e.Coord)]
		city.Coord = e.Coord
		city.X, city.Y = coord.ToXY(e.Coord)
		city.Title = e.Title
		city.Defence = e.Defence
		w.cities[Key(e.Coord)] = city
		log.Infof("event CityUpdate %s %q defence=%d", e.Coord, e.Title, e.Defence)

	case PlayerStart:
		p := w.player(e.Player)
		p.Team = e.Token
		p.Coord = e.Coord
		p.CellIndex = 0
		w.cellAppend(e.Coord, e.Player)
		log.Infof("event PlayerStart %s %s team=%s", e.Player, e.Coord, e.Token)

	case PlayerMove:
		p := w.player(e.Player)
		w.cellRemove(e.OldCoord, e.Player)
		p.Coord = e.NewCoord
		w.cellAppend(e.NewCoord, e.Player)
		log.Infof("event PlayerMove %s %s -> %s", e.Player, e.OldCoord, e.NewCoord)

	case DefenderDamage:
		// observational: HealthUpdate carries the authoritative value
		log.Infof("event DefenderDamage %s cityDefence=%d health=%d damage=%d",
			e.Defender, e.CityDefence, e.DefenderHealth, e.Damage)

	case HealthUpdate:
		w.player(e.Player).Health = e.Health
		log.Infof("event HealthUpdate %s health=%d", e.Player, e.Health)

	case DefenderDeath:
		w.removePlayer(e.Player)
		log.Infof("event DefenderDeath %s %s token=%s", e.Player, e.Coord, e.Token)

	case AttackerDeath:
		w.removePlayer(e.Player)
		log.Infof("event AttackerDeath %s %s -> %s token=%s", e.Player, e.OldCoord, e.NewCoord, e.Token)

	case PlayerCellAdded:
		p := w.player(e.Player)
		p.CellIndex = e.CellIndex
		cell := w.cell(e.Coord)
		if !contains(cell.Players, e.Player) {
			cell.Players = append(cell.Players, e.Player)
		}
		cell.Len = e.Len
		log.Infof("event PlayerCellAdded %s %s cellIndex=%d len=%d", e.Player, e.Coord, e.CellIndex, e.Len)

	case PlayerCellRemoved:
		w.cellRemove(e.Coord, e.Player)
		log.Infof("event PlayerCellRemoved %s %s", e.Player, e.Coord)

	case PlayerCellTrimmed:
		cell := w.cell(e.Coord)
		if e.Len < len(cell.Players) {
			cell.Players = cell.Players[:e.Len]
		}
		cell.Len = e.Len
		log.Infof("event PlayerCellTrimmed %s len=%d", e.Coord, e.Len)

	case Unknown:
		log.Warnf("unhandled event %s args=%v", e.Name, e.Args)
	}
}

// player fetches a player, lazily creating it with defaults when the
// stream references someone whose start predates the checkpoint.
func (w *World) player(address string) *model.Player {
	if p, ok := w.players[address]; ok {
		return p
	}
	p := &model.Player{Address: address, Health: initialHealth}
	w.players[address] = p
	return p
}

func (w *World) cell(c coord.Coord) *model.Cell {
	if cell, ok := w.cells[Key(c)]; ok {
		return cell
	}
	cell := &model.Cell{Players: []string{}}
	w.cells[Key(c)] = cell
	return cell
}

func (w *World) cellAppend(c coord.Coord, player string) {
	cell := w.cell(c)
	if !contains(cell.Players, player) {
		cell.Players = append(cell.Players, player)
	}
	cell.Len = len(cell.Players)
}

func (w *World) cellRemove(c coord.Coord, player string) {
	cell := w.cell(c)
	for i, p := range cell.Players {
		if p == player {
			cell.Players = append(cell.Players[:i], cell.Players[i+1:]...)
			break
		}
	}
	cell.Len = len(cell.Players)
}

func (w *World) removePlayer(address string) {
	delete(w.players, address)
	for _, cell := range w.cells {
		for i, p := range cell.Players {
			if p == address {
				cell.Players = append(cell.Players[:i], cell.Players[i+1:]...)
				cell.Len = len(cell.Players)
				break
			}
		}
	}
}

// Snapshot copies the current view into a SnapshotDocument for the
// given block boundary. The copy is deep, so persistence and the read
// API never observe a mid-fold state.
func (w *World) Snapshot(networkID, mapName string, blockNumber, timestamp uint64) *model.SnapshotDocument {
	w.mu.RLock()
	defer w.mu.RUnlock()

	doc := &model.SnapshotDocument{
		ID:          model.SnapshotID(networkID, mapName, blockNumber),
		Type:        model.DocTypeBlock,
		Name:        mapName,
		NetworkID:   networkID,
		BlockNumber: blockNumber,
		Timestamp:   timestamp,
		Cities:      make(map[string]model.City, len(w.cities)),
		Players:     make(map[string]*model.Player, len(w.players)),
		Cells:       make(map[string]*model.Cell, len(w.cells)),
	}
	for k, c := range w.cities {
		doc.Cities[k] = c
	}
	for k, p := range w.players {
		cp := *p
		doc.Players[k] = &cp
	}
	for k, c := range w.cells {
		cp := &model.Cell{Players: append([]string{}, c.Players...), Len: c.Len}
		doc.Cells[k] = cp
	}
	return doc
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
