package game

import (
	"testing"

	"thistoken/indexer/coord"
	"thistoken/indexer/model"
)

func TestStartMoveDeathLifecycle(t *testing.T) {
	w := NewWorld()
	a := coord.FromXY(3, 1)
	b := coord.FromXY(3, 2)

	w.Apply(PlayerStart{Player: "0x1", Token: "0xt", Coord: a})
	w.Apply(PlayerStart{Player: "0x2", Token: "0xt", Coord: a})

	snap := w.Snapshot("1", "m", 1, 0)
	if len(snap.Players) != 2 {
		t.Fatalf("players = %d", len(snap.Players))
	}
	if got := snap.Cells[Key(a)]; got.Len != 2 || len(got.Players) != 2 {
		t.Fatalf("cell %s = %+v", a, got)
	}

	w.Apply(PlayerMove{Player: "0x1", OldCoord: a, NewCoord: b})
	snap = w.Snapshot("1", "m", 2, 0)
	if snap.Players["0x1"].Coord != b {
		t.Fatalf("player coord %s", snap.Players["0x1"].Coord)
	}
	if got := snap.Cells[Key(a)]; got.Len != 1 || got.Players[0] != "0x2" {
		t.Fatalf("old cell %+v", got)
	}
	if got := snap.Cells[Key(b)]; got.Len != 1 || got.Players[0] != "0x1" {
		t.Fatalf("new cell %+v", got)
	}

	w.Apply(AttackerDeath{Player: "0x1", Token: "0xt", OldCoord: a, NewCoord: b})
	snap = w.Snapshot("1", "m", 3, 0)
	if _, ok := snap.Players["0x1"]; ok {
		t.Fatal("dead player still present")
	}
	if got := snap.Cells[Key(b)]; got.Len != 0 {
		t.Fatalf("dead player still occupies %+v", got)
	}
}

func TestMoveBeforeStartCreatesPlayerLazily(t *testing.T) {
	w := NewWorld()
	b := coord.FromXY(2, 2)
	w.Apply(PlayerMove{Player: "0x9", OldCoord: coord.FromXY(1, 1), NewCoord: b})

	snap := w.Snapshot("1", "m", 1, 0)
	p, ok := snap.Players["0x9"]
	if !ok {
		t.Fatal("player not created")
	}
	if p.Coord != b {
		t.Fatalf("coord %s", p.Coord)
	}
	if p.Health != initialHealth {
		t.Fatalf("health %d", p.Health)
	}
}

func TestCityUpdateUpsertsAndKeepsLevel(t *testing.T) {
	w := NewWorld()
	c := coord.FromXY(0, 1)
	w.SeedCities(map[string]model.City{Key(c): {Coord: c, X: 0, Y: 1, Level: 3}})

	w.Apply(CityUpdate{Coord: c, Title: "Carthage", Defence: 3})
	snap := w.Snapshot("1", "m", 1, 0)
	city := snap.Cities[Key(c)]
	if city.Title != "Carthage" || city.Defence != 3 {
		t.Fatalf("city %+v", city)
	}
	if city.Level != 3 {
		t.Fatalf("seeded level lost: %+v", city)
	}

	// update for a never-seen coordinate lands lazily
	other := coord.FromXY(5, 5)
	w.Apply(CityUpdate{Coord: other, Title: "Ultima", Defence: 1})
	snap = w.Snapshot("1", "m", 2, 0)
	if snap.Cities[Key(other)].Title != "Ultima" {
		t.Fatal("lazy city not created")
	}
}

func TestHealthUpdate(t *testing.T) {
	w := NewWorld()
	w.Apply(HealthUpdate{Player: "0x1", Health: 42})
	if w.Snapshot("1", "m", 1, 0).Players["0x1"].Health != 42 {
		t.Fatal("health not applied")
	}
}

func TestCellBookkeepingEvents(t *testing.T) {
	w := NewWorld()
	c := coord.FromXY(1, 1)

	w.Apply(PlayerCellAdded{Player: "0x1", Coord: c, CellIndex: 0, Len: 1})
	w.Apply(PlayerCellAdded{Player: "0x2", Coord: c, CellIndex: 1, Len: 2})
	snap := w.Snapshot("1", "m", 1, 0)
	if cell := snap.Cells[Key(c)]; cell.Len != 2 || len(cell.Players) != 2 {
		t.Fatalf("cell %+v", cell)
	}
	if snap.Players["0x2"].CellIndex != 1 {
		t.Fatalf("cellIndex %d", snap.Players["0x2"].CellIndex)
	}

	w.Apply(PlayerCellRemoved{Player: "0x1", Coord: c})
	snap = w.Snapshot("1", "m", 2, 0)
	if cell := snap.Cells[Key(c)]; cell.Len != 1 || cell.Players[0] != "0x2" {
		t.Fatalf("after remove %+v", cell)
	}

	w.Apply(PlayerCellTrimmed{Coord: c, Len: 0})
	snap = w.Snapshot("1", "m", 3, 0)
	if cell := snap.Cells[Key(c)]; cell.Len != 0 || len(cell.Players) != 0 {
		t.Fatalf("after trim %+v", cell)
	}
}

func TestDuplicateCellAddIsIdempotent(t *testing.T) {
	// PlayerStart and the contract's own PlayerCellAdded both report
	// the same occupancy; folding both must not double-count
	w := NewWorld()
	c := coord.FromXY(1, 1)
	w.Apply(PlayerStart{Player: "0x1", Token: "0xt", Coord: c})
	w.Apply(PlayerCellAdded{Player: "0x1", Coord: c, CellIndex: 0, Len: 1})
	if cell := w.Snapshot("1", "m", 1, 0).Cells[Key(c)]; len(cell.Players) != 1 {
		t.Fatalf("double-counted occupancy %+v", cell)
	}
}

func TestFoldTotality(t *testing.T) {
	w := NewWorld()
	events := []Event{
		PlayerCellRemoved{Player: "0xghost", Coord: coord.FromXY(9, 9)},
		PlayerCellTrimmed{Coord: coord.FromXY(8, 8), Len: 5},
		DefenderDeath{Player: "0xnever", Coord: coord.FromXY(7, 7)},
		DefenderDamage{Defender: "0xsomeone", Damage: 10},
		Unknown{Name: "Mystery", Args: map[string]interface{}{"a": 1}},
	}
	for _, ev := range events {
		w.Apply(ev) // must not panic
	}
	snap := w.Snapshot("1", "m", 1, 0)
	if len(snap.Players) != 0 {
		t.Fatalf("spurious players %v", snap.Players)
	}
}

func TestUnknownEventChangesNothing(t *testing.T) {
	w := NewWorld()
	w.Apply(PlayerStart{Player: "0x1", Token: "0xt", Coord: coord.FromXY(1, 1)})
	before := w.Snapshot("1", "m", 1, 0)
	w.Apply(Unknown{Name: "NewThing", Args: map[string]interface{}{"x": 1}})
	after := w.Snapshot("1", "m", 1, 0)
	if len(after.Players) != len(before.Players) || len(after.Cells) != len(before.Cells) {
		t.Fatal("unknown event mutated state")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	w := NewWorld()
	c := coord.FromXY(1, 1)
	w.Apply(PlayerStart{Player: "0x1", Token: "0xt", Coord: c})
	snap := w.Snapshot("1", "m", 1, 0)

	w.Apply(HealthUpdate{Player: "0x1", Health: 1})
	w.Apply(PlayerMove{Player: "0x1", OldCoord: c, NewCoord: coord.FromXY(2, 2)})

	if snap.Players["0x1"].Health != initialHealth {
		t.Fatal("snapshot shares player with live state")
	}
	if snap.Cells[Key(c)].Len != 1 {
		t.Fatal("snapshot shares cell with live state")
	}
}
