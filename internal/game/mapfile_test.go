package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestMapFilePath(t *testing.T) {
	testutil.AssertEqual(t, "path", MapFilePath("maps", "lobby"), filepath.Join("maps", "lobby.txt"))
}

func TestReadMapFile(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir, "lobby", "Lobby", "floor",
		"1,5,100,200,1,1 1 1 1",
		"3,14,640,220,0.8,0.9 0.9 1 1",
		"5,20,500,100,1.5,1 1 1 0.6")

	room, err := ReadMapFile(MapFilePath(dir, "lobby"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "name", room.Name, "Lobby")
	testutil.AssertEqual(t, "backdrop", room.Backdrop, "floor")
	testutil.AssertEqual(t, "patches", room.MobCount(LayerPatches), 1)
	testutil.AssertEqual(t, "mobs", room.MobCount(LayerMobs), 1)
	testutil.AssertEqual(t, "clouds", room.MobCount(LayerClouds), 1)

	var mob *Mob
	room.ForEachMob(LayerMobs, func(m *Mob) { mob = m })
	testutil.AssertEqual(t, "tile", mob.Tile, 14)
	testutil.AssertEqual(t, "x", mob.X, 640)
	testutil.AssertEqual(t, "y", mob.Y, 220)
	testutil.AssertEqual(t, "scale", mob.Scale, 0.8)
	testutil.AssertEqual(t, "color", mob.Color, "0.9 0.9 1 1")
	testutil.AssertEqual(t, "type", mob.Type, MobProp)
}

func TestReadMapFile_SkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeTestMap(t, dir, "lobby", "Lobby", "floor",
		"1,5,100,200,1,1 1 1 1",
		"not,a,valid,line",
		"3,abc,1,2,1,1 1 1 1",
		"2,5,1,2,1,1 1 1 1", // no such layer
		"3,14,640,220,1,1 1 1 1")

	room, err := ReadMapFile(MapFilePath(dir, "lobby"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "patches", room.MobCount(LayerPatches), 1)
	testutil.AssertEqual(t, "mobs", room.MobCount(LayerMobs), 1)
}

func TestReadMapFile_BadVersion(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "old.txt"), []byte("v9\nOld\nfloor\n"), 0644)
	if err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err = ReadMapFile(filepath.Join(dir, "old.txt"))
	if err == nil {
		t.Error("expected version error")
	}
}

func TestReadMapFile_TruncatedHeader(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "short.txt"), []byte("v10\nLobby\n"), 0644)
	if err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	_, err = ReadMapFile(filepath.Join(dir, "short.txt"))
	if err == nil {
		t.Error("expected truncated header error")
	}
}

func TestReadMapFile_Missing(t *testing.T) {
	_, err := ReadMapFile(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteMapFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	room := NewRoom("Lobby", "floor")
	room.MakeMob(LayerPatches, 5, 100, 200, 1.0, "1 1 1 1", MobProp)
	room.MakeMob(LayerMobs, 14, 640, 220, 0.8, "0.9 0.9 1 1", MobProp)

	// Runtime state must not be persisted
	room.MakeMob(LayerMobs, 9, 10, 10, 1.0, "1 1 1 1", MobPlayer)
	room.MakeMob(LayerMobs, 9, 20, 20, 1.0, "1 1 1 1", MobCreature)
	room.MakeMob(LayerMobs, 3, 30, 30, 1.0, "1 1 1 1", MobProjectile)

	path := MapFilePath(dir, "lobby")
	if err := WriteMapFile(room, path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := ReadMapFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "name", loaded.Name, "Lobby")
	testutil.AssertEqual(t, "backdrop", loaded.Backdrop, "floor")
	testutil.AssertEqual(t, "patches", loaded.MobCount(LayerPatches), 1)
	testutil.AssertEqual(t, "mobs", loaded.MobCount(LayerMobs), 1)
	testutil.AssertEqual(t, "clouds", loaded.MobCount(LayerClouds), 0)

	// Ids restart from 1 in the loaded room
	var ids []int
	for _, layer := range []int{LayerPatches, LayerMobs} {
		loaded.ForEachMob(layer, func(m *Mob) { ids = append(ids, m.ID) })
	}
	for _, id := range ids {
		if id < 1 || id > 2 {
			t.Errorf("expected reassigned ids 1..2, got %v", ids)
		}
	}
}
