package game

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-tinyplaces/internal/storage"
)

// staticStore is an in-memory Storer for tests.
type staticStore[T storage.ValidatingSpec] map[string]T

func (s staticStore[T]) Save(string, T) error { return nil }
func (s staticStore[T]) Get(id string) T      { return s[id] }
func (s staticStore[T]) GetAll() map[string]T { return s }

type pubMsg struct {
	subject string
	data    string
}

// fakePublisher captures everything the world publishes.
type fakePublisher struct {
	mu   sync.Mutex
	msgs []pubMsg
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, pubMsg{subject: subject, data: string(data)})
	return nil
}

func (p *fakePublisher) messages() []pubMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]pubMsg, len(p.msgs))
	copy(out, p.msgs)
	return out
}

func (p *fakePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = nil
}

func testCreature() *Creature {
	return &Creature{
		DisplayName: "Dust Devil",
		Tile:        9,
		Color:       "0.8 0.9 1 1",
		Speed:       55,
		Pattern:     "glide",
		Life:        30,
		Armor:       1,
	}
}

func testSpell() *Spell {
	return &Spell{DisplayName: "Firebolt", Tile: 3, Damage: 10, Element: "fire"}
}

func newTestWorld(t *testing.T) (*World, *fakePublisher, string) {
	t.Helper()

	mapsDir := t.TempDir()
	writeTestMap(t, mapsDir, "lobby", "Lobby", "floor")

	pub := &fakePublisher{}
	w := NewWorld(pub,
		staticStore[*Creature]{"dust-devil": testCreature()},
		staticStore[*Spell]{"firebolt": testSpell()},
		mapsDir, DefaultTransits())
	return w, pub, mapsDir
}

func writeTestMap(t *testing.T, dir, ref, name, backdrop string, entities ...string) {
	t.Helper()

	lines := append([]string{"v10", name, backdrop}, entities...)
	err := os.WriteFile(filepath.Join(dir, ref+".txt"), []byte(strings.Join(lines, "\n")+"\n"), 0644)
	if err != nil {
		t.Fatalf("writing map fixture: %v", err)
	}
}

func TestWorld_Sessions(t *testing.T) {
	w, _, _ := newTestWorld(t)

	s1 := w.Login("c1")
	w.Login("c2")
	testutil.AssertEqual(t, "count", w.SessionCount(), 2)
	testutil.AssertEqual(t, "lookup", w.Session("c1") == s1, true)

	// A second HELO replaces the session
	s1b := w.Login("c1")
	testutil.AssertEqual(t, "count", w.SessionCount(), 2)
	testutil.AssertEqual(t, "replaced", w.Session("c1") == s1b, true)

	out := w.Logout("c1")
	testutil.AssertEqual(t, "logout returns session", out == s1b, true)
	testutil.AssertEqual(t, "count", w.SessionCount(), 1)

	if w.Logout("never-logged-in") != nil {
		t.Error("expected nil for unknown connection")
	}
}

func TestWorld_LoadRoom(t *testing.T) {
	w, _, mapsDir := newTestWorld(t)

	room, fresh, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "fresh", fresh, true)
	testutil.AssertEqual(t, "name", room.Name, "Lobby")

	// Second load reuses the instance and touches no files
	err = os.Remove(filepath.Join(mapsDir, "lobby.txt"))
	if err != nil {
		t.Fatalf("removing map file: %v", err)
	}

	again, fresh, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "fresh", fresh, false)
	testutil.AssertEqual(t, "same instance", again == room, true)
}

func TestWorld_LoadRoom_Missing(t *testing.T) {
	w, _, _ := newTestWorld(t)

	_, _, err := w.LoadRoom("no-such-map")
	if err == nil {
		t.Error("expected error for missing map")
	}
}

func TestWorld_Unicast(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	sess := w.Login("c1")
	w.Unicast(sess, "CHAT,hi\n")

	msgs := pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	testutil.AssertEqual(t, "subject", msgs[0].subject, "client.c1")
	testutil.AssertEqual(t, "data", msgs[0].data, "CHAT,hi\n")
}

func TestWorld_Roomcast(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	room, _, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in1 := w.Login("c1")
	in1.SetRoom(room)
	in2 := w.Login("c2")
	in2.SetRoom(room)
	w.Login("elsewhere")
	pub.reset()

	w.Roomcast(room, "CHAT,hi\n")

	msgs := pub.messages()
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d: %v", len(msgs), msgs)
	}
	subjects := map[string]bool{}
	for _, m := range msgs {
		subjects[m.subject] = true
		testutil.AssertEqual(t, "data", m.data, "CHAT,hi\n")
	}
	if !subjects["client.c1"] || !subjects["client.c2"] {
		t.Errorf("expected both room members, got %v", subjects)
	}
}

func TestWorld_Roomcast_Excludes(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	room, _, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in1 := w.Login("c1")
	in1.SetRoom(room)
	in2 := w.Login("c2")
	in2.SetRoom(room)
	pub.reset()

	w.Roomcast(room, "CHAT,hi\n", in1)

	msgs := pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	testutil.AssertEqual(t, "subject", msgs[0].subject, "client.c2")
}

func TestWorld_Broadcast(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	w.Login("c1")
	w.Login("c2")
	pub.reset()

	w.Broadcast("GAME\n")

	testutil.AssertEqual(t, "messages", len(pub.messages()), 2)
}

func TestWorld_StartMove(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	room, _, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sess := w.Login("c1")
	sess.SetRoom(room)
	mob := room.MakeMob(LayerMobs, 5, 0, 0, 1.0, "1 1 1 1", MobPlayer)
	pub.reset()

	w.StartMove(sess, room, mob, LayerMobs, 300, 400, 120, "bounce")
	testutil.AssertEqual(t, "action count", room.ActionCount(), 1)

	msgs := pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	testutil.AssertEqual(t, "announce", msgs[0].data, "MOVE,1,3,300,400,120,bounce\n")

	// A second move supersedes the first
	w.StartMove(sess, room, mob, LayerMobs, 10, 20, 120, "bounce")
	testutil.AssertEqual(t, "action count", room.ActionCount(), 1)
	ex, ey := room.MoveFor(mob.ID).End()
	testutil.AssertEqual(t, "target x", ex, 10)
	testutil.AssertEqual(t, "target y", ey, 20)
}

func TestWorld_FireProjectile(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	room, _, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firer := room.MakeMob(LayerMobs, 5, 100, 100, 1.0, "1 1 1 1", MobPlayer)
	pub.reset()

	proj := w.FireProjectile(room, firer, LayerMobs, 3, 500, 400)
	if proj == nil {
		t.Fatal("expected a projectile")
	}

	testutil.AssertEqual(t, "type", proj.Type, MobProjectile)
	testutil.AssertEqual(t, "start x", proj.X, 100)
	testutil.AssertEqual(t, "start y", proj.Y, 100)
	if proj.Spell == nil || proj.Spell.DisplayName != "Firebolt" {
		t.Errorf("expected the tile 3 spell to be attached, got %v", proj.Spell)
	}
	testutil.AssertEqual(t, "action count", room.ActionCount(), 1)

	// No sessions in the room; the announcement just goes nowhere
	testutil.AssertEqual(t, "messages", len(pub.messages()), 0)
}

func TestWorld_FireProjectile_UnknownSpellTile(t *testing.T) {
	w, _, _ := newTestWorld(t)

	room, _, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	firer := room.MakeMob(LayerMobs, 5, 100, 100, 1.0, "1 1 1 1", MobPlayer)

	proj := w.FireProjectile(room, firer, LayerMobs, 99, 500, 400)
	if proj == nil {
		t.Fatal("expected a projectile")
	}
	if proj.Spell != nil {
		t.Errorf("expected no spell for unknown tile, got %v", proj.Spell)
	}
}

func TestWorld_JoinRoom(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	sess := w.Login("c1")
	pub.reset()

	room, err := w.JoinRoom(sess, "lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "attached", sess.Room() == room, true)

	msgs := pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d: %v", len(msgs), msgs)
	}
	testutil.AssertEqual(t, "load line", msgs[0].data, "LOAD,Lobby,floor,lobby\n")
}

func TestWorld_ResolveHit_DamagesAndKills(t *testing.T) {
	w, pub, _ := newTestWorld(t)

	room, _, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	target := room.MakeMob(LayerMobs, 9, 200, 200, 1.0, "1 1 1 1", MobCreature)
	target.Creature = testCreature().NewStats()
	proj := room.MakeMob(LayerMobs, 3, 190, 200, 1.0, "1 1 1 1", MobProjectile)
	proj.Spell = testSpell()

	mv := NewMove(room, nil, proj, LayerMobs, 400, 200, ProjectileSpeed, "")
	mv.hit = target
	ctx := context.Background()

	// Firebolt (10) against armor 1: 9 per hit, life 30
	w.resolveHit(ctx, room, mv)
	testutil.AssertEqual(t, "life after one hit", target.Creature.Life, 21)
	testutil.AssertEqual(t, "still present", room.Mob(LayerMobs, target.ID) == target, true)

	w.resolveHit(ctx, room, mv)
	w.resolveHit(ctx, room, mv)
	testutil.AssertEqual(t, "life after three hits", target.Creature.Life, 3)

	sess := w.Login("c1")
	sess.SetRoom(room)
	pub.reset()

	// The fourth hit drops life below zero and kills
	w.resolveHit(ctx, room, mv)
	if room.Mob(LayerMobs, target.ID) != nil {
		t.Error("expected target to be removed")
	}

	msgs := pub.messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	testutil.AssertEqual(t, "removal notice", msgs[0].data, "DELM,1,3\n")
}

func TestWorld_ResolveHit_NonCreatureBlocks(t *testing.T) {
	w, _, _ := newTestWorld(t)

	room, _, err := w.LoadRoom("lobby")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	player := room.MakeMob(LayerMobs, 5, 200, 200, 1.0, "1 1 1 1", MobPlayer)
	proj := room.MakeMob(LayerMobs, 3, 190, 200, 1.0, "1 1 1 1", MobProjectile)
	proj.Spell = testSpell()

	mv := NewMove(room, nil, proj, LayerMobs, 400, 200, ProjectileSpeed, "")
	mv.hit = player

	// No creature stats, nothing to damage; the projectile just stops
	w.resolveHit(context.Background(), room, mv)
	if room.Mob(LayerMobs, player.ID) == nil {
		t.Error("expected player to survive")
	}
}
