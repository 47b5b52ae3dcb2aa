package game

import (
	"context"
	"testing"

	"github.com/pixil98/go-testutil"
)

func setupTransitWorld(t *testing.T) (*World, *fakePublisher, *Session, *Room, *Mob) {
	t.Helper()

	w, pub, mapsDir := newTestWorld(t)
	writeTestMap(t, mapsDir, "wasteland_and_pond", "Wasteland", "soil")

	sess := w.Login("c1")
	lobby, err := w.JoinRoom(sess, "lobby")
	if err != nil {
		t.Fatalf("joining lobby: %v", err)
	}

	avatar := lobby.MakeMob(LayerMobs, 5, 800, 150, 1.0, "1 1 1 1", MobPlayer)
	sess.SetAvatar(avatar)
	pub.reset()

	return w, pub, sess, lobby, avatar
}

func TestCheckTransit_CarriesPlayer(t *testing.T) {
	w, pub, sess, lobby, avatar := setupTransitWorld(t)

	// A move finishing on the lobby's exit point
	mv := NewMove(lobby, sess, avatar, LayerMobs, 837, 168, 120, "bounce")
	w.checkTransit(context.Background(), lobby, mv)

	target := w.RoomByRef("wasteland_and_pond")
	if target == nil {
		t.Fatal("expected target room to be loaded")
	}
	testutil.AssertEqual(t, "session room", sess.Room() == target, true)

	// The old avatar is gone from the lobby
	if lobby.Mob(LayerMobs, avatar.ID) != nil {
		t.Error("expected avatar to leave the lobby")
	}

	// A new avatar stands at the entry point
	next := sess.Avatar()
	if next == avatar {
		t.Fatal("expected a fresh avatar")
	}
	testutil.AssertEqual(t, "entry x", next.X, 360)
	testutil.AssertEqual(t, "entry y", next.Y, 480)
	testutil.AssertEqual(t, "tile carried over", next.Tile, avatar.Tile)
	testutil.AssertEqual(t, "type", next.Type, MobPlayer)

	// The default transit spawns its guard pod: avatar plus seven creatures
	testutil.AssertEqual(t, "target mobs", target.MobCount(LayerMobs), 8)
	groups := target.Groups()
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	testutil.AssertEqual(t, "group size", groups[0].Size(), 7)

	// The joiner got a LOAD and an ADDP for the fresh avatar
	var sawLoad, sawAddp bool
	for _, m := range pub.messages() {
		if m.subject != "client.c1" {
			continue
		}
		if len(m.data) >= 4 && m.data[:4] == "LOAD" {
			sawLoad = true
		}
		if len(m.data) >= 4 && m.data[:4] == "ADDP" {
			sawAddp = true
		}
	}
	if !sawLoad || !sawAddp {
		t.Errorf("expected LOAD and ADDP for the joiner, got %v", pub.messages())
	}
}

func TestCheckTransit_NearMiss(t *testing.T) {
	w, _, sess, lobby, avatar := setupTransitWorld(t)

	// Finishes outside the trigger radius
	mv := NewMove(lobby, sess, avatar, LayerMobs, 880, 168, 120, "bounce")
	w.checkTransit(context.Background(), lobby, mv)

	testutil.AssertEqual(t, "still in lobby", sess.Room() == lobby, true)
	testutil.AssertEqual(t, "avatar unchanged", sess.Avatar() == avatar, true)
}

func TestCheckTransit_IgnoresAiMoves(t *testing.T) {
	w, _, sess, lobby, avatar := setupTransitWorld(t)

	// No session on the move: AI motion never triggers a transition
	mv := NewMove(lobby, nil, avatar, LayerMobs, 837, 168, 120, "bounce")
	w.checkTransit(context.Background(), lobby, mv)

	testutil.AssertEqual(t, "still in lobby", sess.Room() == lobby, true)
	if w.RoomByRef("wasteland_and_pond") != nil {
		t.Error("expected target room to stay unloaded")
	}
}

func TestCheckTransit_WrongRoom(t *testing.T) {
	w, _, sess, lobby, avatar := setupTransitWorld(t)

	other := NewRoom("Elsewhere", "dirt")
	mv := NewMove(lobby, sess, avatar, LayerMobs, 837, 168, 120, "bounce")
	w.checkTransit(context.Background(), other, mv)

	testutil.AssertEqual(t, "unaffected", sess.Avatar() == avatar, true)
}
