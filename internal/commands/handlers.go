package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pixil98/go-tinyplaces/internal/game"
)

const (
	defaultMoveSpeed = 120

	// Spectres (tile 9) glide; everything else bounces.
	spectreTile    = 9
	defaultPattern = "bounce"
	glidePattern   = "glide"
)

// login handles HELO: create a session for the connection. A second HELO
// simply replaces the session.
func (p *Processor) login(ctx context.Context, connID string, parts []string) {
	p.world.Login(connID)
	slog.InfoContext(ctx, "client logged in", "conn", connID)
}

// logout handles GBYE: remove the avatar from its room and drop the session.
// No departure notice is broadcast to the room. Cleanup is best effort;
// inconsistencies are warnings, not failures.
func (p *Processor) logout(ctx context.Context, connID string, parts []string) {
	sess := p.world.Logout(connID)
	if sess == nil {
		slog.WarnContext(ctx, "logout problem: client had no session", "conn", connID)
		return
	}

	room := sess.Room()
	avatar := sess.Avatar()
	switch {
	case room == nil || avatar == nil:
		slog.WarnContext(ctx, "logout problem: client had no avatar", "conn", connID)
	case room.RemoveMob(game.LayerMobs, avatar.ID) == nil:
		slog.WarnContext(ctx, "logout problem: client avatar was not in room", "conn", connID)
	}

	slog.InfoContext(ctx, "client logged out", "conn", connID, "remaining", p.world.SessionCount())
}

// addPlayer handles ADDP,layer,tile,x,y,scale,color: create the session's
// avatar, confirm to the sender with its assigned id, and announce it to
// everyone else in the room as a server-added mob of type player.
func (p *Processor) addPlayer(ctx context.Context, connID string, parts []string) {
	sess, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	layer, tile, x, y, scale, color, ok := parseMobFields(ctx, parts)
	if !ok {
		return
	}

	mob := room.MakeMob(layer, tile, x, y, scale, color, game.MobPlayer)
	if mob == nil {
		return
	}
	sess.SetAvatar(mob)

	// The confirmation echoes the client's own fields with the id filled in.
	fields := strings.Join(parts[1:], ",")
	p.world.Unicast(sess, fmt.Sprintf("ADDP,%d,%s\n", mob.ID, fields))
	p.world.Roomcast(room, fmt.Sprintf("ADDM,%d,%s,%d\n", mob.ID, fields, game.MobPlayer), sess)
}

// addMob handles ADDM,layer,tile,x,y,scale,color: create a prop and announce
// it to the whole room, sender included.
func (p *Processor) addMob(ctx context.Context, connID string, parts []string) {
	_, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	layer, tile, x, y, scale, color, ok := parseMobFields(ctx, parts)
	if !ok {
		return
	}

	mob := room.MakeMob(layer, tile, x, y, scale, color, game.MobProp)
	if mob == nil {
		return
	}

	p.world.Roomcast(room, fmt.Sprintf("ADDM,%d,%s,%d\n", mob.ID, strings.Join(parts[1:], ","), game.MobProp))
}

// updateMob handles UPDM,id,layer,tile,x,y,scale,color: overwrite an
// existing mob in place and relay the command verbatim. A missing mob is
// logged and nothing is broadcast.
func (p *Processor) updateMob(ctx context.Context, connID string, parts []string) {
	_, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	if len(parts) != 8 {
		slog.WarnContext(ctx, "malformed UPDM", "parts", len(parts))
		return
	}

	id, err1 := strconv.Atoi(parts[1])
	layer, err2 := strconv.Atoi(parts[2])
	tile, err3 := strconv.Atoi(parts[3])
	x, err4 := strconv.Atoi(parts[4])
	y, err5 := strconv.Atoi(parts[5])
	scale, err6 := strconv.ParseFloat(parts[6], 64)
	if err := firstErr(err1, err2, err3, err4, err5, err6); err != nil {
		slog.WarnContext(ctx, "malformed UPDM", "error", err)
		return
	}

	if room.UpdateMob(layer, id, tile, x, y, scale, parts[7]) == nil {
		slog.ErrorContext(ctx, "could not find mob", "id", id, "layer", layer, "room", room.Name)
		return
	}

	p.world.Roomcast(room, strings.Join(parts, ",")+"\n")
}

// deleteMob handles DELM,id,layer: remove the mob and relay the command.
// Deleting a mob that does not exist is a logged skip with no broadcast.
func (p *Processor) deleteMob(ctx context.Context, connID string, parts []string) {
	_, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	if len(parts) != 3 {
		slog.WarnContext(ctx, "malformed DELM", "parts", len(parts))
		return
	}

	id, err1 := strconv.Atoi(parts[1])
	layer, err2 := strconv.Atoi(parts[2])
	if err := firstErr(err1, err2); err != nil {
		slog.WarnContext(ctx, "malformed DELM", "error", err)
		return
	}

	if room.RemoveMob(layer, id) == nil {
		slog.WarnContext(ctx, "delete of unknown mob", "id", id, "layer", layer, "room", room.Name)
		return
	}

	p.world.Roomcast(room, strings.Join(parts, ",")+"\n")
}

// move handles MOVE,id,layer,dx,dy: start a move toward the given target,
// superseding any move already in flight for that mob.
func (p *Processor) move(ctx context.Context, connID string, parts []string) {
	sess, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	if len(parts) != 5 {
		slog.WarnContext(ctx, "malformed MOVE", "parts", len(parts))
		return
	}

	id, err1 := strconv.Atoi(parts[1])
	layer, err2 := strconv.Atoi(parts[2])
	dx, err3 := strconv.Atoi(parts[3])
	dy, err4 := strconv.Atoi(parts[4])
	if err := firstErr(err1, err2, err3, err4); err != nil {
		slog.WarnContext(ctx, "malformed MOVE", "error", err)
		return
	}

	mob := room.Mob(layer, id)
	if mob == nil {
		slog.ErrorContext(ctx, "could not find mob", "id", id, "layer", layer, "room", room.Name)
		return
	}

	pattern := defaultPattern
	if mob.Type == game.MobPlayer && mob.Tile == spectreTile {
		pattern = glidePattern
	}

	p.world.StartMove(sess, room, mob, layer, dx, dy, defaultMoveSpeed, pattern)
}

// fire handles FIRE,layer,type,dx,dy: launch a projectile from the session's
// avatar toward the target point.
func (p *Processor) fire(ctx context.Context, connID string, parts []string) {
	sess, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	avatar := sess.Avatar()
	if avatar == nil {
		slog.WarnContext(ctx, "FIRE without avatar", "conn", connID)
		return
	}

	if len(parts) != 5 {
		slog.WarnContext(ctx, "malformed FIRE", "parts", len(parts))
		return
	}

	layer, err1 := strconv.Atoi(parts[1])
	tile, err2 := strconv.Atoi(parts[2])
	dx, err3 := strconv.Atoi(parts[3])
	dy, err4 := strconv.Atoi(parts[4])
	if err := firstErr(err1, err2, err3, err4); err != nil {
		slog.WarnContext(ctx, "malformed FIRE", "error", err)
		return
	}

	p.world.FireProjectile(room, avatar, layer, tile, dx, dy)
}

// chat handles CHAT: relay the line to the room unmodified.
func (p *Processor) chat(ctx context.Context, connID string, parts []string) {
	_, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	p.world.Roomcast(room, strings.Join(parts, ",")+"\n")
}

// saveRoom handles SAVE,ref: persist the session's current room.
func (p *Processor) saveRoom(ctx context.Context, connID string, parts []string) {
	_, room := p.sessionRoom(ctx, connID)
	if room == nil {
		return
	}

	if len(parts) != 2 {
		slog.WarnContext(ctx, "malformed SAVE", "parts", len(parts))
		return
	}

	ref := strings.TrimSpace(parts[1])
	if err := p.world.SaveRoom(room, ref); err != nil {
		slog.ErrorContext(ctx, "saving room", "ref", ref, "error", err)
		return
	}
	slog.InfoContext(ctx, "room saved", "ref", ref, "room", room.Name)
}

// loadRoom handles LOAD,ref: attach the session to the referenced room,
// loading it from the map store on first use, and stream its contents.
func (p *Processor) loadRoom(ctx context.Context, connID string, parts []string) {
	sess := p.session(ctx, connID)
	if sess == nil {
		return
	}

	if len(parts) != 2 {
		slog.WarnContext(ctx, "malformed LOAD", "parts", len(parts))
		return
	}

	ref := strings.TrimSpace(parts[1])
	if _, err := p.world.JoinRoom(sess, ref); err != nil {
		slog.ErrorContext(ctx, "loading room", "ref", ref, "error", err)
	}
}

// startGame handles GAME. Currently a hook with no effect.
func (p *Processor) startGame(ctx context.Context, connID string, parts []string) {
	slog.DebugContext(ctx, "GAME received", "conn", connID)
}

// parseMobFields parses the shared tail of ADDP/ADDM lines:
// layer,tile,x,y,scale,color.
func parseMobFields(ctx context.Context, parts []string) (layer, tile, x, y int, scale float64, color string, ok bool) {
	if len(parts) != 7 {
		slog.WarnContext(ctx, "malformed add command", "parts", len(parts))
		return 0, 0, 0, 0, 0, "", false
	}

	var errs [5]error
	layer, errs[0] = strconv.Atoi(parts[1])
	tile, errs[1] = strconv.Atoi(parts[2])
	x, errs[2] = strconv.Atoi(parts[3])
	y, errs[3] = strconv.Atoi(parts[4])
	scale, errs[4] = strconv.ParseFloat(parts[5], 64)
	if err := firstErr(errs[:]...); err != nil {
		slog.WarnContext(ctx, "malformed add command", "error", err)
		return 0, 0, 0, 0, 0, "", false
	}

	return layer, tile, x, y, scale, parts[6], true
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
