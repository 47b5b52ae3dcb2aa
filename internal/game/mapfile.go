package game

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pixil98/go-tinyplaces/internal/storage"
)

// Map files are flat text: a version tag, the room name, the backdrop
// reference, then one prop entity per line. Ids are not persisted; they are
// reassigned when the map is loaded.
const mapFileVersion = "v10"

// MapFilePath resolves a map reference to its file inside the map store.
func MapFilePath(dir, ref string) string {
	return filepath.Join(dir, ref+".txt")
}

// ReadMapFile loads a room from a map file. Malformed entity lines are
// logged and skipped; the rest of the map still loads.
func ReadMapFile(path string) (*Room, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)

	header := make([]string, 0, 3)
	for len(header) < 3 && sc.Scan() {
		header = append(header, strings.TrimSpace(sc.Text()))
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("map file %s: truncated header", path)
	}
	if header[0] != mapFileVersion {
		return nil, fmt.Errorf("map file %s: unsupported version %q", path, header[0])
	}

	room := NewRoom(header[1], header[2])

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := addMapEntity(room, line); err != nil {
			slog.Warn("skipping bad map line", "file", path, "line", line, "error", err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading map file %s: %w", path, err)
	}

	return room, nil
}

// addMapEntity parses "layer,tile,x,y,scale,color" and creates the prop.
func addMapEntity(room *Room, line string) error {
	parts := strings.Split(line, ",")
	if len(parts) != 6 {
		return fmt.Errorf("expected 6 fields, got %d", len(parts))
	}

	nums := make([]int, 4)
	for i := range nums {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return fmt.Errorf("field %d: %w", i+1, err)
		}
		nums[i] = n
	}

	scale, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
	if err != nil {
		return fmt.Errorf("scale: %w", err)
	}

	if room.MakeMob(nums[0], nums[1], nums[2], nums[3], scale, strings.TrimSpace(parts[5]), MobProp) == nil {
		return fmt.Errorf("bad layer %d", nums[0])
	}
	return nil
}

// WriteMapFile persists a room. Only prop entities are saved; players,
// creatures, and projectiles are runtime state. The write is atomic so an
// interrupted save never truncates an existing map.
func WriteMapFile(room *Room, path string) error {
	var sb strings.Builder
	sb.WriteString(mapFileVersion + "\n")
	sb.WriteString(room.Name + "\n")
	sb.WriteString(room.Backdrop + "\n")

	for _, layer := range []int{LayerPatches, LayerMobs, LayerClouds} {
		room.ForEachMob(layer, func(m *Mob) {
			if m.Type != MobProp {
				return
			}
			fmt.Fprintf(&sb, "%d,%d,%d,%d,%s,%s\n",
				layer, m.Tile, m.X, m.Y, FormatScale(m.Scale), m.Color)
		})
	}

	return storage.AtomicWrite(path, []byte(sb.String()), 0644)
}
