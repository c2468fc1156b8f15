// Package store persists game saves as one JSON document per slot.
//
// Writes go to a temporary file first and are renamed into place, so a
// crash mid-write never corrupts an existing save.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"oraklo/internal/game"
)

// Version is the current on-disk save format version. Loads reject any
// other version as corrupt rather than guessing at a migration.
const Version = 1

// Kind discriminates what a save slot contains.
type Kind string

const (
	KindTwentyQuestions Kind = "twentyq"
	KindAdventure       Kind = "adventure"
)

var (
	ErrNotFound    = errors.New("save not found")
	ErrCorrupt     = errors.New("save corrupt")
	ErrInvalidSlot = errors.New("invalid slot name")
)

// envelope is the versioned on-disk save format.
type envelope struct {
	Version int             `json:"version"`
	Kind    Kind            `json:"kind"`
	SavedAt time.Time       `json:"savedAt"`
	Payload json.RawMessage `json:"payload"`
}

// SlotInfo describes one existing save slot.
type SlotInfo struct {
	Slot    string
	Kind    Kind
	SavedAt time.Time
}

// Store reads and writes save slots under a single directory. Access is
// exclusive per slot; no concurrent use of the same slot is assumed.
type Store struct {
	dir string
	log zerolog.Logger
}

// New creates a store rooted at dir, creating the directory if needed.
func New(dir string, log zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save directory: %w", err)
	}
	return &Store{dir: dir, log: log}, nil
}

// SaveSession persists a Twenty Questions session under its ID.
func (s *Store) SaveSession(session *game.Session) error {
	return s.save(session.ID, KindTwentyQuestions, session)
}

// SaveAdventure persists an adventure under its ID.
func (s *Store) SaveAdventure(adventure *game.Adventure) error {
	return s.save(adventure.ID, KindAdventure, adventure)
}

// LoadSession restores a Twenty Questions session from a slot.
func (s *Store) LoadSession(slot string) (*game.Session, error) {
	var session game.Session
	if err := s.load(slot, KindTwentyQuestions, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// LoadAdventure restores an adventure from a slot.
func (s *Store) LoadAdventure(slot string) (*game.Adventure, error) {
	var adventure game.Adventure
	if err := s.load(slot, KindAdventure, &adventure); err != nil {
		return nil, err
	}
	return &adventure, nil
}

// Delete removes a save slot. Deleting a missing slot fails ErrNotFound.
func (s *Store) Delete(slot string) error {
	path, err := s.slotPath(slot)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	s.log.Info().Str("slot", slot).Msg("save deleted")
	return nil
}

// List returns every save slot, newest first. Slots whose envelope cannot
// be read are still listed, with an empty Kind, so callers can surface
// them instead of silently losing saves.
func (s *Store) List() ([]SlotInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read save directory: %w", err)
	}

	var slots []SlotInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		slot := strings.TrimSuffix(name, ".json")
		env, err := s.readEnvelope(slot)
		if err != nil {
			s.log.Warn().Err(err).Str("slot", slot).Msg("unreadable save")
			slots = append(slots, SlotInfo{Slot: slot})
			continue
		}
		slots = append(slots, SlotInfo{Slot: slot, Kind: env.Kind, SavedAt: env.SavedAt})
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].SavedAt.After(slots[j].SavedAt)
	})
	return slots, nil
}

func (s *Store) save(slot string, kind Kind, payload any) error {
	path, err := s.slotPath(slot)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal save payload: %w", err)
	}
	data, err := json.MarshalIndent(envelope{
		Version: Version,
		Kind:    kind,
		SavedAt: time.Now().UTC(),
		Payload: raw,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal save envelope: %w", err)
	}

	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("write save %s: %w", slot, err)
	}
	s.log.Debug().Str("slot", slot).Str("kind", string(kind)).Msg("save written")
	return nil
}

func (s *Store) load(slot string, kind Kind, payload any) error {
	env, err := s.readEnvelope(slot)
	if err != nil {
		return err
	}
	if env.Kind != kind {
		return fmt.Errorf("%w: slot holds a %s save", ErrCorrupt, env.Kind)
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}

func (s *Store) readEnvelope(slot string) (envelope, error) {
	path, err := s.slotPath(slot)
	if err != nil {
		return envelope{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return envelope{}, ErrNotFound
		}
		return envelope{}, fmt.Errorf("read save %s: %w", slot, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if env.Version != Version {
		return envelope{}, fmt.Errorf("%w: unsupported save version %d", ErrCorrupt, env.Version)
	}
	return env, nil
}

// slotPath validates a slot name and maps it to its file path.
func (s *Store) slotPath(slot string) (string, error) {
	if slot == "" || slot != filepath.Base(slot) || strings.HasPrefix(slot, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlot, slot)
	}
	return filepath.Join(s.dir, slot+".json"), nil
}

// writeAtomic writes data to a sibling temp file, closes it, then renames
// it over the target.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
