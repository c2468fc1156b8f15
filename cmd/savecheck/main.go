// Command savecheck inspects a save directory and reports on every slot:
// its kind, when it was written, and whether it still loads cleanly.
// It exits non-zero when any save is unreadable.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"oraklo/internal/store"
)

func main() {
	dir := flag.String("dir", "saves", "save directory to inspect")
	flag.Parse()

	logger := zerolog.New(zerolog.NewConsoleWriter()).Level(zerolog.ErrorLevel)
	saves, err := store.New(*dir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "savecheck: %v\n", err)
		os.Exit(1)
	}

	slots, err := saves.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "savecheck: %v\n", err)
		os.Exit(1)
	}
	if len(slots) == 0 {
		fmt.Printf("no saves in %s\n", *dir)
		return
	}

	broken := 0
	for _, slot := range slots {
		status := "ok"
		if err := verify(saves, slot); err != nil {
			broken++
			status = err.Error()
			if errors.Is(err, store.ErrCorrupt) {
				status = "CORRUPT"
			}
		}
		fmt.Printf("%-38s %-10s %-20s %s\n", slot.Slot, slot.Kind,
			slot.SavedAt.Local().Format("2006-01-02 15:04:05"), status)
	}

	if broken > 0 {
		fmt.Fprintf(os.Stderr, "savecheck: %d save(s) failed to load\n", broken)
		os.Exit(1)
	}
}

// verify fully decodes a slot's payload, not just its envelope.
func verify(saves *store.Store, slot store.SlotInfo) error {
	switch slot.Kind {
	case store.KindTwentyQuestions:
		_, err := saves.LoadSession(slot.Slot)
		return err
	case store.KindAdventure:
		_, err := saves.LoadAdventure(slot.Slot)
		return err
	case "":
		return store.ErrCorrupt
	default:
		return fmt.Errorf("unknown save kind %q", slot.Kind)
	}
}
