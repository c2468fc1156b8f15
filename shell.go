package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"oraklo/internal/game"
	"oraklo/internal/store"
)

// shell is the interactive terminal loop. It owns no game state of its
// own: every session lives in the engines and the save store, and every
// error is rendered as a message rather than ending the process.
type shell struct {
	engine *game.Engine
	dm     *game.DM
	saves  *store.Store
	in     *bufio.Scanner
	out    io.Writer
}

func newShell(engine *game.Engine, dm *game.DM, saves *store.Store, in io.Reader, out io.Writer) *shell {
	return &shell{
		engine: engine,
		dm:     dm,
		saves:  saves,
		in:     bufio.NewScanner(in),
		out:    out,
	}
}

func (s *shell) run() {
	s.printf("oraklo - games against a generative oracle\n")
	for {
		s.printf("\n1) New Twenty Questions game\n2) New adventure\n3) Continue a saved game\n4) Quit\n")
		line, ok := s.readLine("> ")
		if !ok {
			return
		}
		switch line {
		case "1", "new":
			s.newTwentyQuestions()
		case "2", "adventure":
			s.newAdventure()
		case "3", "continue":
			s.continueGame()
		case "4", "quit", "exit":
			s.printf("Farewell, adventurer.\n")
			return
		default:
			s.printf("Pick a number between 1 and 4.\n")
		}
	}
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// readLine prompts and reads one trimmed line. ok is false on EOF.
func (s *shell) readLine(prompt string) (string, bool) {
	s.printf("%s", prompt)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// choose renders numbered options and reads a selection until valid.
func (s *shell) choose(title string, options []string) (int, bool) {
	s.printf("\n%s:\n", title)
	for i, option := range options {
		s.printf("  %2d) %s\n", i+1, option)
	}
	for {
		line, ok := s.readLine("> ")
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(options) {
			s.printf("Pick a number between 1 and %d.\n", len(options))
			continue
		}
		return n - 1, true
	}
}

func (s *shell) newTwentyQuestions() {
	idx, ok := s.choose("Choose a category", []string{"Person", "Place", "Thing"})
	if !ok {
		return
	}
	category := game.Categories[idx]

	s.printf("The oracle is choosing a secret %s...\n", category)
	session, err := s.engine.NewSession(context.Background(), category)
	if err != nil {
		s.renderError(err)
		return
	}
	s.printf("Done. You have %d yes/no questions. Type a question, or guess <subject> when ready.\n", session.Remaining)
	s.playTwentyQuestions(session)
}

func (s *shell) playTwentyQuestions(session *game.Session) {
	for {
		if session.Terminal() {
			s.printTwentyQuestionsOutcome(session)
			return
		}
		s.printf("\n[%d question%s left] ask | guess <subject> | history | menu\n",
			session.Remaining, plural(session.Remaining))
		line, ok := s.readLine("? ")
		if !ok {
			return
		}

		switch {
		case line == "":
			continue
		case line == "menu":
			// Progress is already saved; the game stays resumable.
			return
		case line == "abandon":
			s.engine.Abandon(session)
			s.printf("Game abandoned. The subject was: %s\n", session.Subject)
			return
		case line == "history":
			if len(session.Questions) == 0 {
				s.printf("No questions asked yet.\n")
			}
			for i, qa := range session.Questions {
				s.printf("%2d. %s -> %s\n", i+1, qa.Question, qa.Answer)
			}
		case strings.HasPrefix(line, "guess "):
			guess := strings.TrimSpace(strings.TrimPrefix(line, "guess "))
			result, err := s.engine.MakeGuess(context.Background(), session, guess)
			if err != nil {
				s.renderError(err)
				continue
			}
			if result.Correct {
				s.printf("Correct! It was %s. You win!\n", session.Subject)
			} else {
				s.printf("No - the subject was: %s. Better luck next time.\n", session.Subject)
			}
			return
		default:
			answer, err := s.engine.AskQuestion(context.Background(), session, line)
			if errors.Is(err, game.ErrSessionTerminal) {
				s.printf("No questions left - time for a final guess: guess <subject>\n")
				continue
			}
			if err != nil {
				s.renderError(err)
				continue
			}
			s.printf("The oracle says: %s\n", answer)
		}
	}
}

func (s *shell) printTwentyQuestionsOutcome(session *game.Session) {
	switch session.Status {
	case game.StatusWon:
		s.printf("You won this one - the subject was %s.\n", session.Subject)
	case game.StatusLost:
		s.printf("This game was lost. The subject was %s.\n", session.Subject)
	case game.StatusAbandoned:
		s.printf("This game was abandoned. The subject was %s.\n", session.Subject)
	}
}

func (s *shell) newAdventure() {
	character, ok := s.createCharacter()
	if !ok {
		return
	}

	s.printf("\nThe Dungeon Master is creating your adventure...\n")
	adv, err := s.dm.StartCampaign(context.Background(), character)
	if err != nil {
		s.renderError(err)
		return
	}
	s.printf("\nWelcome to %s\n\n%s\n", adv.Campaign, adv.LastNarration())
	s.playAdventure(adv)
}

func (s *shell) playAdventure(adv *game.Adventure) {
	for {
		s.printf("\nLocation: %s | Quest: %s\n", adv.CurrentLocation, adv.CurrentQuest)
		s.printf("%s: %d/%d HP, %d AC\n", adv.Character.Name,
			adv.Character.HitPoints, adv.Character.MaxHitPoints, adv.Character.ArmorClass)
		s.printf("Describe an action, or: check <skill> | roll NdS | sheet | save | menu\n")

		line, ok := s.readLine("> ")
		if !ok {
			return
		}

		switch {
		case line == "":
			continue
		case line == "menu":
			return
		case line == "sheet":
			s.printCharacterSheet(adv.Character)
		case line == "save":
			if err := s.saves.SaveAdventure(adv); err != nil {
				s.renderError(err)
			} else {
				s.printf("Game saved.\n")
			}
		case strings.HasPrefix(line, "roll "):
			s.rollCommand(strings.TrimPrefix(line, "roll "))
		case strings.HasPrefix(line, "check "):
			skill := strings.TrimSpace(strings.TrimPrefix(line, "check "))
			check, err := s.dm.SkillCheck(context.Background(), adv, skill)
			if err != nil {
				s.renderError(err)
				continue
			}
			s.printf("\n%s check: d20 [%d] %+d", check.Skill, check.Roll.Sum, check.Modifier)
			if check.ProfBonus > 0 {
				s.printf(" %+d (proficient)", check.ProfBonus)
			}
			s.printf(" = %d\n\nDungeon Master:\n%s\n", check.Total, check.Narration)
		default:
			response, err := s.dm.Act(context.Background(), adv, line)
			if err != nil {
				s.renderError(err)
				continue
			}
			s.printf("\nDungeon Master:\n%s\n", response)
		}
	}
}

// rollCommand parses a dice spec like "2d6" or "d20" and rolls it.
func (s *shell) rollCommand(spec string) {
	count, sides, err := parseDiceSpec(spec)
	if err != nil {
		s.printf("Dice are written like 2d6 or d20.\n")
		return
	}
	roll, err := game.Roll(sides, count)
	if err != nil {
		s.renderError(err)
		return
	}
	s.printf("Rolled %dd%d %v = %d\n", roll.Count, roll.Sides, roll.Values, roll.Sum)
}

func (s *shell) continueGame() {
	slots, err := s.saves.List()
	if err != nil {
		s.renderError(err)
		return
	}
	if len(slots) == 0 {
		s.printf("No saved games found. Start a new one!\n")
		return
	}

	options := make([]string, len(slots))
	for i, slot := range slots {
		if slot.Kind == "" {
			options[i] = fmt.Sprintf("damaged save (%s)", truncate(slot.Slot, 8))
			continue
		}
		options[i] = fmt.Sprintf("%-10s saved %s (%s)", slot.Kind,
			slot.SavedAt.Local().Format("2006-01-02 15:04"), truncate(slot.Slot, 8))
	}
	idx, ok := s.choose("Saved games", options)
	if !ok {
		return
	}

	picked := slots[idx]
	switch picked.Kind {
	case "":
		s.renderError(store.ErrCorrupt)
	case store.KindTwentyQuestions:
		session, err := s.saves.LoadSession(picked.Slot)
		if err != nil {
			s.renderError(err)
			return
		}
		s.printf("Continuing: %s, %d question%s left.\n",
			session.Category, session.Remaining, plural(session.Remaining))
		s.playTwentyQuestions(session)
	case store.KindAdventure:
		adv, err := s.saves.LoadAdventure(picked.Slot)
		if err != nil {
			s.renderError(err)
			return
		}
		s.printf("Continuing your adventure in %s...\n", adv.Campaign)
		if last := adv.LastNarration(); last != "" {
			s.printf("\nPreviously:\n%s\n", last)
		}
		s.playAdventure(adv)
	}
}

// createCharacter walks through interactive character creation.
func (s *shell) createCharacter() (game.CharacterSheet, bool) {
	s.printf("\nCHARACTER CREATION\n")
	name, ok := s.readLine("What is your character's name? ")
	if !ok {
		return game.CharacterSheet{}, false
	}

	raceIdx, ok := s.choose("Choose your race", game.Races)
	if !ok {
		return game.CharacterSheet{}, false
	}
	classIdx, ok := s.choose("Choose your class", game.Classes)
	if !ok {
		return game.CharacterSheet{}, false
	}
	bgIdx, ok := s.choose("Choose your background", game.Backgrounds)
	if !ok {
		return game.CharacterSheet{}, false
	}
	class := game.Classes[classIdx]

	methodIdx, ok := s.choose("How would you like to determine ability scores", []string{
		"Roll 4d6 (drop lowest)", "Standard array", "Point buy",
	})
	if !ok {
		return game.CharacterSheet{}, false
	}
	var pool []int
	switch methodIdx {
	case 0:
		pool = game.RollAbilityScores()
		s.printf("Rolled: %v\n", pool)
	case 1:
		pool = game.StandardArrayScores()
	default:
		pool = game.PointBuyScores()
	}

	scores, ok := s.assignScores(pool)
	if !ok {
		return game.CharacterSheet{}, false
	}

	proficiencies, ok := s.chooseSkills(class)
	if !ok {
		return game.CharacterSheet{}, false
	}

	character, err := game.NewCharacter(name, game.Races[raceIdx], class, game.Backgrounds[bgIdx], scores, proficiencies)
	if err != nil {
		s.renderError(err)
		return game.CharacterSheet{}, false
	}

	s.printf("\nCharacter created!\n")
	s.printCharacterSheet(character)
	return character, true
}

// assignScores lets the player place each pooled score on an ability.
func (s *shell) assignScores(pool []int) (game.AbilityScores, bool) {
	abilities := []string{"Strength", "Dexterity", "Constitution", "Intelligence", "Wisdom", "Charisma"}
	assigned := make([]int, 0, len(abilities))

	for _, ability := range abilities {
		options := make([]string, len(pool))
		for i, score := range pool {
			options[i] = strconv.Itoa(score)
		}
		idx, ok := s.choose(fmt.Sprintf("Choose a score for %s", ability), options)
		if !ok {
			return game.AbilityScores{}, false
		}
		assigned = append(assigned, pool[idx])
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	return game.AbilityScores{
		Strength:     assigned[0],
		Dexterity:    assigned[1],
		Constitution: assigned[2],
		Intelligence: assigned[3],
		Wisdom:       assigned[4],
		Charisma:     assigned[5],
	}, true
}

// chooseSkills reads the class's allotment of skill proficiencies.
func (s *shell) chooseSkills(class string) ([]string, bool) {
	available := game.ClassSkills(class)
	limit := min(game.ClassSkillChoices(class), len(available))

	s.printf("\nYour class (%s) grants %d skill proficienc%s:\n", class, limit,
		map[bool]string{true: "y", false: "ies"}[limit == 1])
	for i, skill := range available {
		s.printf("  %2d) %s\n", i+1, skill)
	}

	for {
		line, ok := s.readLine(fmt.Sprintf("Pick %d (comma-separated numbers): ", limit))
		if !ok {
			return nil, false
		}
		picked := make([]string, 0, limit)
		valid := true
		for _, field := range strings.Split(line, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 || n > len(available) {
				valid = false
				break
			}
			picked = append(picked, available[n-1])
		}
		if !valid || len(picked) == 0 || len(picked) > limit {
			s.printf("Enter up to %d numbers between 1 and %d.\n", limit, len(available))
			continue
		}
		return picked, true
	}
}

func (s *shell) printCharacterSheet(c game.CharacterSheet) {
	s.printf("\nCHARACTER SHEET\n")
	s.printf("Name: %s\nRace: %s | Class: %s | Background: %s\n", c.Name, c.Race, c.Class, c.Background)
	s.printf("Level: %d | Gold: %d GP | XP: %d\n", c.Level, c.Gold, c.Experience)
	s.printf("Hit Points: %d/%d | Armor Class: %d\n", c.HitPoints, c.MaxHitPoints, c.ArmorClass)
	s.printf("STR %d | DEX %d | CON %d | INT %d | WIS %d | CHA %d\n",
		c.Abilities.Strength, c.Abilities.Dexterity, c.Abilities.Constitution,
		c.Abilities.Intelligence, c.Abilities.Wisdom, c.Abilities.Charisma)
	if len(c.Proficiencies) > 0 {
		s.printf("Proficiencies: %s\n", strings.Join(c.Proficiencies, ", "))
	}
	s.printf("Inventory:\n")
	for _, item := range c.Inventory {
		s.printf("  - %s\n", item)
	}
}

// renderError maps engine, store and oracle failures to friendly
// messages. Nothing here is fatal; the loop continues.
func (s *shell) renderError(err error) {
	switch {
	case errors.Is(err, game.ErrSessionTerminal):
		s.printf("This game has already ended. Start a new one from the menu.\n")
	case errors.Is(err, game.ErrEmptyInput):
		s.printf("Say something first.\n")
	case errors.Is(err, game.ErrRateLimited):
		s.printf("The oracle needs a breather. Wait a little before trying again.\n")
	case errors.Is(err, game.ErrUnavailable):
		s.printf("The oracle is unreachable right now. Nothing was lost - try again in a moment.\n")
	case errors.Is(err, game.ErrInvalidResponse):
		s.printf("The oracle's reply made no sense. Try rephrasing.\n")
	case errors.Is(err, store.ErrNotFound):
		s.printf("That save no longer exists. Start a new game instead.\n")
	case errors.Is(err, store.ErrCorrupt):
		s.printf("That save file is damaged and cannot be loaded. Start a new game instead.\n")
	case errors.Is(err, game.ErrInvalidDie), errors.Is(err, game.ErrInvalidCount):
		s.printf("Playable dice are d4, d6, d8, d10, d12, d20 and d100.\n")
	case errors.Is(err, game.ErrUnknownSkill):
		s.printf("Skills are: %s\n", strings.Join(game.Skills, ", "))
	default:
		s.printf("Something went wrong: %v\n", err)
	}
}

// parseDiceSpec parses "2d6" or "d20" into count and sides.
func parseDiceSpec(spec string) (count, sides int, err error) {
	left, right, found := strings.Cut(strings.ToLower(strings.TrimSpace(spec)), "d")
	if !found {
		return 0, 0, fmt.Errorf("malformed dice spec %q", spec)
	}
	count = 1
	if left != "" {
		if count, err = strconv.Atoi(left); err != nil {
			return 0, 0, fmt.Errorf("malformed dice spec %q", spec)
		}
	}
	if sides, err = strconv.Atoi(right); err != nil {
		return 0, 0, fmt.Errorf("malformed dice spec %q", spec)
	}
	return count, sides, nil
}
