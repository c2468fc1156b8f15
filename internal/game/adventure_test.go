package game

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func testDM(oracle *fakeOracle) (*DM, *fakeSaver) {
	saver := &fakeSaver{}
	return NewDM(oracle, saver, zerolog.Nop()), saver
}

func testCharacter(t *testing.T) CharacterSheet {
	t.Helper()
	c, err := NewCharacter("Brum", "Dwarf", "Fighter", "Soldier", testScores(), []string{"Athletics", "Perception"})
	if err != nil {
		t.Fatalf("NewCharacter failed: %v", err)
	}
	return c
}

func TestParseCampaignHook(t *testing.T) {
	hook := "Welcome, traveler!\n" +
		"Campaign: **The Sunken Crown**\n" +
		"Location: Saltmarsh\n" +
		"Quest: Recover the crown from the drowned keep\n" +
		"The marsh folk are wary of strangers."
	campaign, location, quest := parseCampaignHook(hook)
	if campaign != "The Sunken Crown" {
		t.Errorf("Campaign = %q", campaign)
	}
	if location != "Saltmarsh" {
		t.Errorf("Location = %q", location)
	}
	if quest != "Recover the crown from the drowned keep" {
		t.Errorf("Quest = %q", quest)
	}
}

func TestParseCampaignHookFallbacks(t *testing.T) {
	campaign, location, quest := parseCampaignHook("A wall of unlabeled prose with no structure at all.")
	if campaign != "Mystical Adventure" {
		t.Errorf("Campaign fallback = %q", campaign)
	}
	if location != "Starting Town" {
		t.Errorf("Location fallback = %q", location)
	}
	if quest != "Find adventure" {
		t.Errorf("Quest fallback = %q", quest)
	}
}

func TestStartCampaign(t *testing.T) {
	oracle := &fakeOracle{narrations: []string{
		"Campaign: Emberfall\nLocation: Cinderholm\nQuest: Douse the ever-burning mine",
		"You arrive at Cinderholm as ash drifts down like snow. What do you do?",
	}}
	dm, saver := testDM(oracle)

	adv, err := dm.StartCampaign(context.Background(), testCharacter(t))
	if err != nil {
		t.Fatalf("StartCampaign failed: %v", err)
	}
	if adv.Campaign != "Emberfall" || adv.CurrentLocation != "Cinderholm" {
		t.Errorf("Hook not parsed: %q / %q", adv.Campaign, adv.CurrentLocation)
	}
	if adv.CurrentQuest != "Douse the ever-burning mine" {
		t.Errorf("Quest = %q", adv.CurrentQuest)
	}
	// Hook exchange plus opening scene exchange.
	if len(adv.History) != 4 {
		t.Fatalf("Expected 4 history entries, got %d", len(adv.History))
	}
	if adv.LastNarration() == "" {
		t.Error("Expected an opening scene narration")
	}
	if adv.ID == "" {
		t.Error("Expected an adventure ID")
	}
	if saver.adventures != 1 {
		t.Errorf("Expected 1 auto-save, got %d", saver.adventures)
	}
}

func TestActRecordsHistory(t *testing.T) {
	oracle := &fakeOracle{narrations: []string{"The innkeeper eyes you warily."}}
	dm, saver := testDM(oracle)
	adv := &Adventure{ID: "a1", Character: testCharacter(t)}

	response, err := dm.Act(context.Background(), adv, "I approach the innkeeper.")
	if err != nil {
		t.Fatalf("Act failed: %v", err)
	}
	if response != "The innkeeper eyes you warily." {
		t.Errorf("Unexpected response %q", response)
	}
	if len(adv.History) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(adv.History))
	}
	if adv.History[0].Role != RolePlayer || adv.History[1].Role != RoleDM {
		t.Errorf("Unexpected history roles: %+v", adv.History)
	}
	if saver.adventures != 1 {
		t.Errorf("Expected 1 auto-save, got %d", saver.adventures)
	}
}

func TestActEmptyInput(t *testing.T) {
	dm, saver := testDM(&fakeOracle{})
	adv := &Adventure{ID: "a1", Character: testCharacter(t)}

	if _, err := dm.Act(context.Background(), adv, "  "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
	if len(adv.History) != 0 || saver.adventures != 0 {
		t.Error("Empty action must not mutate the adventure")
	}
}

func TestActOracleFailure(t *testing.T) {
	dm, saver := testDM(&fakeOracle{err: ErrUnavailable})
	adv := &Adventure{ID: "a1", Character: testCharacter(t)}

	if _, err := dm.Act(context.Background(), adv, "I open the door."); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if len(adv.History) != 0 || saver.adventures != 0 {
		t.Error("Failed action must not mutate the adventure")
	}
}

func TestSkillCheck(t *testing.T) {
	dm, saver := testDM(&fakeOracle{narrations: []string{"You vault the fence with ease."}})
	adv := &Adventure{ID: "a1", Character: testCharacter(t)}

	// Case-insensitive skill lookup; Athletics is a proficiency.
	check, err := dm.SkillCheck(context.Background(), adv, "athletics")
	if err != nil {
		t.Fatalf("SkillCheck failed: %v", err)
	}
	if check.Skill != "Athletics" {
		t.Errorf("Expected canonical skill name, got %q", check.Skill)
	}
	if check.Roll.Sum < 1 || check.Roll.Sum > 20 {
		t.Errorf("d20 roll out of range: %d", check.Roll.Sum)
	}
	// STR 15 gives +2; level 1 proficiency gives +2.
	if check.Modifier != 2 || check.ProfBonus != 2 {
		t.Errorf("Expected +2/+2, got %+d/%+d", check.Modifier, check.ProfBonus)
	}
	if check.Total != check.Roll.Sum+check.Modifier+check.ProfBonus {
		t.Errorf("Total %d does not add up", check.Total)
	}
	if check.Narration != "You vault the fence with ease." {
		t.Errorf("Unexpected narration %q", check.Narration)
	}
	if len(adv.History) != 2 || saver.adventures != 1 {
		t.Error("Skill check must record one exchange and auto-save once")
	}
}

func TestSkillCheckNoProficiency(t *testing.T) {
	dm, _ := testDM(&fakeOracle{})
	adv := &Adventure{ID: "a1", Character: testCharacter(t)}

	check, err := dm.SkillCheck(context.Background(), adv, "Stealth")
	if err != nil {
		t.Fatalf("SkillCheck failed: %v", err)
	}
	if check.ProfBonus != 0 {
		t.Errorf("Expected no proficiency bonus, got %d", check.ProfBonus)
	}
	if check.Modifier != 2 {
		t.Errorf("Expected +2 from DEX 14, got %+d", check.Modifier)
	}
}

func TestSkillCheckUnknownSkill(t *testing.T) {
	dm, saver := testDM(&fakeOracle{})
	adv := &Adventure{ID: "a1", Character: testCharacter(t)}

	if _, err := dm.SkillCheck(context.Background(), adv, "Lockpicking"); !errors.Is(err, ErrUnknownSkill) {
		t.Errorf("Expected ErrUnknownSkill, got %v", err)
	}
	if len(adv.History) != 0 || saver.adventures != 0 {
		t.Error("Unknown skill must not mutate the adventure")
	}
}

func TestSkillCheckOracleFailure(t *testing.T) {
	dm, saver := testDM(&fakeOracle{err: ErrUnavailable})
	adv := &Adventure{ID: "a1", Character: testCharacter(t)}

	if _, err := dm.SkillCheck(context.Background(), adv, "Perception"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Expected ErrUnavailable, got %v", err)
	}
	if len(adv.History) != 0 || saver.adventures != 0 {
		t.Error("Failed check must not mutate the adventure")
	}
}

func TestLastNarration(t *testing.T) {
	adv := &Adventure{}
	if adv.LastNarration() != "" {
		t.Error("Empty history should yield empty narration")
	}
	adv.History = []Message{
		{Role: RolePlayer, Text: "hello"},
		{Role: RoleDM, Text: "first"},
		{Role: RolePlayer, Text: "again"},
		{Role: RoleDM, Text: "second"},
		{Role: RolePlayer, Text: "trailing"},
	}
	if got := adv.LastNarration(); got != "second" {
		t.Errorf("LastNarration = %q", got)
	}
}
