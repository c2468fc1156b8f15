package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Fallbacks used when the campaign hook cannot be parsed into its parts.
const (
	defaultCampaign = "Mystical Adventure"
	defaultLocation = "Starting Town"
	defaultQuest    = "Find adventure"
)

// DM drives adventure campaigns against the oracle. Like the Twenty
// Questions engine, it auto-saves after every mutation and leaves state
// untouched when the oracle fails.
type DM struct {
	oracle Oracle
	store  Saver
	log    zerolog.Logger
}

// NewDM builds an adventure engine.
func NewDM(oracle Oracle, store Saver, log zerolog.Logger) *DM {
	return &DM{oracle: oracle, store: store, log: log}
}

// StartCampaign asks the oracle for a campaign hook tailored to the
// character, parses out the campaign name, starting location and quest,
// then requests an opening scene.
func (d *DM) StartCampaign(ctx context.Context, character CharacterSheet) (*Adventure, error) {
	adv := &Adventure{
		ID:          uuid.NewString(),
		Character:   character,
		History:     []Message{},
		DateStarted: time.Now().UTC(),
	}

	hookPrompt := fmt.Sprintf(
		"Create an exciting campaign hook and starting location for a %s %s named %s. "+
			"The character is level %d with the following stats: STR %d, DEX %d, CON %d, INT %d, WIS %d, CHA %d. Background: %s.\n\n"+
			"Provide a brief introduction to the campaign setting, including:\n"+
			"1. The name of the campaign/adventure\n"+
			"2. The starting location (town/city/village name)\n"+
			"3. The initial quest or hook to draw the player in\n"+
			"4. A brief description of the area and its people\n\n"+
			"Label the campaign, location and quest lines with \"Campaign:\", \"Location:\" and \"Quest:\" so they can be picked out, "+
			"but focus on immersive, evocative descriptions rather than mechanical details.",
		character.Race, character.Class, character.Name, character.Level,
		character.Abilities.Strength, character.Abilities.Dexterity, character.Abilities.Constitution,
		character.Abilities.Intelligence, character.Abilities.Wisdom, character.Abilities.Charisma,
		character.Background)

	hook, err := d.oracle.Narrate(ctx, nil, hookPrompt)
	if err != nil {
		return nil, err
	}
	adv.Campaign, adv.CurrentLocation, adv.CurrentQuest = parseCampaignHook(hook)
	adv.History = append(adv.History,
		Message{Role: RolePlayer, Text: hookPrompt},
		Message{Role: RoleDM, Text: hook})

	scenePrompt := "Now, describe the opening scene. The player's character has just arrived at the starting location. " +
		"Provide rich sensory details and introduce an NPC or situation that connects to the quest hook. " +
		"End with a question or prompt for the player to respond to."
	scene, err := d.oracle.Narrate(ctx, adv.History, scenePrompt)
	if err != nil {
		return nil, err
	}
	adv.History = append(adv.History,
		Message{Role: RolePlayer, Text: scenePrompt},
		Message{Role: RoleDM, Text: scene})

	d.log.Info().Str("adventure", adv.ID).Str("campaign", adv.Campaign).Msg("campaign started")
	d.autosave(adv)
	return adv, nil
}

// Act narrates a free-text player action and records both sides of the
// exchange.
func (d *DM) Act(ctx context.Context, adv *Adventure, action string) (string, error) {
	action = strings.TrimSpace(action)
	if action == "" {
		return "", ErrEmptyInput
	}

	prompt := fmt.Sprintf(
		"The player (%s the %s %s) takes the following action:\n\n%s\n\n"+
			"Respond as the Dungeon Master, describing the outcome of this action. "+
			"Use rich, evocative language to create an immersive experience. "+
			"If dice rolls would be needed, describe the check but don't roll dice yourself. "+
			"End with either a question or a prompt that gives the player clear options for what they might do next. "+
			"If the player attempts something impossible, gently steer them toward better options.",
		adv.Character.Name, adv.Character.Race, adv.Character.Class, action)

	response, err := d.oracle.Narrate(ctx, adv.History, prompt)
	if err != nil {
		return "", err
	}

	adv.History = append(adv.History,
		Message{Role: RolePlayer, Text: prompt},
		Message{Role: RoleDM, Text: response})
	d.autosave(adv)
	return response, nil
}

// SkillCheck rolls a d20 for the named skill, applies the ability modifier
// and proficiency bonus, and has the oracle interpret the total in the
// current scene.
func (d *DM) SkillCheck(ctx context.Context, adv *Adventure, skill string) (CheckResult, error) {
	idx := -1
	for i, s := range Skills {
		if strings.EqualFold(s, skill) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return CheckResult{}, fmt.Errorf("%w: %s", ErrUnknownSkill, skill)
	}
	skill = Skills[idx]

	roll, err := Roll(20, 1)
	if err != nil {
		return CheckResult{}, err
	}

	check := CheckResult{
		Skill:    skill,
		Roll:     roll,
		Modifier: adv.Character.SkillModifier(skill),
	}
	if adv.Character.Proficient(skill) {
		check.ProfBonus = ProficiencyBonus(adv.Character.Level)
	}
	check.Total = roll.Sum + check.Modifier + check.ProfBonus

	proficiency := "No"
	if check.ProfBonus > 0 {
		proficiency = fmt.Sprintf("Yes (+%d)", check.ProfBonus)
	}
	prompt := fmt.Sprintf(
		"The player (%s the %s %s) rolls a %s check.\n"+
			"Dice roll: %d\nAbility modifier: %d\nProficiency: %s\nTotal: %d\n\n"+
			"Interpret this skill check result in the current context. "+
			"Describe the outcome of their action based on this result. "+
			"For reference, typical difficulty classes are:\n"+
			"- Easy: 10\n- Medium: 15\n- Hard: 20\n- Very Hard: 25\n- Nearly Impossible: 30\n\n"+
			"Continue the scene after describing the result of this check.",
		adv.Character.Name, adv.Character.Race, adv.Character.Class,
		skill, roll.Sum, check.Modifier, proficiency, check.Total)

	narration, err := d.oracle.Narrate(ctx, adv.History, prompt)
	if err != nil {
		return CheckResult{}, err
	}
	check.Narration = narration

	adv.History = append(adv.History,
		Message{Role: RolePlayer, Text: prompt},
		Message{Role: RoleDM, Text: narration})
	d.autosave(adv)
	return check, nil
}

// autosave persists the adventure; failures are reported, not fatal.
func (d *DM) autosave(adv *Adventure) {
	if err := d.store.SaveAdventure(adv); err != nil {
		d.log.Warn().Err(err).Str("adventure", adv.ID).Msg("auto-save failed")
	}
}

// parseCampaignHook pulls the labeled campaign, location and quest lines
// out of a hook response, falling back to defaults for anything missing.
func parseCampaignHook(hook string) (campaign, location, quest string) {
	for _, line := range strings.Split(hook, "\n") {
		lower := strings.ToLower(line)
		if campaign == "" && (strings.Contains(lower, "campaign") || strings.Contains(lower, "adventure")) {
			campaign = labelValue(line)
		}
		if location == "" && strings.Contains(lower, "location") {
			location = labelValue(line)
		}
		if quest == "" && (strings.Contains(lower, "quest") || strings.Contains(lower, "hook")) {
			quest = labelValue(line)
		}
	}
	if campaign == "" {
		campaign = defaultCampaign
	}
	if location == "" {
		location = defaultLocation
	}
	if quest == "" {
		quest = defaultQuest
	}
	return campaign, location, quest
}

// labelValue returns the text after the first colon, trimmed.
func labelValue(line string) string {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.Trim(strings.TrimSpace(value), "*_ ")
}
