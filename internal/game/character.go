package game

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Character creation tables. Fixed sets; creation rejects anything else.
var (
	Races = []string{
		"Human", "Elf", "Dwarf", "Halfling", "Gnome",
		"Half-Elf", "Half-Orc", "Tiefling", "Dragonborn",
	}

	Classes = []string{
		"Fighter", "Wizard", "Cleric", "Rogue", "Ranger",
		"Paladin", "Barbarian", "Bard", "Druid", "Monk",
		"Sorcerer", "Warlock", "Artificer",
	}

	Backgrounds = []string{
		"Acolyte", "Charlatan", "Criminal", "Entertainer", "Folk Hero",
		"Guild Artisan", "Hermit", "Noble", "Outlander", "Sage",
		"Sailor", "Soldier", "Urchin",
	}

	Skills = []string{
		"Acrobatics", "Animal Handling", "Arcana", "Athletics", "Deception",
		"History", "Insight", "Intimidation", "Investigation", "Medicine",
		"Nature", "Perception", "Performance", "Persuasion", "Religion",
		"Sleight of Hand", "Stealth", "Survival",
	}
)

var (
	ErrUnknownRace       = errors.New("unknown race")
	ErrUnknownClass      = errors.New("unknown class")
	ErrUnknownBackground = errors.New("unknown background")
	ErrUnknownSkill      = errors.New("unknown skill")
	ErrInvalidAbility    = errors.New("ability scores must be at least 1")
)

// AbilityModifier converts an ability score to its modifier.
func AbilityModifier(score int) int {
	return (score - 10) / 2
}

// ProficiencyBonus returns the bonus for a character level.
func ProficiencyBonus(level int) int {
	switch {
	case level <= 4:
		return 2
	case level <= 8:
		return 3
	case level <= 12:
		return 4
	case level <= 16:
		return 5
	default:
		return 6
	}
}

// skillAbility maps each skill to its governing ability score.
func skillAbility(a AbilityScores, skill string) int {
	switch skill {
	case "Athletics":
		return a.Strength
	case "Acrobatics", "Sleight of Hand", "Stealth":
		return a.Dexterity
	case "Arcana", "History", "Investigation", "Nature", "Religion":
		return a.Intelligence
	case "Animal Handling", "Insight", "Medicine", "Perception", "Survival":
		return a.Wisdom
	case "Deception", "Intimidation", "Performance", "Persuasion":
		return a.Charisma
	default:
		return 10
	}
}

// SkillModifier returns the ability modifier a character applies to a skill.
func (c *CharacterSheet) SkillModifier(skill string) int {
	return AbilityModifier(skillAbility(c.Abilities, skill))
}

// Proficient reports whether the character is proficient in a skill.
func (c *CharacterSheet) Proficient(skill string) bool {
	return lo.Contains(c.Proficiencies, skill)
}

// ClassSkillChoices returns how many skill proficiencies a class picks.
func ClassSkillChoices(class string) int {
	switch class {
	case "Rogue":
		return 4
	case "Bard", "Ranger":
		return 3
	default:
		return 2
	}
}

// ClassSkills returns the skills a class may choose proficiencies from.
func ClassSkills(class string) []string {
	switch class {
	case "Barbarian":
		return []string{"Animal Handling", "Athletics", "Intimidation", "Nature", "Perception", "Survival"}
	case "Bard":
		return Skills
	case "Cleric":
		return []string{"History", "Insight", "Medicine", "Persuasion", "Religion"}
	case "Druid":
		return []string{"Arcana", "Animal Handling", "Insight", "Medicine", "Nature", "Perception", "Religion", "Survival"}
	case "Fighter":
		return []string{"Acrobatics", "Animal Handling", "Athletics", "History", "Insight", "Intimidation", "Perception", "Survival"}
	case "Monk":
		return []string{"Acrobatics", "Athletics", "History", "Insight", "Religion", "Stealth"}
	case "Paladin":
		return []string{"Athletics", "Insight", "Intimidation", "Medicine", "Persuasion", "Religion"}
	case "Ranger":
		return []string{"Animal Handling", "Athletics", "Insight", "Investigation", "Nature", "Perception", "Stealth", "Survival"}
	case "Rogue":
		return []string{"Acrobatics", "Athletics", "Deception", "Insight", "Intimidation", "Investigation", "Perception", "Performance", "Persuasion", "Sleight of Hand", "Stealth"}
	case "Sorcerer":
		return []string{"Arcana", "Deception", "Insight", "Intimidation", "Persuasion", "Religion"}
	case "Warlock":
		return []string{"Arcana", "Deception", "History", "Intimidation", "Investigation", "Nature", "Religion"}
	case "Wizard":
		return []string{"Arcana", "History", "Insight", "Investigation", "Medicine", "Religion"}
	default:
		return []string{"Arcana", "History", "Investigation", "Nature", "Religion"}
	}
}

// classHitDie returns the base hit points granted by a class at level 1.
func classHitDie(class string) int {
	switch class {
	case "Barbarian":
		return 12
	case "Fighter", "Paladin", "Ranger":
		return 10
	case "Sorcerer", "Wizard":
		return 6
	default:
		return 8
	}
}

// NewCharacter builds a level 1 character, validating table membership and
// deriving hit points, armor class, starting equipment and gold.
func NewCharacter(name, race, class, background string, scores AbilityScores, proficiencies []string) (CharacterSheet, error) {
	if name == "" {
		name = "Adventurer"
	}
	if !lo.Contains(Races, race) {
		return CharacterSheet{}, fmt.Errorf("%w: %s", ErrUnknownRace, race)
	}
	if !lo.Contains(Classes, class) {
		return CharacterSheet{}, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	if !lo.Contains(Backgrounds, background) {
		return CharacterSheet{}, fmt.Errorf("%w: %s", ErrUnknownBackground, background)
	}
	for _, score := range []int{scores.Strength, scores.Dexterity, scores.Constitution, scores.Intelligence, scores.Wisdom, scores.Charisma} {
		if score < 1 {
			return CharacterSheet{}, ErrInvalidAbility
		}
	}

	allowed := ClassSkills(class)
	proficiencies = lo.Uniq(proficiencies)
	for _, skill := range proficiencies {
		if !lo.Contains(allowed, skill) {
			return CharacterSheet{}, fmt.Errorf("%w: %s", ErrUnknownSkill, skill)
		}
	}
	if limit := ClassSkillChoices(class); len(proficiencies) > limit {
		proficiencies = proficiencies[:limit]
	}

	conMod := AbilityModifier(scores.Constitution)
	dexMod := AbilityModifier(scores.Dexterity)
	hp := max(classHitDie(class)+conMod, 1)

	c := CharacterSheet{
		Name:          name,
		Race:          race,
		Class:         class,
		Background:    background,
		Level:         1,
		Abilities:     scores,
		HitPoints:     hp,
		MaxHitPoints:  hp,
		ArmorClass:    max(10+dexMod, 1),
		Proficiencies: proficiencies,
	}

	switch class {
	case "Fighter":
		c.Inventory = []string{"Longsword", "Shield", "Chain mail", "Dungeoneer's pack"}
		c.ArmorClass = 16 // chain mail
		c.Gold = 10
	case "Wizard":
		c.Inventory = []string{"Spellbook", "Staff", "Component pouch", "Scholar's pack"}
		c.Gold = 25
	case "Cleric":
		c.Inventory = []string{"Mace", "Scale mail", "Shield", "Holy symbol"}
		c.ArmorClass = 14 + min(dexMod, 2) // scale mail
		c.Gold = 15
	case "Rogue":
		c.Inventory = []string{"Shortsword", "Shortbow with 20 arrows", "Leather armor", "Thieves' tools"}
		c.ArmorClass = 11 + dexMod // leather armor
		c.Gold = 30
	default:
		c.Inventory = []string{"Adventurer's pack", "Simple weapon"}
		c.Gold = 20
	}

	c.Inventory = append(c.Inventory,
		"Backpack", "Bedroll", "Rations (5 days)", "Waterskin", "Torch (3)")

	return c, nil
}
