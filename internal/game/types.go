package game

import "time"

// Category of a Twenty Questions subject.
type Category string

const (
	CategoryPerson Category = "person"
	CategoryPlace  Category = "place"
	CategoryThing  Category = "thing"
)

// Categories lists every playable Twenty Questions category.
var Categories = []Category{CategoryPerson, CategoryPlace, CategoryThing}

// Answer is the oracle's verdict on a yes/no question.
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

// Status tracks the lifecycle of a Twenty Questions session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
	StatusAbandoned  Status = "abandoned"
)

// QA is one asked question together with the oracle's answer.
type QA struct {
	Question string `json:"question"`
	Answer   Answer `json:"answer"`
}

// Session holds the state of a single Twenty Questions game.
type Session struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Subject   string    `json:"subject"`
	Questions []QA      `json:"questions"`
	Remaining int       `json:"remaining"`
	Status    Status    `json:"status"`
	StartedAt time.Time `json:"startedAt"`
}

// Terminal reports whether the session has ended and accepts no more play.
func (s *Session) Terminal() bool {
	return s.Status != StatusInProgress
}

// GuessResult is the outcome of a final guess.
type GuessResult struct {
	Guess   string `json:"guess"`
	Correct bool   `json:"correct"`
}

// Narrative roles for adventure history entries.
const (
	RolePlayer = "player"
	RoleDM     = "dm"
)

// Message is one entry in the adventure narrative log.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Adventure holds the state of a single adventure campaign.
type Adventure struct {
	ID              string         `json:"id"`
	Character       CharacterSheet `json:"character"`
	Campaign        string         `json:"campaign"`
	CurrentLocation string         `json:"currentLocation"`
	CurrentQuest    string         `json:"currentQuest"`
	History         []Message      `json:"history"`
	DateStarted     time.Time      `json:"dateStarted"`
}

// LastNarration returns the most recent DM entry, or "" when there is none.
func (a *Adventure) LastNarration() string {
	for i := len(a.History) - 1; i >= 0; i-- {
		if a.History[i].Role == RoleDM {
			return a.History[i].Text
		}
	}
	return ""
}

// AbilityScores are the six core attributes of a character.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// CharacterSheet is a playable character with derived combat stats.
type CharacterSheet struct {
	Name          string        `json:"name"`
	Race          string        `json:"race"`
	Class         string        `json:"class"`
	Background    string        `json:"background"`
	Level         int           `json:"level"`
	Abilities     AbilityScores `json:"abilities"`
	HitPoints     int           `json:"hitPoints"`
	MaxHitPoints  int           `json:"maxHitPoints"`
	ArmorClass    int           `json:"armorClass"`
	Proficiencies []string      `json:"proficiencies"`
	Inventory     []string      `json:"inventory"`
	Gold          int           `json:"gold"`
	Experience    int           `json:"experience"`
}

// DiceRoll is the result of rolling one kind of die a number of times.
type DiceRoll struct {
	Sides  int   `json:"sides"`
	Count  int   `json:"count"`
	Values []int `json:"values"`
	Sum    int   `json:"sum"`
}

// CheckResult is a resolved skill check.
type CheckResult struct {
	Skill     string   `json:"skill"`
	Roll      DiceRoll `json:"roll"`
	Modifier  int      `json:"modifier"`
	ProfBonus int      `json:"profBonus"`
	Total     int      `json:"total"`
	Narration string   `json:"narration"`
}
