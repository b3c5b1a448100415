// Package casefile loads the suspects of the case and builds their persona prompts.
package casefile

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"ai_detective/src/logger"
	"ai_detective/src/model"

	"github.com/bytedance/sonic"
)

const (
	DatabaseFile    = "character_database.json"
	CaseSummaryFile = "case_summary.txt"
	// MurdererID is the suspect whose accusation wins the game
	MurdererID   = 2
	fallbackMood = "other"
	fallbackJPG  = "other.jpg"
)

var ErrUnknownSuspect = errors.New("unknown suspect")

//go:embed data/character_database.json data/case_summary.txt
var embedded embed.FS

// Database holds the case rules and every suspect, keyed by id
type Database struct {
	rules      model.CoreRules
	characters map[int]model.Character
}

// Default returns the database compiled into the binary
func Default() (*Database, error) {
	data, err := embedded.ReadFile("data/" + DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded character database: %w", err)
	}
	return Parse(data)
}

// Load reads a character database from disk, or the embedded one when path is empty
func Load(path string) (*Database, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("character database not found at %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes character database JSON
func Parse(data []byte) (*Database, error) {
	var raw model.CharacterDatabase
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON in character database: %w", err)
	}

	db := &Database{
		rules:      raw.CoreRules,
		characters: make(map[int]model.Character, len(raw.Characters)),
	}
	for key, char := range raw.Characters {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("character key %q is not a number: %w", key, err)
		}
		db.characters[id] = char
	}

	logger.Debug().Int("characters", len(db.characters)).Msg("Loaded character database")
	return db, nil
}

// CaseSummary returns the embedded case file text
func CaseSummary() string {
	data, err := embedded.ReadFile("data/" + CaseSummaryFile)
	if err != nil {
		return ""
	}
	return string(data)
}

// RawDatabase returns the embedded database bytes for extraction into a workspace
func RawDatabase() ([]byte, error) {
	return embedded.ReadFile("data/" + DatabaseFile)
}

// IDs returns suspect ids in ascending order
func (d *Database) IDs() []int {
	ids := make([]int, 0, len(d.characters))
	for id := range d.characters {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (d *Database) character(id int) (model.Character, error) {
	char, ok := d.characters[id]
	if !ok {
		return model.Character{}, fmt.Errorf("%w: %d", ErrUnknownSuspect, id)
	}
	return char, nil
}

// Character returns the raw entry for a suspect
func (d *Database) Character(id int) (model.Character, error) {
	return d.character(id)
}

// SystemPrompt builds the full persona prompt for a suspect
func (d *Database) SystemPrompt(id int) (string, error) {
	char, err := d.character(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line("SYSTEM / AI ROLE:")
	line(roleInstructions)

	line("\n[GAME RULES]")
	line(d.rules.NonBreakableRuleset)
	line("\n" + d.rules.CoreNarrative)

	if ic := d.rules.InterrogationContext; ic != nil {
		detective := ic.DetectiveName
		if detective == "" {
			detective = "the detective"
		}
		location := ic.Location
		if location == "" {
			location = "an interrogation room"
		}
		line("\n[INTERROGATION]")
		line("Detective: " + detective)
		line("Location: " + location)
		line(fmt.Sprintf("You are sitting across from %s and being interrogated.", detective))
		line("\n[OTHER SUSPECTS]")
		line("These six people are all suspects: " + ic.SuspectsList)
	}

	line("\n[FORBIDDEN BEHAVIOURS]")
	for _, behavior := range d.rules.ForbiddenBehaviors {
		line("- " + behavior)
	}
	line("\n[ALLOWED BEHAVIOURS]")
	for _, behavior := range d.rules.AllowedBehaviors {
		line("- " + behavior)
	}

	line(fmt.Sprintf("\n[YOUR CHARACTER: %s (%s)]", char.Name, char.Role))
	sections := []struct{ title, body string }{
		{"CORE IDENTITY", char.IdentityCore},
		{"PSYCHOLOGICAL SHADOW", char.PsychologicalShadow},
		{"INNER CONFLICT", char.InnerConflict},
		{"POINT OF VIEW", char.IdentityLens},
		{"CORE PHILOSOPHY", char.CorePhilosophy},
		{"DIALOGUE STYLE", char.DialogueStyle},
	}
	for _, s := range sections {
		line("\n[" + s.title + "]")
		line(s.body)
	}

	line(fmt.Sprintf("\n[FORBIDDEN LINES FOR %s]:", char.Name))
	for _, l := range char.ForbiddenLines {
		line("- " + l)
	}

	modes := char.InterviewModes
	line(fmt.Sprintf("\n[ALLOWED MOODS IN INTERROGATION - ONLY THESE %d]:", len(modes)))
	for i, mode := range modes {
		line(fmt.Sprintf("%d. %s", i+1, mode))
	}

	if len(char.Relationships) > 0 {
		line("\n[RELATIONSHIPS]:")
		for _, r := range char.Relationships {
			line(fmt.Sprintf("• %s: %s", r.Person, r.Relation))
		}
	}
	if len(char.SubNarratives) > 0 {
		line("\n[BACKGROUND]:")
		for _, n := range char.SubNarratives {
			line("• " + n)
		}
	}
	if char.SecretLore != "" {
		line("\n[HIDDEN SECRET - REVEAL ONLY WHEN EMOTIONALLY BROKEN]")
		line(char.SecretLore)
	}

	example := "default"
	if len(modes) > 0 {
		example = modes[0]
	}
	tags := make([]string, len(modes))
	for i, mode := range modes {
		tags[i] = "[" + mode + "]"
	}
	line("\n[MANDATORY OUTPUT FORMAT]")
	line("CRITICAL: End EVERY response with ONE emotion tag in brackets.")
	line("Valid emotions: " + strings.Join(tags, ", "))
	line(fmt.Sprintf(`Example: "I... I do not know what to say. [%s]"`, example))
	line("Do NOT use any other emotion tags. Do NOT copy formatting from this prompt.")

	line("\n" + d.rules.FinalPurpose)
	fmt.Fprintf(&b, "\n[SIGNATURE LINE]: \"%s\"", char.SignatureLine)

	return b.String(), nil
}

// EmotionMapping returns mood to portrait filename, including the "default" key
func (d *Database) EmotionMapping(id int) (map[string]string, error) {
	char, err := d.character(id)
	if err != nil {
		return nil, err
	}
	if char.EmotionMapping == nil {
		return map[string]string{}, nil
	}
	return char.EmotionMapping, nil
}

// InterviewModes returns the moods a suspect may tag a reply with
func (d *Database) InterviewModes(id int) ([]string, error) {
	char, err := d.character(id)
	if err != nil {
		return nil, err
	}
	return char.InterviewModes, nil
}

// DefaultImage is the portrait shown before a suspect has replied
func (d *Database) DefaultImage(id int) string {
	mapping, err := d.EmotionMapping(id)
	if err != nil {
		return fallbackJPG
	}
	if img, ok := mapping["default"]; ok {
		return img
	}
	return fallbackJPG
}

// MapEmotionToImage maps a reply's tag to a portrait. The bool is false when
// the tag is not one of the suspect's moods and the default was used.
func (d *Database) MapEmotionToImage(id int, tag string) (string, bool) {
	tag = strings.TrimSpace(tag)

	mapping, err := d.EmotionMapping(id)
	if err == nil {
		if img, ok := mapping[tag]; ok {
			return img, true
		}
	}

	img := d.DefaultImage(id)
	logger.Warn().
		Str("emotion", tag).
		Int("suspect", id).
		Str("default", img).
		Msg("Invalid emotion, using default")
	return img, false
}

func (d *Database) Name(id int) string {
	char, ok := d.characters[id]
	if !ok || char.Name == "" {
		return "Unknown"
	}
	return char.Name
}

// Folder is the asset folder holding a suspect's portraits
func (d *Database) Folder(id int) string {
	return d.characters[id].FolderName
}

// Role returns e.g. "the nun"
func (d *Database) Role(id int) string {
	return d.characters[id].Role
}

// DefaultEmotion is the mood each suspect starts an interrogation in
func DefaultEmotion(id int) string {
	switch id {
	case 1, 6:
		return "scared"
	case 3:
		return "happy"
	case 5:
		return "angry"
	default:
		return fallbackMood
	}
}

const roleInstructions = `You are an AI-driven NPC in a noir, psychological, interrogation-based narrative game.
You must NEVER reveal the real killer.
You must ALWAYS remain a valid suspect.
You DO NOT trust the detective.
You MAY lie, redirect, mislead or avoid questions completely.
The detective must EARN every piece of truth.
You speak only from YOUR character's perspective.

MEMORY LAYERS:
1) Surface Answer → safe, emotionless, misleading
2) Defensive Reaction → deny, mock, question the detective
3) Emotional Crack → a hint of vulnerability or pain
4) Fragment of Truth → small piece of real past, not full confession

Behavior must evolve ACROSS MULTIPLE INTERROGATIONS.
Unexpected mood shifts are allowed. (anger → calm → silence → fear)
Never admit innocence or guilt directly.`
