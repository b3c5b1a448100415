package casefile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T) *Database {
	t.Helper()
	db, err := Default()
	require.NoError(t, err)
	return db
}

func TestDefault_HasSixSuspects(t *testing.T) {
	db := loadDefault(t)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, db.IDs())
	assert.Equal(t, "Sera", db.Name(MurdererID))
	assert.Equal(t, "Unknown", db.Name(42))
	assert.Equal(t, "", db.Folder(42))
	assert.Equal(t, "nun", db.Folder(2))
}

func TestSystemPrompt_SectionOrder(t *testing.T) {
	db := loadDefault(t)

	prompt, err := db.SystemPrompt(2)
	require.NoError(t, err)

	order := []string{
		"SYSTEM / AI ROLE:",
		"[GAME RULES]",
		"[INTERROGATION]",
		"[OTHER SUSPECTS]",
		"[FORBIDDEN BEHAVIOURS]",
		"[ALLOWED BEHAVIOURS]",
		"[YOUR CHARACTER: Sera (the nun)]",
		"[CORE IDENTITY]",
		"[DIALOGUE STYLE]",
		"[FORBIDDEN LINES FOR Sera]",
		"[ALLOWED MOODS IN INTERROGATION - ONLY THESE 4]",
		"[RELATIONSHIPS]",
		"[BACKGROUND]",
		"[HIDDEN SECRET",
		"[MANDATORY OUTPUT FORMAT]",
		"[SIGNATURE LINE]",
	}
	last := -1
	for _, marker := range order {
		idx := strings.Index(prompt, marker)
		require.NotEqual(t, -1, idx, "missing section %q", marker)
		assert.Greater(t, idx, last, "section %q out of order", marker)
		last = idx
	}

	assert.Contains(t, prompt, "Valid emotions: [calm], [scared], [angry], [sad]")
	assert.Contains(t, prompt, "[calm]\"")
}

func TestSystemPrompt_OmitsEmptyOptionalSections(t *testing.T) {
	db := loadDefault(t)

	prompt, err := db.SystemPrompt(4)
	require.NoError(t, err)

	assert.NotContains(t, prompt, "[RELATIONSHIPS]")
	assert.NotContains(t, prompt, "[HIDDEN SECRET")
	assert.Contains(t, prompt, "[BACKGROUND]")
}

func TestSystemPrompt_UnknownSuspect(t *testing.T) {
	db := loadDefault(t)

	_, err := db.SystemPrompt(7)
	assert.ErrorIs(t, err, ErrUnknownSuspect)

	_, err = db.EmotionMapping(0)
	assert.ErrorIs(t, err, ErrUnknownSuspect)

	_, err = db.InterviewModes(-1)
	assert.ErrorIs(t, err, ErrUnknownSuspect)
}

func TestMapEmotionToImage(t *testing.T) {
	db := loadDefault(t)

	img, ok := db.MapEmotionToImage(2, "  scared ")
	assert.True(t, ok)
	assert.Equal(t, "scared.jpg", img)

	img, ok = db.MapEmotionToImage(2, "ecstatic")
	assert.False(t, ok)
	assert.Equal(t, "other.jpg", img)

	img, ok = db.MapEmotionToImage(5, "ecstatic")
	assert.False(t, ok)
	assert.Equal(t, "angry.jpg", img)

	img, ok = db.MapEmotionToImage(99, "scared")
	assert.False(t, ok)
	assert.Equal(t, "other.jpg", img)
}

func TestDefaultEmotion(t *testing.T) {
	want := map[int]string{1: "scared", 2: "other", 3: "happy", 4: "other", 5: "angry", 6: "scared", 7: "other"}
	for id, mood := range want {
		assert.Equal(t, mood, DefaultEmotion(id), "suspect %d", id)
	}
}

func TestLoad_FromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), DatabaseFile)
	body := `{
		"core_rules": {"core_narrative": "A quiet village."},
		"characters": {"1": {"name": "Ana", "role": "the baker", "interview_modes": ["calm"], "emotion_mapping": {"calm": "calm.jpg"}}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	db, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, db.IDs())
	assert.Equal(t, "other.jpg", db.DefaultImage(1))

	prompt, err := db.SystemPrompt(1)
	require.NoError(t, err)
	assert.NotContains(t, prompt, "[INTERROGATION]")
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"characters": {"one": {}}}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`nope`))
	assert.Error(t, err)
}

func TestCaseSummary(t *testing.T) {
	assert.Contains(t, CaseSummary(), "THE MURDER OF THE GREAT BEGGAR")
}
