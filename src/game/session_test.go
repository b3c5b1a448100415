package game

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ai_detective/src/casefile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInterrogator struct {
	reply    string
	intro    string
	introErr error
	recap    string
	resets   int
	asked    []string
}

func (f *fakeInterrogator) SuspectResponse(_ context.Context, _ int, question string, onToken func(string)) (string, error) {
	f.asked = append(f.asked, question)
	if onToken != nil {
		onToken(f.reply)
	}
	return f.reply, nil
}

func (f *fakeInterrogator) GenerateIntro(_ context.Context, _ func(string)) (string, error) {
	return f.intro, f.introErr
}

func (f *fakeInterrogator) GenerateRecap(_ context.Context, _ int, _ func(string)) (string, error) {
	return f.recap, nil
}

func (f *fakeInterrogator) ResetAllChats(context.Context) error {
	f.resets++
	return nil
}

func (f *fakeInterrogator) SuspectName(id int) string {
	return map[int]string{1: "Garon", 2: "Sera"}[id]
}

func newTestSession(t *testing.T, ai *fakeInterrogator) (*Session, string) {
	t.Helper()
	db, err := casefile.Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), SaveFile)
	s, err := NewSession(path, ai, db)
	require.NoError(t, err)
	return s, path
}

func TestSession_NewGameFlow(t *testing.T) {
	ctx := context.Background()
	ai := &fakeInterrogator{reply: "I pray for his soul. [sad]", intro: "The dead wake."}
	s, _ := newTestSession(t, ai)

	screen, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, ScreenIntro, screen)
	assert.True(t, s.State().IntroShown)

	text, err := s.IntroText(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "The dead wake.", text)
	assert.Equal(t, "The dead wake.", s.State().CaseFilesText)

	require.NoError(t, s.Continue())
	assert.Equal(t, ScreenSuspectSelection, s.Screen())

	portrait, err := s.SelectSuspect(2)
	require.NoError(t, err)
	assert.Equal(t, "nun/other.jpg", portrait)
	assert.Equal(t, ScreenPlaying, s.Screen())

	reply, err := s.Ask(ctx, "  Where were you?  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "I pray for his soul.", reply.Text)
	assert.Equal(t, "sad", reply.Emotion)
	assert.Equal(t, "nun/sad.jpg", reply.Portrait)
	assert.Equal(t, "Sera", reply.Name)
	assert.Equal(t, []string{"Where were you?"}, ai.asked)

	_, err = s.Ask(ctx, "   ", nil)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Len(t, ai.asked, 1)
}

func TestSession_AskWithoutValidTagUsesRestingMood(t *testing.T) {
	tests := []struct {
		name      string
		suspectID int
		reply     string
		wantMood  string
		wantImage string
	}{
		{"no tag", 1, "I forge iron, nothing more.", "scared", "blacksmith/scared.jpg"},
		{"unknown tag", 5, "Go away. [ecstatic]", "angry", "boy/angry.jpg"},
		{"no tag calm suspect", 4, "Orders are orders.", "other", "soldier/other.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(t, &fakeInterrogator{reply: tt.reply})
			_, err := s.Start()
			require.NoError(t, err)
			require.NoError(t, s.Continue())
			_, err = s.SelectSuspect(tt.suspectID)
			require.NoError(t, err)

			reply, err := s.Ask(context.Background(), "Where were you?", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMood, reply.Emotion)
			assert.Equal(t, tt.wantImage, reply.Portrait)
		})
	}
}

func TestSession_IntroFallback(t *testing.T) {
	ai := &fakeInterrogator{introErr: errors.New("model offline")}
	s, _ := newTestSession(t, ai)

	_, err := s.Start()
	require.NoError(t, err)

	text, err := s.IntroText(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackIntro, text)
	assert.Equal(t, FallbackIntro, s.State().CaseFilesText)

	ai2 := &fakeInterrogator{intro: "   "}
	s2, _ := newTestSession(t, ai2)
	_, err = s2.Start()
	require.NoError(t, err)
	text, err = s2.IntroText(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackIntro, text)
}

func TestSession_EndDayResetsAndPersists(t *testing.T) {
	ctx := context.Background()
	ai := &fakeInterrogator{reply: "No. [angry]"}
	s, path := newTestSession(t, ai)

	_, err := s.Start()
	require.NoError(t, err)
	require.NoError(t, s.Continue())
	_, err = s.SelectSuspect(1)
	require.NoError(t, err)
	require.NoError(t, s.WriteNote("Garon is hiding something"))

	day, err := s.EndDay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, day)
	assert.Equal(t, 1, ai.resets)
	assert.Equal(t, ScreenSuspectSelection, s.Screen())

	_, err = s.Ask(ctx, "Still there?", nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// a new session resumes from the save with a recap
	resumed, err := NewSession(path, ai, s.db)
	require.NoError(t, err)
	screen, err := resumed.Start()
	require.NoError(t, err)
	assert.Equal(t, ScreenLoadRecap, screen)
	assert.Equal(t, 2, resumed.State().CurrentDay)
	assert.Equal(t, "Garon is hiding something", resumed.State().PageByIndex(0).Content)

	require.NoError(t, resumed.Continue())
	resumed.Menu()
	screen, err = resumed.Start()
	require.NoError(t, err)
	assert.Equal(t, ScreenSuspectSelection, screen)
}

func TestSession_Accusation(t *testing.T) {
	tests := []struct {
		name    string
		suspect int
		want    Screen
		state   string
	}{
		{"murderer wins", casefile.MurdererID, ScreenWin, WinState},
		{"innocent loses", 3, ScreenLose, LoseState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ai := &fakeInterrogator{}
			s, path := newTestSession(t, ai)

			_, err := s.Start()
			require.NoError(t, err)
			require.NoError(t, s.Continue())

			_, err = s.Accuse(tt.suspect)
			assert.ErrorIs(t, err, ErrInvalidTransition)

			require.NoError(t, s.BeginAccusation())
			assert.True(t, s.State().CurrentPage().Final)

			_, err = s.Accuse(99)
			assert.ErrorIs(t, err, casefile.ErrUnknownSuspect)

			screen, err := s.Accuse(tt.suspect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, screen)
			assert.True(t, s.State().GameEnded)
			assert.Equal(t, tt.state, s.State().WinState)

			// reopening an ended game goes straight to its ending
			again, err := NewSession(path, ai, s.db)
			require.NoError(t, err)
			screen, err = again.Start()
			require.NoError(t, err)
			assert.Equal(t, tt.want, screen)
		})
	}
}

func TestSession_InvalidTransitions(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t, &fakeInterrogator{})

	_, err := s.SelectSuspect(1)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = s.EndDay(ctx)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Continue(), ErrInvalidTransition)

	_, err = s.Start()
	require.NoError(t, err)
	_, err = s.Start()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Continue())
	_, err = s.SelectSuspect(7)
	assert.ErrorIs(t, err, casefile.ErrUnknownSuspect)
}

func TestSession_DeleteSave(t *testing.T) {
	ctx := context.Background()
	ai := &fakeInterrogator{}
	s, path := newTestSession(t, ai)

	_, err := s.Start()
	require.NoError(t, err)
	require.NoError(t, s.Continue())
	require.NoError(t, s.BeginAccusation())
	assert.FileExists(t, path)

	require.NoError(t, s.DeleteSave(ctx))
	assert.NoFileExists(t, path)
	assert.Equal(t, NewState(), s.State())
	assert.Equal(t, ScreenMenu, s.Screen())
	assert.Equal(t, 1, ai.resets)

	// deleting twice is fine
	require.NoError(t, s.DeleteSave(ctx))

	screen, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, ScreenIntro, screen)
}
