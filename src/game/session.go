package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"ai_detective/src/casefile"
	"ai_detective/src/llm/emotion"
	"ai_detective/src/logger"
)

// Screen is the part of the game the player is looking at
type Screen string

const (
	ScreenMenu             Screen = "menu"
	ScreenIntro            Screen = "intro"
	ScreenLoadRecap        Screen = "load_recap"
	ScreenSuspectSelection Screen = "suspect_selection"
	ScreenPlaying          Screen = "playing"
	ScreenAccusation       Screen = "accusation"
	ScreenWin              Screen = "win"
	ScreenLose             Screen = "lose"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrEmptyQuestion     = errors.New("empty question")
)

// FallbackIntro is shown when the model cannot write the intro
const FallbackIntro = `Six mysterious figures sit in a cold, dark interrogation room. Their medieval clothes clash strangely with the modern walls.

Eight hundred years ago, in Medjugorje, a beloved beggar was murdered. Now, inexplicably, six suspects have come back to life in Washington.

The blacksmith, the nun, the merchant, the soldier, the boy and the cook are all waiting for your questions. One of them is the killer.

It is time to uncover the truth.`

// Interrogator is the model side of the game
type Interrogator interface {
	SuspectResponse(ctx context.Context, suspectID int, question string, onToken func(string)) (string, error)
	GenerateIntro(ctx context.Context, onToken func(string)) (string, error)
	GenerateRecap(ctx context.Context, day int, onToken func(string)) (string, error)
	ResetAllChats(ctx context.Context) error
	SuspectName(suspectID int) string
}

// Reply is a suspect's parsed answer
type Reply struct {
	SuspectID int
	Name      string
	Text      string
	Emotion   string
	Image     string
	Portrait  string // <folder>/<image>
}

// Session drives one player through the screens of the game
type Session struct {
	state    *State
	savePath string
	ai       Interrogator
	db       *casefile.Database

	screen     Screen
	suspect    int
	dayStarted bool
	recapDone  bool
}

// NewSession loads the save at savePath if there is one
func NewSession(savePath string, ai Interrogator, db *casefile.Database) (*Session, error) {
	s := &Session{
		state:    NewState(),
		savePath: savePath,
		ai:       ai,
		db:       db,
		screen:   ScreenMenu,
	}
	loaded, err := s.state.Load(savePath)
	if err != nil {
		logger.Warn().Err(err).Str("path", savePath).Msg("Could not load save, starting a new game")
		s.state.Reset()
	} else if loaded {
		logger.Info().Str("day", s.state.DayLabel()).Msg("Save loaded")
	}
	return s, nil
}

func (s *Session) Screen() Screen      { return s.screen }
func (s *Session) State() *State       { return s.state }
func (s *Session) CurrentSuspect() int { return s.suspect }

func (s *Session) transition(action string, allowed ...Screen) error {
	if slices.Contains(allowed, s.screen) {
		return nil
	}
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, s.screen)
}

func (s *Session) save() error {
	if err := s.state.Save(s.savePath); err != nil {
		logger.Error().Err(err).Str("path", s.savePath).Msg("Error saving game state")
		return err
	}
	return nil
}

// Start leaves the menu for wherever the investigation stands
func (s *Session) Start() (Screen, error) {
	if err := s.transition("start", ScreenMenu); err != nil {
		return s.screen, err
	}

	switch {
	case s.state.GameEnded:
		if s.state.WinState == WinState {
			s.screen = ScreenWin
		} else {
			s.screen = ScreenLose
		}
	case s.dayStarted:
		s.screen = ScreenPlaying
	case s.state.Final:
		s.screen = ScreenAccusation
	case s.state.CurrentDay == 1 && !s.state.IntroShown:
		s.screen = ScreenIntro
		s.state.IntroShown = true
		if err := s.save(); err != nil {
			return s.screen, err
		}
	case s.state.IntroShown && !s.recapDone:
		s.screen = ScreenLoadRecap
	default:
		s.screen = ScreenSuspectSelection
	}

	logger.Debug().
		Str("screen", string(s.screen)).
		Str("day", s.state.DayLabel()).
		Bool("intro_shown", s.state.IntroShown).
		Msg("Game started")
	return s.screen, nil
}

// IntroText writes the story intro, falling back to a fixed one, and keeps it as the case files
func (s *Session) IntroText(ctx context.Context, onToken func(string)) (string, error) {
	if err := s.transition("show intro", ScreenIntro); err != nil {
		return "", err
	}

	text, err := s.ai.GenerateIntro(ctx, onToken)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Warn().Err(err).Msg("Using fallback intro text")
		text = FallbackIntro
	}

	s.state.CaseFilesText = text
	return text, s.save()
}

// RecapText writes the news recap shown when a save is resumed. It is empty on failure.
func (s *Session) RecapText(ctx context.Context, onToken func(string)) string {
	if s.screen != ScreenLoadRecap {
		return ""
	}
	text, err := s.ai.GenerateRecap(ctx, s.state.CurrentDay, onToken)
	if err != nil {
		logger.Warn().Err(err).Msg("Load recap generation failed")
		return ""
	}
	return text
}

// Continue leaves the intro or the recap for suspect selection
func (s *Session) Continue() error {
	if err := s.transition("continue", ScreenIntro, ScreenLoadRecap); err != nil {
		return err
	}
	s.recapDone = true
	s.screen = ScreenSuspectSelection
	return nil
}

// SelectSuspect opens today's interrogation and returns the suspect's opening portrait
func (s *Session) SelectSuspect(suspectID int) (string, error) {
	if err := s.transition("select suspect", ScreenSuspectSelection, ScreenPlaying); err != nil {
		return "", err
	}
	if _, err := s.db.Character(suspectID); err != nil {
		return "", err
	}

	s.suspect = suspectID
	s.dayStarted = true
	s.screen = ScreenPlaying

	logger.Info().Int("suspect", suspectID).Int("day", s.state.CurrentDay).Msg("Interrogation started")
	return s.portrait(suspectID, s.db.DefaultImage(suspectID)), nil
}

func (s *Session) portrait(suspectID int, image string) string {
	return s.db.Folder(suspectID) + "/" + image
}

// Ask questions the current suspect. Tokens stream to onToken as they arrive.
func (s *Session) Ask(ctx context.Context, question string, onToken func(string)) (Reply, error) {
	if err := s.transition("ask", ScreenPlaying); err != nil {
		return Reply{}, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}

	raw, err := s.ai.SuspectResponse(ctx, s.suspect, question, onToken)
	if err != nil {
		return Reply{}, err
	}

	parsed := emotion.Parse(s.db, s.suspect, raw)
	mood := parsed.Tag
	if !parsed.Valid {
		// the default portrait shows the suspect's resting mood
		mood = casefile.DefaultEmotion(s.suspect)
	}
	return Reply{
		SuspectID: s.suspect,
		Name:      s.ai.SuspectName(s.suspect),
		Text:      parsed.Text,
		Emotion:   mood,
		Image:     parsed.Image,
		Portrait:  s.portrait(s.suspect, parsed.Image),
	}, nil
}

// WriteNote appends a line to the current notebook page
func (s *Session) WriteNote(line string) error {
	if s.state.GameEnded {
		return fmt.Errorf("%w: the notebook is closed", ErrInvalidTransition)
	}
	page := s.state.CurrentPage()
	if page.Content == "" {
		page.Content = line
	} else {
		page.Content += "\n" + line
	}
	return s.save()
}

// EndDay closes today's page, forgets every interrogation and starts the next day
func (s *Session) EndDay(ctx context.Context) (int, error) {
	if err := s.transition("end the day", ScreenPlaying); err != nil {
		return s.state.CurrentDay, err
	}

	day := s.state.AdvanceDay()
	if err := s.ai.ResetAllChats(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to reset chats")
	}

	s.suspect = 0
	s.dayStarted = false
	s.screen = ScreenSuspectSelection

	logger.Info().Int("day", day).Msg("Advanced to next day")
	return day, s.save()
}

// BeginAccusation opens the final notebook page
func (s *Session) BeginAccusation() error {
	if err := s.transition("accuse", ScreenPlaying, ScreenSuspectSelection); err != nil {
		return err
	}
	s.state.CreateFinalPage()
	s.dayStarted = false
	s.screen = ScreenAccusation
	return s.save()
}

// Accuse ends the game. Only the murderer wins.
func (s *Session) Accuse(suspectID int) (Screen, error) {
	if err := s.transition("accuse a suspect", ScreenAccusation); err != nil {
		return s.screen, err
	}
	if _, err := s.db.Character(suspectID); err != nil {
		return s.screen, err
	}

	if suspectID == casefile.MurdererID {
		s.screen = ScreenWin
		s.state.WinState = WinState
	} else {
		s.screen = ScreenLose
		s.state.WinState = LoseState
	}
	s.state.GameEnded = true

	logger.Info().Int("suspect", suspectID).Str("result", s.state.WinState).Msg("Accusation made")
	return s.screen, s.save()
}

// Menu returns to the main menu, keeping the current day in progress
func (s *Session) Menu() {
	s.screen = ScreenMenu
}

// DeleteSave throws the investigation away and starts over
func (s *Session) DeleteSave(ctx context.Context) error {
	if err := os.Remove(s.savePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete save: %w", err)
	}
	s.state.Reset()
	s.suspect = 0
	s.dayStarted = false
	s.recapDone = false
	s.screen = ScreenMenu

	if err := s.ai.ResetAllChats(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to reset chats")
	}
	logger.Info().Str("path", s.savePath).Msg("Save file deleted")
	return nil
}
