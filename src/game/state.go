// Package game tracks the investigation: days, notebook pages and the verdict.
package game

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ai_detective/src/logger"

	"github.com/bytedance/sonic"
)

const (
	SaveFile  = "savegame.json"
	finalDay  = "Final"
	WinState  = "win"
	LoseState = "lose"
)

// Page is one notebook page. Final marks the notes written during the accusation.
type Page struct {
	Day     int
	Final   bool
	Content string
}

// Label is "Day 3" or "Final"
func (p Page) Label() string {
	if p.Final {
		return finalDay
	}
	return fmt.Sprintf("Day %d", p.Day)
}

// State is everything persisted in savegame.json
type State struct {
	CurrentDay    int
	Final         bool
	Pages         []Page
	GameEnded     bool
	WinState      string
	IntroShown    bool
	CaseFilesText string
}

func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores a fresh investigation
func (s *State) Reset() {
	*s = State{
		CurrentDay: 1,
		Pages:      []Page{{Day: 1}},
	}
}

// AdvanceDay moves to the next day and opens a blank page for it.
// Once the final page exists the day no longer changes.
func (s *State) AdvanceDay() int {
	if s.Final {
		return s.CurrentDay
	}
	s.CurrentDay++
	s.Pages = append(s.Pages, Page{Day: s.CurrentDay})
	return s.CurrentDay
}

// CurrentPage returns the page being written, or the final page after the accusation
func (s *State) CurrentPage() *Page {
	for i := range s.Pages {
		p := &s.Pages[i]
		if p.Final || (!s.Final && p.Day == s.CurrentDay) {
			return p
		}
	}
	if len(s.Pages) == 0 {
		s.Pages = []Page{{Day: 1}}
	}
	return &s.Pages[len(s.Pages)-1]
}

func (s *State) UpdateCurrentPage(content string) {
	s.CurrentPage().Content = content
}

// CreateFinalPage adds the accusation page once
func (s *State) CreateFinalPage() {
	for _, p := range s.Pages {
		if p.Final {
			s.Final = true
			return
		}
	}
	s.Pages = append(s.Pages, Page{Final: true})
	s.Final = true
}

// PageByIndex returns a blank day 1 page when index is out of range
func (s *State) PageByIndex(index int) Page {
	if index >= 0 && index < len(s.Pages) {
		return s.Pages[index]
	}
	return Page{Day: 1}
}

func (s *State) TotalPages() int {
	return len(s.Pages)
}

// DayLabel is the current day as stored on disk
func (s *State) DayLabel() string {
	if s.Final {
		return finalDay
	}
	return strconv.Itoa(s.CurrentDay)
}

// Save writes the state as indented JSON
func (s *State) Save(path string) error {
	data, err := sonic.ConfigStd.MarshalIndent(s.toWire(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal game state: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create save directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error saving game state: %w", err)
	}
	return nil
}

// Load reads a saved state. It reports false when there is no save file.
func (s *State) Load(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("error loading game state: %w", err)
	}

	w := wireState{CurrentDay: dayValue{n: 1}}
	if err := sonic.Unmarshal(data, &w); err != nil {
		return false, fmt.Errorf("error loading game state: %w", err)
	}
	s.fromWire(w)

	logger.Debug().
		Str("day", s.DayLabel()).
		Int("pages", len(s.Pages)).
		Bool("ended", s.GameEnded).
		Msg("Loaded game state")
	return true, nil
}

// dayValue is a day number, or the string "Final" on disk
type dayValue struct {
	n     int
	final bool
}

func (d dayValue) MarshalJSON() ([]byte, error) {
	if d.final {
		return []byte(`"` + finalDay + `"`), nil
	}
	return []byte(strconv.Itoa(d.n)), nil
}

func (d *dayValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == finalDay {
			*d = dayValue{final: true}
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("invalid day %q", s)
		}
		*d = dayValue{n: n}
		return nil
	}
	var n int
	if err := sonic.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid day %s: %w", data, err)
	}
	*d = dayValue{n: n}
	return nil
}

type wirePage struct {
	Day     dayValue `json:"day"`
	Content string   `json:"content"`
}

type wireState struct {
	CurrentDay    dayValue   `json:"current_day"`
	NotebookPages []wirePage `json:"notebook_pages"`
	GameEnded     bool       `json:"game_ended"`
	WinState      string     `json:"win_state"`
	IntroShown    bool       `json:"intro_shown"`
	CaseFilesText string     `json:"case_files_text"`
}

func (s *State) toWire() wireState {
	pages := make([]wirePage, len(s.Pages))
	for i, p := range s.Pages {
		pages[i] = wirePage{Day: dayValue{n: p.Day, final: p.Final}, Content: p.Content}
	}
	return wireState{
		CurrentDay:    dayValue{n: s.CurrentDay, final: s.Final},
		NotebookPages: pages,
		GameEnded:     s.GameEnded,
		WinState:      s.WinState,
		IntroShown:    s.IntroShown,
		CaseFilesText: s.CaseFilesText,
	}
}

func (s *State) fromWire(w wireState) {
	s.Final = w.CurrentDay.final
	s.CurrentDay = w.CurrentDay.n

	s.Pages = make([]Page, 0, len(w.NotebookPages))
	for _, p := range w.NotebookPages {
		s.Pages = append(s.Pages, Page{Day: p.Day.n, Final: p.Day.final, Content: p.Content})
		// the last numbered page is the day the accusation was made on
		if s.Final && !p.Day.final && p.Day.n > s.CurrentDay {
			s.CurrentDay = p.Day.n
		}
	}
	if len(s.Pages) == 0 {
		s.Pages = []Page{{Day: 1}}
	}
	if s.CurrentDay == 0 && !s.Final {
		s.CurrentDay = 1
	}

	s.GameEnded = w.GameEnded
	s.WinState = w.WinState
	s.IntroShown = w.IntroShown
	s.CaseFilesText = w.CaseFilesText
}
