package cli

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"ai_detective/src/casefile"
	"ai_detective/src/game"
)

const playingHelp = "Ask a question, or :note <text>, :notes, :switch <n>, :end, :accuse, :quit"

// PlayLoop runs the menu and the screens of one session until the player quits
func PlayLoop(ctx context.Context, t *Terminal, s *game.Session, db *casefile.Database) error {
	for {
		t.Title("Main menu")
		t.Dim("1) Start or continue the investigation  2) Delete save  3) Quit")
		choice, ok := t.Prompt("menu> ")
		if !ok {
			return nil
		}

		switch choice {
		case "1", "":
			if _, err := s.Start(); err != nil {
				return err
			}
			done, err := runScreens(ctx, t, s, db)
			if err != nil || done {
				return err
			}
		case "2":
			if err := s.DeleteSave(ctx); err != nil {
				t.Error(err.Error())
			} else {
				t.Dim("Save deleted. The case is reopened from day one.")
			}
		case "3", ":quit", "q":
			return nil
		default:
			t.Warn("Unknown option " + choice)
		}
	}
}

// runScreens reports done when the player left the game entirely
func runScreens(ctx context.Context, t *Terminal, s *game.Session, db *casefile.Database) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return true, nil
		}

		var (
			quit bool
			err  error
		)
		switch s.Screen() {
		case game.ScreenIntro:
			quit, err = introScreen(ctx, t, s)
		case game.ScreenLoadRecap:
			quit, err = recapScreen(ctx, t, s)
		case game.ScreenSuspectSelection:
			quit, err = selectionScreen(t, s, db)
		case game.ScreenPlaying:
			quit, err = playingScreen(ctx, t, s)
		case game.ScreenAccusation:
			quit, err = accusationScreen(t, s, db)
		case game.ScreenWin, game.ScreenLose:
			endScreen(t, s, db)
			return true, nil
		case game.ScreenMenu:
			return false, nil
		}
		if err != nil {
			return true, err
		}
		if quit {
			s.Menu()
			return false, nil
		}
	}
}

func introScreen(ctx context.Context, t *Terminal, s *game.Session) (bool, error) {
	t.Title("Case files")
	streamed := false
	text, err := s.IntroText(ctx, func(tok string) {
		streamed = true
		t.Token(tok)
	})
	if err != nil {
		return false, err
	}
	if !streamed || text == game.FallbackIntro {
		t.println(text)
	} else {
		t.println()
	}
	if _, ok := t.Prompt("\nPress Enter to begin..."); !ok {
		return true, nil
	}
	return false, s.Continue()
}

func recapScreen(ctx context.Context, t *Terminal, s *game.Session) (bool, error) {
	t.Title("Day " + strconv.Itoa(s.State().CurrentDay) + " news")
	if text := s.RecapText(ctx, t.Token); text == "" {
		t.Dim("The papers have nothing new today.")
	} else {
		t.println()
	}
	if _, ok := t.Prompt("\nPress Enter to continue..."); !ok {
		return true, nil
	}
	return false, s.Continue()
}

func selectionScreen(t *Terminal, s *game.Session, db *casefile.Database) (bool, error) {
	t.Title("Day " + strconv.Itoa(s.State().CurrentDay) + ": choose a suspect")
	t.Suspects(db)
	t.Dim("Enter a number, or :notes, :note <text>, :accuse, :quit")

	for {
		line, ok := t.Prompt("suspect> ")
		if !ok {
			return true, nil
		}
		switch cmd, arg := splitCommand(line); cmd {
		case ":quit":
			return true, nil
		case ":notes":
			t.Notebook(s.State())
		case ":note":
			noteLine(t, s, arg)
		case ":accuse":
			return false, s.BeginAccusation()
		default:
			id, err := strconv.Atoi(line)
			if err != nil {
				t.Warn("Enter a suspect number")
				continue
			}
			portrait, err := s.SelectSuspect(id)
			if err != nil {
				t.Warn(err.Error())
				continue
			}
			t.Dim("Day " + strconv.Itoa(s.State().CurrentDay) + ": interrogating " + db.Name(id) + " [" + portrait + "]")
			return false, nil
		}
	}
}

func playingScreen(ctx context.Context, t *Terminal, s *game.Session) (bool, error) {
	t.Dim(playingHelp)
	for {
		line, ok := t.Prompt("detective> ")
		if !ok {
			return true, nil
		}
		cmd, arg := splitCommand(line)
		switch cmd {
		case ":quit":
			return true, nil
		case ":notes":
			t.Notebook(s.State())
		case ":note":
			noteLine(t, s, arg)
		case ":end":
			day, err := s.EndDay(ctx)
			if err != nil {
				return false, err
			}
			t.Dim("Day " + strconv.Itoa(day) + " begins. The suspects have forgotten yesterday's questions.")
			return false, nil
		case ":accuse":
			return false, s.BeginAccusation()
		case ":switch":
			id, err := strconv.Atoi(arg)
			if err != nil {
				t.Warn("Usage: :switch <suspect number>")
				continue
			}
			if _, err := s.SelectSuspect(id); err != nil {
				t.Warn(err.Error())
			}
		case ":help":
			t.Dim(playingHelp)
		default:
			if cmd != "" {
				t.Warn("Unknown command " + cmd)
				continue
			}
			streamed := false
			reply, err := s.Ask(ctx, line, func(tok string) {
				streamed = true
				t.Token(tok)
			})
			if errors.Is(err, game.ErrEmptyQuestion) {
				continue
			}
			if err != nil {
				return false, err
			}
			if !streamed {
				t.Token(reply.Text)
			}
			t.println()
			t.Reply(reply)
		}
	}
}

func accusationScreen(t *Terminal, s *game.Session, db *casefile.Database) (bool, error) {
	t.Title("Accusation: who killed the beggar?")
	t.Suspects(db)
	t.Dim("Write your final notes with :note <text>, then name the killer by number")

	for {
		line, ok := t.Prompt("accuse> ")
		if !ok {
			return true, nil
		}
		switch cmd, arg := splitCommand(line); cmd {
		case ":quit":
			return true, nil
		case ":notes":
			t.Notebook(s.State())
		case ":note":
			noteLine(t, s, arg)
		default:
			id, err := strconv.Atoi(line)
			if err != nil {
				t.Warn("Enter a suspect number")
				continue
			}
			if _, err := s.Accuse(id); err != nil {
				t.Warn(err.Error())
				continue
			}
			return false, nil
		}
	}
}

func endScreen(t *Terminal, s *game.Session, db *casefile.Database) {
	if s.Screen() == game.ScreenWin {
		t.Title("Case closed")
		t.println("You named " + db.Name(casefile.MurdererID) + ". The beggar has his justice at last.")
	} else {
		t.Title("The killer walks free")
		t.println("Your accusation collapses and the real killer walks out of the room.")
	}
	t.Notebook(s.State())
}

func noteLine(t *Terminal, s *game.Session, text string) {
	if text == "" {
		t.Warn("Usage: :note <text>")
		return
	}
	if err := s.WriteNote(text); err != nil {
		t.Warn(err.Error())
		return
	}
	t.Dim("Noted on " + s.State().CurrentPage().Label())
}

func splitCommand(line string) (string, string) {
	if !strings.HasPrefix(line, ":") {
		return "", line
	}
	cmd, arg, _ := strings.Cut(line, " ")
	return cmd, strings.TrimSpace(arg)
}
