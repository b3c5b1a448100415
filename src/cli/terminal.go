package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"ai_detective/src/casefile"
	"ai_detective/src/game"
	"ai_detective/src/launcher"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	detStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	suspectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("223"))
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

const banner = `AI DETECTIVE
The Murder of the Great Beggar`

// Terminal reads player input and renders the game
type Terminal struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewScanner(in), out: out}
}

func (t *Terminal) println(a ...any) {
	fmt.Fprintln(t.out, a...)
}

// Prompt prints label and reads a line. ok is false at end of input.
func (t *Terminal) Prompt(label string) (string, bool) {
	fmt.Fprint(t.out, detStyle.Render(label))
	if !t.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(t.in.Text()), true
}

func (t *Terminal) Banner(version string) {
	t.println(panelStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(banner),
		dimStyle.Render("version "+version),
	)))
}

func (t *Terminal) Title(s string) { t.println("\n" + titleStyle.Render(s)) }
func (t *Terminal) Dim(s string)   { t.println(dimStyle.Render(s)) }
func (t *Terminal) Warn(s string)  { t.println(warnStyle.Render("! " + s)) }
func (t *Terminal) Error(s string) { t.println(errStyle.Render("Error: " + s)) }

// Token writes a streamed token without a newline
func (t *Terminal) Token(s string) {
	fmt.Fprint(t.out, suspectStyle.Render(s))
}

func (t *Terminal) Suspects(db *casefile.Database) {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("#", "Name", "Role")
	for _, id := range db.IDs() {
		tbl.Row(fmt.Sprint(id), db.Name(id), db.Role(id))
	}
	t.println(tbl.String())
}

func (t *Terminal) Reply(r game.Reply) {
	t.println(dimStyle.Render(fmt.Sprintf("[%s] %s looks %s", r.Portrait, r.Name, r.Emotion)))
}

func (t *Terminal) Notebook(s *game.State) {
	t.Title("Notebook")
	for i := 0; i < s.TotalPages(); i++ {
		p := s.PageByIndex(i)
		content := p.Content
		if content == "" {
			content = dimStyle.Render("(empty)")
		}
		t.println(panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(p.Label()), content)))
	}
}

func (t *Terminal) Checks(checks []launcher.Check) {
	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers("Check", "Status", "Detail")
	for _, c := range checks {
		tbl.Row(c.Name, renderStatus(c.Status), c.Detail)
	}
	t.println(tbl.String())
}

func renderStatus(s launcher.CheckStatus) string {
	switch s {
	case launcher.CheckOK:
		return okStyle.Render("ok")
	case launcher.CheckWarn:
		return warnStyle.Render("warn")
	default:
		return errStyle.Render("fail")
	}
}

// Reporter shows launcher progress as status lines
func (t *Terminal) Reporter() launcher.Reporter {
	return terminalReporter{t: t}
}

type terminalReporter struct {
	t *Terminal
}

func (r terminalReporter) Step(name string) { r.t.println(titleStyle.Render("» " + name)) }
func (r terminalReporter) Info(msg string)  { r.t.println("  " + dimStyle.Render(msg)) }
func (r terminalReporter) Warn(msg string)  { r.t.println("  " + warnStyle.Render("! "+msg)) }
func (r terminalReporter) Done(name string, elapsed time.Duration) {
	r.t.println("  " + okStyle.Render("✓ "+name) + dimStyle.Render(" "+elapsed.Round(time.Millisecond).String()))
}
