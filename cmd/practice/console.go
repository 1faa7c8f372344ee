package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"saylo/internal/models"
	"saylo/internal/session"
)

const (
	cmdEnd  = ":end"
	cmdQuit = ":quit"
)

// timer warnings are printed once per question at these marks
var warnAt = []int{30, 10}

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// Controller is the part of session.Controller the console drives.
type Controller interface {
	State() session.State
	SetAnswer(text string)
	SubmitAnswer(ctx context.Context, answer string, metrics *models.NonVerbalMetrics) error
	EndInterview(ctx context.Context) error
}

// console turns typed lines into controller calls and prints what changed.
// Lines accumulate into the answer; a blank line submits it.
type console struct {
	ctrl Controller
	out  io.Writer

	lines     []string
	lastIndex int
	lastError string
	warned    map[int]bool
}

func newConsole(ctrl Controller, out io.Writer) *console {
	return &console{ctrl: ctrl, out: out, lastIndex: -1, warned: map[int]bool{}}
}

// handleLine returns true once the user asked to leave.
func (c *console) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case cmdQuit:
		return true
	case cmdEnd:
		if err := c.ctrl.EndInterview(ctx); err != nil {
			fmt.Fprintln(c.out, errorStyle.Render(fmt.Sprintf("! could not end interview: %v", err)))
		}
		return false
	case "":
		if len(c.lines) == 0 {
			return false
		}
		answer := strings.Join(c.lines, "\n")
		if err := c.ctrl.SubmitAnswer(ctx, answer, nil); err != nil {
			if errors.Is(err, session.ErrSubmissionInFlight) {
				fmt.Fprintln(c.out, warnStyle.Render("! still waiting for the interviewer"))
			}
			// the answer is kept so another blank line retries; other
			// failures surface through State.Error
			return false
		}
		c.lines = nil
		return false
	}

	c.lines = append(c.lines, line)
	c.ctrl.SetAnswer(strings.Join(c.lines, "\n"))
	return false
}

// refresh prints anything new in the controller state. It reports whether
// the interview has completed.
func (c *console) refresh() bool {
	s := c.ctrl.State()

	if s.Error != "" && s.Error != c.lastError {
		fmt.Fprintln(c.out, errorStyle.Render("! "+s.Error))
	}
	c.lastError = s.Error

	if s.Phase == session.PhaseCompleted {
		fmt.Fprint(c.out, formatFeedback(s.Feedback))
		return true
	}
	if s.Phase != session.PhaseLive {
		return false
	}

	if s.CurrentIndex != c.lastIndex {
		c.lastIndex = s.CurrentIndex
		c.lines = nil
		c.warned = map[int]bool{}
		if q, ok := s.CurrentQuestion(); ok {
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, questionStyle.Render(fmt.Sprintf("Question %d [%s]: %s", s.CurrentIndex+1, q.Category, q.Text)))
			fmt.Fprintln(c.out, hintStyle.Render(fmt.Sprintf("(%ds to answer, blank line submits, %s finishes early)", s.TimeLeft, cmdEnd)))
		}
		return false
	}

	for _, mark := range warnAt {
		if s.TimeLeft <= mark && s.TimeLeft > 0 && !c.warned[mark] {
			c.warned[mark] = true
			fmt.Fprintln(c.out, warnStyle.Render(fmt.Sprintf("... %ds left", s.TimeLeft)))
		}
	}
	return false
}

func formatFeedback(f *models.Feedback) string {
	if f == nil {
		return "\nInterview finished. No feedback was returned.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", titleStyle.Render(fmt.Sprintf("Interview finished. Overall score: %.1f/10", f.OverallScore)))
	if f.FinalVerdict != "" {
		fmt.Fprintf(&b, "Verdict: %s\n", f.FinalVerdict)
	}
	writeList(&b, "Strengths", f.Strengths)
	writeList(&b, "Areas to improve", f.Weaknesses)
	writeList(&b, "Recommendations", f.Recommendations)
	if f.DetailedFeedback != "" {
		fmt.Fprintf(&b, "\n%s\n", f.DetailedFeedback)
	}
	if m := f.Metrics; m != nil {
		fmt.Fprintf(&b, "\nEye contact %.1f  Nervousness %.1f  Posture %.1f  Clarity %.1f  Confidence %.1f\n",
			m.EyeContact, m.Nervousness, m.Posture, m.Clarity, m.Confidence)
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func formatHistory(items []models.HistoryItem) string {
	if len(items) == 0 {
		return "No past interviews.\n"
	}
	var b strings.Builder
	for _, item := range items {
		score := "-"
		if item.Feedback != nil {
			score = fmt.Sprintf("%.1f", item.Feedback.OverallScore)
		}
		fmt.Fprintf(&b, "%s  %-24s %-6s %2d questions  score %s\n",
			item.StartedAt.Format("2006-01-02 15:04"), item.Role, item.Difficulty, item.QuestionCount, score)
	}
	return b.String()
}
