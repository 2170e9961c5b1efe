package trace

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/verdictd/internal/findings"
)

var (
	// Frame header style - bold bright cyan
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true)

	// Step kind style - bright blue
	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("45"))

	// Evidence and metadata - dim gray
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	// Stop steps - bold red
	stopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	// Decision line - bright white
	decisionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("231")).
			Bold(true)
)

// Render produces the console projection: one block per frame, strictly in
// frame order, with no reordering or filtering.
func Render(l *RunLog) string {
	var b strings.Builder
	for i, frame := range l.Frames {
		if i > 0 {
			b.WriteString("\n")
		}
		renderFrame(&b, frame)
	}
	return b.String()
}

func renderFrame(b *strings.Builder, frame Frame) {
	fmt.Fprintf(b, "%s\n", headerStyle.Render(fmt.Sprintf("== %s ==", frame.State)))
	if len(frame.Goals) > 0 {
		fmt.Fprintf(b, "  goals:  %s\n", strings.Join(frame.Goals, "; "))
	}
	if len(frame.Checks) > 0 {
		fmt.Fprintf(b, "  checks: %s\n", strings.Join(frame.Checks, "; "))
	}
	if len(frame.Risks) > 0 {
		fmt.Fprintf(b, "  risks:  %s\n", strings.Join(frame.Risks, "; "))
	}
	for _, step := range frame.Steps {
		renderStep(b, step)
	}
	if frame.Decision != "" {
		fmt.Fprintf(b, "  %s %s\n", decisionStyle.Render("->"), frame.Decision)
	}
}

func renderStep(b *strings.Builder, step Step) {
	style := kindStyle
	if step.Kind == StepStop {
		style = stopStyle
	}
	fmt.Fprintf(b, "  [%s] %s", style.Render(string(step.Kind)), step.Why)
	if step.Confidence != "" && step.Confidence != findings.ConfidenceMedium {
		fmt.Fprintf(b, " %s", dimStyle.Render(fmt.Sprintf("(confidence: %s)", step.Confidence)))
	}
	if step.Next != "" {
		fmt.Fprintf(b, " %s", dimStyle.Render(fmt.Sprintf("-> %s", step.Next)))
	}
	b.WriteString("\n")
	for _, ref := range step.Evidence {
		fmt.Fprintf(b, "      %s\n", dimStyle.Render(ref))
	}
}
