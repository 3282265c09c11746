package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"callsight/internal/resolver"
	"callsight/internal/scoring"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	sectionStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	resolvedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	unresolvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle        = lipgloss.NewStyle().Faint(true)
)

type ConsoleReport struct {
	maxRows int
}

func NewConsoleReport(maxRows int) *ConsoleReport {
	if maxRows <= 0 {
		maxRows = 20
	}
	return &ConsoleReport{maxRows: maxRows}
}

func (c *ConsoleReport) Render(resolutions []*resolver.FileResolution, scores []scoring.FunctionScore) string {
	var buf strings.Builder

	total, resolved := 0, 0
	byReason := map[resolver.Reason]int{}
	for _, res := range resolutions {
		for _, call := range res.Calls {
			total++
			if call.Resolved() {
				resolved++
			} else {
				byReason[call.Reason]++
			}
		}
	}

	buf.WriteString(headerStyle.Render("callsight report"))
	buf.WriteString("\n\n")
	buf.WriteString(fmt.Sprintf("files analyzed: %d\n", len(resolutions)))
	buf.WriteString(resolvedStyle.Render(fmt.Sprintf("calls resolved: %d/%d", resolved, total)))
	buf.WriteString("\n")
	for _, reason := range []resolver.Reason{
		resolver.ReasonUnknownBinding,
		resolver.ReasonDynamicOrCrossModule,
		resolver.ReasonDynamicExpression,
	} {
		if n := byReason[reason]; n > 0 {
			buf.WriteString(unresolvedStyle.Render(fmt.Sprintf("  %s: %d", reason, n)))
			buf.WriteString("\n")
		}
	}

	buf.WriteString("\n")
	buf.WriteString(sectionStyle.Render("annotation priorities"))
	buf.WriteString("\n")

	rows := 0
	for _, s := range scores {
		if s.Priority == 0 {
			continue
		}
		if rows >= c.maxRows {
			buf.WriteString(dimStyle.Render(fmt.Sprintf("  ... %d more", len(scores)-rows)))
			buf.WriteString("\n")
			break
		}
		buf.WriteString(fmt.Sprintf("  %6.2f  %-40s %s:%d  (%d calls, %.0f%% annotated)\n",
			s.Priority, s.QualifiedName, s.File, s.Line, s.CallCount, s.Completeness*100))
		rows++
	}
	if rows == 0 {
		buf.WriteString(dimStyle.Render("  nothing to do"))
		buf.WriteString("\n")
	}

	return buf.String()
}
