package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/daryltucker/bench-trend/internal/model"
)

var (
	colorRegressed = lipgloss.Color("#E74C3C")
	colorOK        = lipgloss.Color("#2CD7C7")
	colorMuted     = lipgloss.Color("240")

	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	regressedStyle = lipgloss.NewStyle().Foreground(colorRegressed).Bold(true)
	okStyle        = lipgloss.NewStyle().Foreground(colorOK)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorMuted)
)

var tableColumns = []struct {
	title string
	width int
	right bool
}{
	{"SERIES", 36, false},
	{"REVS", 11, true},
	{"N", 4, true},
	{"SLOPE", 11, true},
	{"SE", 9, true},
	{"MIN SLOPE", 11, true},
	{"", 10, false},
}

func cell(s string, col int) string {
	c := tableColumns[col]
	st := lipgloss.NewStyle().Width(c.width).MaxWidth(c.width).MarginRight(1)
	if c.right {
		st = st.Align(lipgloss.Right)
	}
	return st.Render(s)
}

// RenderTable formats trends for the terminal. Regressed series are
// highlighted.
func RenderTable(trends []model.Trend) string {
	if len(trends) == 0 {
		return mutedStyle.Render("no series with enough data to fit") + "\n"
	}

	var sb strings.Builder
	var header []string
	for i, c := range tableColumns {
		header = append(header, cell(c.title, i))
	}
	sb.WriteString(headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, header...)) + "\n")

	regressed := 0
	for _, tr := range trends {
		name := tr.Bench + "/" + tr.Config
		if tr.HasTimeType {
			name += "/" + tr.TimeType + "msecs"
		}
		status := okStyle.Render("ok")
		if tr.Regressed {
			status = regressedStyle.Render("REGRESSED")
			regressed++
		}
		row := []string{
			cell(name, 0),
			cell(fmt.Sprintf("%d-%d", tr.MinRevision, tr.MaxRevision), 1),
			cell(fmt.Sprint(tr.Points), 2),
			cell(fmt.Sprintf("%.4g", tr.Slope), 3),
			cell(fmt.Sprintf("%.3g", tr.StandardError), 4),
			cell(fmt.Sprintf("%.4g", tr.MinSlope), 5),
			cell(status, 6),
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...) + "\n")
	}

	summary := fmt.Sprintf("%d series, %d regressed", len(trends), regressed)
	if regressed > 0 {
		sb.WriteString(regressedStyle.Render(summary) + "\n")
	} else {
		sb.WriteString(mutedStyle.Render(summary) + "\n")
	}
	return sb.String()
}
