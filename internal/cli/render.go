package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/clippocket/internal/item"
)

// previewWidth is the number of runes of content shown per listing row.
const previewWidth = 60

var (
	indexStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ageStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	titleStyle = lipgloss.NewStyle().Bold(true)
	pinStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	keyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	typeColors = map[item.Type]lipgloss.Color{
		item.TypeText:  lipgloss.Color("252"),
		item.TypeCode:  lipgloss.Color("141"),
		item.TypeColor: lipgloss.Color("205"),
		item.TypeURL:   lipgloss.Color("39"),
		item.TypeEmail: lipgloss.Color("81"),
		item.TypePhone: lipgloss.Color("120"),
		item.TypeJSON:  lipgloss.Color("221"),
		item.TypeImage: lipgloss.Color("177"),
		item.TypeFile:  lipgloss.Color("180"),
	}
)

func typeLabel(t item.Type) string {
	return lipgloss.NewStyle().
		Foreground(typeColors[t]).
		Bold(true).
		Render(fmt.Sprintf("%-5s", t.DisplayName()))
}

// writeHistoryRow prints one history listing line.
func writeHistoryRow(w io.Writer, index int, it *item.Item, isPinned bool, now time.Time) {
	mark := " "
	if isPinned {
		mark = pinStyle.Render("*")
	}
	fmt.Fprintf(w, "%s %s %s %s  %s\n",
		indexStyle.Render(fmt.Sprintf("%3d", index)),
		mark,
		typeLabel(it.Type),
		it.Preview(previewWidth),
		ageStyle.Render(age(now, it.Timestamp)),
	)
}

// writePinnedRow prints one pinned listing line. Entries with a custom title
// show the title in bold followed by the content preview.
func writePinnedRow(w io.Writer, index int, p *item.Pinned) {
	label := p.Original.Preview(previewWidth)
	if p.CustomTitle != nil {
		label = titleStyle.Render(item.TruncateTitle(item.SanitizeTitle(p.DisplayTitle()), previewWidth/2)) +
			"  " + p.Original.Preview(previewWidth/2)
	}
	fmt.Fprintf(w, "%s %s %s\n",
		indexStyle.Render(fmt.Sprintf("%3d", index)),
		typeLabel(p.Original.Type),
		label,
	)
}

// age renders the time elapsed since t in a compact form.
func age(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
