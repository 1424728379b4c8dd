package components

import (
	"strings"

	"github.com/theirongolddev/cbudget/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Budget", Key: 'b', KeyPos: 0},
	{Name: "Categories", Key: 'c', KeyPos: 0},
	{Name: "History", Key: 'h', KeyPos: 0},
	{Name: "Settings", Key: 'x', KeyPos: -1}, // x is not in "Settings"
}

const tabPadding = 1

// tabLabel renders the text of one tab without padding.
func tabLabel(tab Tab, active bool) string {
	t := theme.Active

	if active {
		return lipgloss.NewStyle().
			Foreground(t.AccentBright).
			Background(t.SurfaceHover).
			Bold(true).
			Render(tab.Name)
	}

	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimKeyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		before := tab.Name[:tab.KeyPos]
		key := string(tab.Name[tab.KeyPos])
		after := tab.Name[tab.KeyPos+1:]
		return inactiveStyle.Render(before) +
			dimKeyStyle.Render("[") + keyStyle.Render(key) + dimKeyStyle.Render("]") +
			inactiveStyle.Render(after)
	}
	return inactiveStyle.Render(tab.Name) +
		dimKeyStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimKeyStyle.Render("]")
}

// TabVisualWidth returns the rendered width of a tab including padding.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(tabLabel(tab, active)) + 2*tabPadding
}

// RenderTabBar renders the tab bar with the given active index.
// The first line holds the tabs, the second an accent rule.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	padStyle := lipgloss.NewStyle().Background(t.Surface)
	activePad := lipgloss.NewStyle().Background(t.SurfaceHover)
	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	pad := strings.Repeat(" ", tabPadding)
	var parts []string
	for i, tab := range Tabs {
		active := i == activeIdx
		ps := padStyle
		if active {
			ps = activePad
		}
		parts = append(parts, ps.Render(pad)+tabLabel(tab, active)+ps.Render(pad))
	}

	row := strings.Join(parts, sepStyle.Render("│"))
	row = lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)

	rule := lipgloss.NewStyle().
		Foreground(t.Border).
		Background(t.Surface).
		Width(width).
		Render(strings.Repeat("─", width))

	return row + "\n" + rule
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
