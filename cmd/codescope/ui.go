package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"codescope/internal/analysis"
	"codescope/internal/patterns"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	findingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	summary    *analysis.ProjectSummary
	lastUpdate time.Time
}

type updateMsg struct {
	summary *analysis.ProjectSummary
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case updateMsg:
		m.summary = msg.summary
		m.lastUpdate = time.Now()
		m.list.SetItems(summaryItems(msg.summary))
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func summaryItems(s *analysis.ProjectSummary) []list.Item {
	if s == nil {
		return nil
	}
	items := []list.Item{}
	for _, c := range s.Cycles {
		items = append(items, item{
			title: "Import Cycle",
			desc:  strings.Join(c, " -> "),
		})
	}
	for _, h := range s.Hotspots {
		desc := h.File
		if len(h.Reasons) > 0 {
			desc = fmt.Sprintf("%s: %s", h.File, h.Reasons[0])
		}
		items = append(items, item{
			title: fmt.Sprintf("Hotspot (score %d)", h.Score),
			desc:  desc,
		})
	}
	for _, f := range s.Files {
		for _, finding := range f.Findings {
			if finding.Severity == patterns.SeverityInfo {
				continue
			}
			items = append(items, item{
				title: fmt.Sprintf("%s [%s]", finding.Rule, finding.Severity),
				desc:  fmt.Sprintf("%s:%d %s", finding.File, finding.Line, finding.Message),
			})
		}
	}
	for _, d := range s.Duplicates {
		items = append(items, item{
			title: fmt.Sprintf("Duplicate logic [%s]", d.Severity),
			desc:  fmt.Sprintf("%d lines in %d places", d.Lines, len(d.Locations)),
		})
	}
	return items
}

func (m model) View() string {
	var fileCount, cycleCount, hotspotCount int
	if m.summary != nil {
		fileCount = m.summary.Totals.Files
		cycleCount = len(m.summary.Cycles)
		hotspotCount = len(m.summary.Hotspots)
	}

	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d files",
		m.lastUpdate.Format("15:04:05"), fileCount))

	var verdict string
	if cycleCount == 0 && hotspotCount == 0 {
		verdict = successStyle.Render("✅ Structure Clean")
	} else {
		verdict = fmt.Sprintf("⚠️  %s | %s",
			cycleStyle.Render(fmt.Sprintf("%d Cycles", cycleCount)),
			findingStyle.Render(fmt.Sprintf("%d Hotspots", hotspotCount)))
	}

	header := fmt.Sprintf("%s\n%s | %s\n", titleStyle("Code Structure Monitor"), status, verdict)
	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel() model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Findings"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		list:       l,
		lastUpdate: time.Now(),
	}
}
