package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jobdeck/internal/model"
	"jobdeck/internal/queue"
)

var (
	dashTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dashMutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dashErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	dashOKStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dashWarnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	dashPanelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	dashSelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Bold(true)
	dashMarkedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
)

func (m dashModel) View() string {
	if m.width <= 0 {
		m.width = 110
	}
	if m.height <= 0 {
		m.height = 32
	}

	switch m.mode {
	case dashModeConfirm:
		return m.viewConfirm()
	case dashModeStats:
		return m.viewStats()
	default:
		return m.viewBrowse()
	}
}

func (m dashModel) viewBrowse() string {
	rows := m.visibleRows()
	page := m.pageRows(rows)

	header := m.renderHeader(len(rows))
	filters := m.renderFilterLine()
	table := m.renderTable(page)
	footer := m.renderFooter()
	status := m.renderStatusLine()

	return lipgloss.JoinVertical(lipgloss.Left, header, filters, table, footer, status)
}

func (m dashModel) renderHeader(visible int) string {
	title := dashTitleStyle.Render("jobdeck")

	parts := []string{fmt.Sprintf("%d/%d jobs", visible, len(m.store.Current().Jobs))}
	if m.store.Refreshing() {
		parts = append(parts, m.spin.View()+"refreshing")
	} else if !m.store.Current().ReceivedAt.IsZero() {
		parts = append(parts, "as of "+m.store.Current().ReceivedAt.Format("15:04:05"))
	}
	if m.rate != nil {
		parts = append(parts, fmt.Sprintf("rate %d left", m.rate.Remaining))
	}
	if m.selection.Count() > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", m.selection.Count()))
	}
	line := title + "  " + dashMutedStyle.Render(strings.Join(parts, " | "))

	if m.store.LastError() != nil {
		line += "  " + dashWarnStyle.Render("stale: refresh failing")
	}
	if m.rec.Dirty() {
		line += "  " + dashWarnStyle.Render("unsaved order (w save, x discard)")
	}
	return line
}

func (m dashModel) renderFilterLine() string {
	if m.mode == dashModeSearch || m.search.Value() != "" {
		return m.search.View()
	}

	parts := []string{}
	if len(m.criteria.Owners) > 0 {
		parts = append(parts, "owner="+strings.Join(setToSorted(m.criteria.Owners), ","))
	}
	if len(m.criteria.Statuses) > 0 {
		parts = append(parts, "status="+strings.Join(setToSorted(m.criteria.Statuses), ","))
	}
	if len(m.criteria.Priorities) > 0 {
		prios := []string{}
		for p := 1; p <= 5; p++ {
			if m.criteria.Priorities[p] {
				prios = append(prios, fmt.Sprintf("%d", p))
			}
		}
		parts = append(parts, "prio="+strings.Join(prios, ","))
	}
	if m.criteria.HideCompleted {
		parts = append(parts, "hide-completed")
	}
	sortLabel := "sort=" + string(m.sortKey)
	if m.sortKey != queue.SortManual && m.sortDesc {
		sortLabel += " desc"
	}
	parts = append(parts, sortLabel)
	if !m.rec.Enabled() {
		parts = append(parts, "reorder off")
	}
	return dashMutedStyle.Render(strings.Join(parts, " | "))
}

func (m dashModel) renderTable(page []queue.Row) string {
	if !m.store.Loaded() {
		if m.store.LastError() != nil {
			return dashErrorStyle.Render("cannot reach backend: " + m.store.LastError().Error())
		}
		return dashMutedStyle.Render(m.spin.View() + "loading jobs...")
	}
	if len(page) == 0 {
		return dashMutedStyle.Render("no jobs match the current filters (F clears them)")
	}

	nameW := clampInt(m.width-74, 16, 48)
	lines := make([]string, 0, len(page)+1)
	head := fmt.Sprintf("    %-*s  %-12s  %-9s  %-6s  %-16s  %s",
		nameW, "NAME", "OWNER", "STATUS", "PRIO", "PROGRESS", "CREATED")
	lines = append(lines, dashMutedStyle.Render(head))

	for i, row := range page {
		mark := "  "
		if m.selection.Has(row.Job.ID) {
			mark = dashMarkedStyle.Render("* ")
		}
		prio := fmt.Sprintf("%d", row.Priority)
		if row.Overridden {
			prio += "~" // optimistic, not yet confirmed by a snapshot
		}
		line := fmt.Sprintf("%s  %-*s  %-12s  %-9s  %-6s  %-16s  %s",
			mark,
			nameW, truncateRunes(row.Job.Name, nameW),
			truncateRunes(row.Job.Owner, 12),
			model.StatusLabel(row.Job.Status),
			prio,
			renderProgress(row),
			createdDate(row.Job.CreatedAt),
		)
		if i == m.cursor {
			line = dashSelStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderProgress(row queue.Row) string {
	if row.HasProgress {
		p := row.Progress
		s := fmt.Sprintf("%d/%d", p.Done, p.Total)
		if p.Error > 0 {
			s += fmt.Sprintf(" (%d err)", p.Error)
		}
		return s
	}
	if row.Job.TotalUnits > 0 {
		return fmt.Sprintf("%d/%d", row.Job.ProcessedUnits, row.Job.TotalUnits)
	}
	return "-"
}

func createdDate(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func (m dashModel) renderFooter() string {
	pages := ""
	if m.pager.TotalPages > 1 {
		pages = m.pager.View() + "  "
	}
	hints := "j/k move | h/l page | / search | space sel | J/K/t reorder | +/- prio | P/R/C/D/Z/z act | enter stats | e export | q quit"
	return pages + dashMutedStyle.Render(hints)
}

func (m dashModel) renderStatusLine() string {
	if m.statusMessage == "" {
		return ""
	}
	if strings.HasPrefix(m.statusMessage, "error:") {
		return dashErrorStyle.Render(m.statusMessage)
	}
	return dashOKStyle.Render(m.statusMessage)
}

func (m dashModel) viewConfirm() string {
	lines := []string{
		dashTitleStyle.Render(fmt.Sprintf("Delete %d job(s)?", len(m.confirmIDs))),
		"",
	}
	shown := m.confirmIDs
	if len(shown) > 8 {
		shown = shown[:8]
	}
	byID := map[string]model.Job{}
	for _, j := range m.store.Current().Jobs {
		byID[j.ID] = j
	}
	for _, id := range shown {
		name := id
		if j, ok := byID[id]; ok {
			name = j.Name
		}
		lines = append(lines, "  - "+truncateRunes(name, 50))
	}
	if len(m.confirmIDs) > len(shown) {
		lines = append(lines, dashMutedStyle.Render(fmt.Sprintf("  ... and %d more", len(m.confirmIDs)-len(shown))))
	}
	lines = append(lines, "", dashMutedStyle.Render("y: delete | n/esc: cancel"))

	panel := dashPanelStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

func (m dashModel) viewStats() string {
	lines := []string{
		dashTitleStyle.Render("stats: " + truncateRunes(m.statsName, 50)),
		dashMutedStyle.Render(m.statsJobID),
		"",
	}
	switch {
	case m.statsErr != "":
		lines = append(lines, dashErrorStyle.Render("failed: "+m.statsErr), dashMutedStyle.Render("r retries"))
	case !m.statsLoaded:
		lines = append(lines, m.spin.View()+"loading...")
	default:
		lines = append(lines,
			fmt.Sprintf("cost:    $%.2f", m.stats.CostUSD),
			fmt.Sprintf("elapsed: %s", formatElapsed(m.stats.ElapsedSeconds)),
			"")
		if len(m.stats.Domains) == 0 {
			lines = append(lines, dashMutedStyle.Render("no per-domain data"))
		} else {
			lines = append(lines, dashMutedStyle.Render(fmt.Sprintf("%-28s  %s", "DOMAIN", "DONE/TOTAL")))
			for _, d := range m.stats.Domains {
				lines = append(lines, fmt.Sprintf("%-28s  %d/%d", truncateRunes(d.Domain, 28), d.Done, d.Total))
			}
		}
	}
	lines = append(lines, "", dashMutedStyle.Render("esc/enter: back | r: reload"))

	panel := dashPanelStyle.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, panel)
}

func formatElapsed(seconds float64) string {
	s := int(seconds)
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	if s < 3600 {
		return fmt.Sprintf("%dm%02ds", s/60, s%60)
	}
	return fmt.Sprintf("%dh%02dm", s/3600, (s%3600)/60)
}
