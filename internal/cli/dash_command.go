package cli

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"jobdeck/internal/api"
	"jobdeck/internal/config"
	"jobdeck/internal/model"
	"jobdeck/internal/prefs"
	"jobdeck/internal/queue"
)

type dashMode int

const (
	dashModeBrowse dashMode = iota
	dashModeSearch
	dashModeConfirm
	dashModeStats
)

var pageSizes = []int{10, 20, 50, 100}

type dashModel struct {
	cfg       config.Config
	client    *api.Client
	log       *slog.Logger
	prefsPath string
	settings  prefs.Settings

	store     *queue.Store
	rec       *queue.Reconciler
	poller    *queue.Poller
	overrides *queue.Overrides
	selection *queue.Selection

	criteria queue.Criteria
	sortKey  queue.SortKey
	sortDesc bool
	pageSize int

	pager  paginator.Model
	search textinput.Model
	spin   spinner.Model

	cursor     int
	mode       dashMode
	confirmIDs []string

	// Stats fetches are guarded by a sequence number: only the response
	// matching the latest request is applied, which stands in for true
	// network cancellation.
	statsSeq    int
	statsJobID  string
	statsName   string
	stats       model.JobStats
	statsLoaded bool
	statsErr    string

	exportID  string
	exportURL string

	rate          *api.RateLimit
	statusMessage string
	width         int
	height        int
}

func runDash(args []string) error {
	fs := flag.NewFlagSet("dash", flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("dash requires an interactive terminal (TTY)")
	}

	cfg := config.Load()
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel, true)
	defer func() { _ = cleanup() }()

	prefsPath := prefs.DefaultPath()
	settings := prefs.Load(prefsPath)

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "name owner status 2026-08  (a|b means a OR b)"
	search.CharLimit = 256

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	pager := paginator.New()
	pager.Type = paginator.Dots
	pager.PerPage = settings.PageSize

	m := dashModel{
		cfg:       cfg,
		client:    api.NewClient(cfg, logger),
		log:       logger,
		prefsPath: prefsPath,
		settings:  settings,
		store:     queue.NewStore(),
		rec:       queue.NewReconciler(),
		poller:    queue.NewPoller(cfg.ProgressBatchSize),
		overrides: queue.NewOverrides(),
		selection: queue.NewSelection(),
		criteria:  criteriaFromSettings(settings),
		sortKey:   queue.SortManual,
		pageSize:  settings.PageSize,
		pager:     pager,
		search:    search,
		spin:      spin,
	}
	m.rec.SetEnabled(queue.ReorderEnabled(m.criteria, m.sortKey))

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func criteriaFromSettings(s prefs.Settings) queue.Criteria {
	c := queue.NewCriteria()
	for _, o := range s.Owners {
		c.Owners[o] = true
	}
	for _, st := range s.Statuses {
		c.Statuses[st] = true
	}
	for _, p := range s.Priorities {
		c.Priorities[p] = true
	}
	c.HideCompleted = s.HideCompleted
	return c
}

func (m *dashModel) persistPrefs() {
	if m.prefsPath == "" {
		return
	}
	m.settings.Owners = setToSorted(m.criteria.Owners)
	m.settings.Statuses = setToSorted(m.criteria.Statuses)
	prios := make([]int, 0, len(m.criteria.Priorities))
	for p := range m.criteria.Priorities {
		prios = append(prios, p)
	}
	sort.Ints(prios)
	m.settings.Priorities = prios
	m.settings.HideCompleted = m.criteria.HideCompleted
	m.settings.PageSize = m.pageSize

	if err := prefs.Save(m.prefsPath, m.settings); err != nil {
		m.log.Warn("persist settings failed", "error", err)
	}
}

func setToSorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m dashModel) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		fetchSnapshotCmd(m.client, m.cfg.RequestTimeout),
		snapshotTickCmd(m.cfg.SnapshotInterval),
		progressTickCmd(m.cfg.ProgressInterval),
	)
}

// visibleRows builds the merged view: snapshot truth with overlays, then
// filter, then working order (manual) or the sort projector.
func (m dashModel) visibleRows() []queue.Row {
	rows := queue.BuildRows(m.store.Current().Jobs, m.overrides, m.poller.Overlay())
	rows = queue.Filter(rows, m.criteria)
	if m.sortKey == queue.SortManual {
		return queue.ArrangeByOrder(rows, m.rec.OrderedIDs())
	}
	return queue.SortRows(rows, m.sortKey, m.sortDesc)
}

func (m dashModel) pageRows(rows []queue.Row) []queue.Row {
	start, end := m.pager.GetSliceBounds(len(rows))
	return rows[start:end]
}

// syncView recomputes derived state after anything that changes the
// effective view: pager bounds, cursor clamp, reorder enablement, and
// selection invalidation against the universe signature.
func (m *dashModel) syncView() {
	rows := m.visibleRows()
	m.pager.PerPage = m.pageSize
	m.pager.SetTotalPages(len(rows))
	if m.pager.Page >= m.pager.TotalPages {
		m.pager.Page = m.pager.TotalPages - 1
	}
	if m.pager.Page < 0 {
		m.pager.Page = 0
	}
	page := m.pageRows(rows)
	if m.cursor > len(page)-1 {
		m.cursor = len(page) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.rec.SetEnabled(queue.ReorderEnabled(m.criteria, m.sortKey))
	if m.selection.Sync(queue.UniverseSignature(queue.RowIDs(rows), m.pageSize, m.criteria)) {
		m.log.Debug("selection reset", "reason", "view universe changed")
	}
}

// applyCriteriaChange handles the dirty-order rule: activating any filter
// (or search text) discards pending manual moves, since dragging over a
// partial view is ambiguous.
func (m *dashModel) applyCriteriaChange() {
	if m.criteria.Active() && m.rec.Dirty() {
		m.rec.Discard(m.store.IDs())
		m.statusMessage = "pending reorder discarded (filter active)"
	}
	m.syncView()
	m.persistPrefs()
}

func (m dashModel) cursorRow() (queue.Row, bool) {
	page := m.pageRows(m.visibleRows())
	if m.cursor < 0 || m.cursor >= len(page) {
		return queue.Row{}, false
	}
	return page[m.cursor], true
}

func (m dashModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.search.Width = clampInt(m.width-10, 20, 120)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case snapshotTickMsg:
		m.store.SetRefreshing(true)
		return m, tea.Batch(
			fetchSnapshotCmd(m.client, m.cfg.RequestTimeout),
			snapshotTickCmd(m.cfg.SnapshotInterval),
		)

	case snapshotMsg:
		if msg.err != nil {
			m.store.ApplyError(msg.err)
			m.statusMessage = "error: refresh failed, showing last data"
			m.log.Warn("snapshot refresh failed", "error", msg.err)
			return m, nil
		}
		m.store.Apply(msg.jobs, time.Now())
		m.rate = msg.rate
		m.overrides.ConfirmFromSnapshot(msg.jobs)
		m.rec.ApplySnapshot(m.store.IDs())
		m.syncView()
		return m, nil

	case progressTickMsg:
		active := queue.ActiveIDs(m.visibleRows())
		batch := m.poller.NextBatch(active)
		cmds := []tea.Cmd{progressTickCmd(m.cfg.ProgressInterval)}
		if len(batch) > 0 {
			cmds = append(cmds, fetchProgressCmd(m.client, batch, m.cfg.RequestTimeout))
		}
		return m, tea.Batch(cmds...)

	case progressResultMsg:
		m.poller.Merge(msg.results)
		m.poller.Evict(queue.ActiveIDs(m.visibleRows()))
		return m, nil

	case orderSavedMsg:
		if msg.err != nil {
			// Dirty state stays put so the user can retry without
			// redoing the drag.
			m.statusMessage = "error: reorder save failed: " + msg.err.Error()
			m.log.Warn("reorder save failed", "error", msg.err)
			return m, nil
		}
		m.rec.MarkSaved(msg.ids)
		m.statusMessage = "queue order saved"
		return m, nil

	case priorityResultMsg:
		if msg.err != nil {
			m.overrides.Remove(msg.id)
			m.statusMessage = "error: priority update failed: " + msg.err.Error()
			m.log.Warn("priority update failed", "job", msg.id, "error", msg.err)
			m.syncView()
			return m, nil
		}
		m.statusMessage = fmt.Sprintf("priority set to %d", msg.priority)
		return m, nil

	case bulkResultMsg:
		if msg.action == model.ActionDelete {
			m.selection.Clear()
		}
		if msg.failed > 0 {
			m.statusMessage = fmt.Sprintf("error: %s: %d/%d failed: %s", msg.action, msg.failed, msg.attempted, msg.firstErr)
		} else {
			m.statusMessage = fmt.Sprintf("%s: %d job(s) done", msg.action, msg.attempted)
		}
		m.store.SetRefreshing(true)
		return m, fetchSnapshotCmd(m.client, m.cfg.RequestTimeout)

	case statsResultMsg:
		if msg.seq != m.statsSeq {
			return m, nil // stale response, a newer fetch is in flight
		}
		if msg.err != nil {
			m.statsErr = msg.err.Error()
			m.statsLoaded = false
			return m, nil
		}
		m.stats = msg.stats
		m.statsLoaded = true
		m.statsErr = ""
		return m, nil

	case exportCreatedMsg:
		if msg.err != nil {
			m.statusMessage = "error: export failed: " + msg.err.Error()
			return m, nil
		}
		m.exportID = msg.exp.ID
		m.exportURL = ""
		m.statusMessage = "export created, waiting..."
		return m, exportTickCmd(2 * time.Second)

	case exportTickMsg:
		if m.exportID == "" {
			return m, nil
		}
		return m, exportStatusCmd(m.client, m.exportID, m.cfg.RequestTimeout)

	case exportStatusMsg:
		if msg.err != nil {
			m.statusMessage = "error: export status failed: " + msg.err.Error()
			m.exportID = ""
			return m, nil
		}
		switch msg.exp.Status {
		case model.ExportStatusCreating:
			return m, exportTickCmd(2 * time.Second)
		case model.ExportStatusReady:
			m.exportURL = m.client.ExportDownloadURL(msg.exp.ID)
			m.statusMessage = "export ready: " + m.exportURL
		default:
			m.statusMessage = "error: export finished in state " + msg.exp.Status
		}
		m.exportID = ""
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch m.mode {
	case dashModeSearch:
		return m.updateSearch(keyMsg)
	case dashModeConfirm:
		return m.updateConfirm(keyMsg)
	case dashModeStats:
		return m.updateStats(keyMsg)
	default:
		return m.updateBrowse(keyMsg)
	}
}

func (m dashModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.visibleRows()
	page := m.pageRows(rows)

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(page)-1 {
			m.cursor++
		}
		return m, nil
	case "left", "h":
		m.pager.PrevPage()
		m.cursor = 0
		return m, nil
	case "right", "l":
		m.pager.NextPage()
		m.cursor = 0
		return m, nil

	case "/":
		m.mode = dashModeSearch
		m.search.Focus()
		return m, textinput.Blink

	case " ", "space":
		if row, ok := m.cursorRow(); ok {
			m.selection.Toggle(row.Job.ID)
		}
		return m, nil
	case "a":
		m.selection.SelectAll(queue.RowIDs(page))
		return m, nil
	case "A":
		m.selection.Clear()
		return m, nil

	case "H":
		m.criteria.HideCompleted = !m.criteria.HideCompleted
		m.applyCriteriaChange()
		return m, nil
	case "1", "2", "3", "4", "5":
		p, _ := strconv.Atoi(msg.String())
		if m.criteria.Priorities[p] {
			delete(m.criteria.Priorities, p)
		} else {
			m.criteria.Priorities[p] = true
		}
		m.applyCriteriaChange()
		return m, nil
	case "o":
		m.cycleOwnerFilter()
		m.applyCriteriaChange()
		return m, nil
	case "F":
		m.criteria = queue.NewCriteria()
		m.search.SetValue("")
		m.applyCriteriaChange()
		return m, nil

	case "s":
		m.sortKey = nextSortKey(m.sortKey)
		m.syncView()
		return m, nil
	case "S":
		m.sortDesc = !m.sortDesc
		m.syncView()
		return m, nil

	case "[", "]":
		m.cyclePageSize(msg.String() == "]")
		m.syncView()
		m.persistPrefs()
		return m, nil

	case "K":
		if row, ok := m.cursorRow(); ok && m.rec.Enabled() {
			m.rec.MoveUp(row.Job.ID)
			if m.cursor > 0 {
				m.cursor--
			}
			m.syncView()
		}
		return m, nil
	case "J":
		if row, ok := m.cursorRow(); ok && m.rec.Enabled() {
			m.rec.MoveDown(row.Job.ID)
			if m.cursor < len(page)-1 {
				m.cursor++
			}
			m.syncView()
		}
		return m, nil
	case "t":
		// Compound: local move, immediate order persist, independent
		// top-priority update. Failures surface separately and never roll
		// each other back.
		row, ok := m.cursorRow()
		if !ok || !m.rec.Enabled() {
			return m, nil
		}
		m.rec.MoveToTop(row.Job.ID)
		m.overrides.Set(row.Job.ID, model.PriorityHighest)
		m.cursor = 0
		m.pager.Page = 0
		m.syncView()
		return m, tea.Batch(
			saveOrderCmd(m.client, m.rec.OrderedIDs(), m.cfg.RequestTimeout),
			priorityCmd(m.client, row.Job.ID, model.PriorityHighest, m.cfg.RequestTimeout),
		)

	case "w":
		if !m.rec.Dirty() {
			m.statusMessage = "queue order has no unsaved changes"
			return m, nil
		}
		return m, saveOrderCmd(m.client, m.rec.OrderedIDs(), m.cfg.RequestTimeout)
	case "x":
		if m.rec.Dirty() {
			m.rec.Discard(m.store.IDs())
			m.statusMessage = "pending reorder discarded"
			m.syncView()
		}
		return m, nil

	case "+", "=", "-", "_":
		row, ok := m.cursorRow()
		if !ok {
			return m, nil
		}
		target := row.Priority + 1 // lower urgency
		if msg.String() == "+" || msg.String() == "=" {
			target = row.Priority - 1 // higher urgency
		}
		target = model.ClampPriority(target)
		if target == row.Priority {
			return m, nil
		}
		m.overrides.Set(row.Job.ID, target)
		m.syncView()
		return m, priorityCmd(m.client, row.Job.ID, target, m.cfg.RequestTimeout)

	case "P":
		return m.dispatchBulk(model.ActionPause)
	case "R":
		return m.dispatchBulk(model.ActionResume)
	case "C":
		return m.dispatchBulk(model.ActionCancel)
	case "Z":
		return m.dispatchBulk(model.ActionReset)
	case "z":
		return m.dispatchBulk(model.ActionResetFailed)
	case "D":
		targets := queue.EligibleTargets(model.ActionDelete, m.selection.Set(), m.store.Current().Jobs)
		if len(targets) == 0 {
			m.statusMessage = "no deletable jobs selected"
			return m, nil
		}
		m.confirmIDs = targets
		m.mode = dashModeConfirm
		return m, nil

	case "enter":
		row, ok := m.cursorRow()
		if !ok {
			return m, nil
		}
		m.statsSeq++
		m.statsJobID = row.Job.ID
		m.statsName = row.Job.Name
		m.statsLoaded = false
		m.statsErr = ""
		m.mode = dashModeStats
		return m, statsCmd(m.client, row.Job.ID, m.statsSeq, m.cfg.RequestTimeout)

	case "e":
		return m, createExportCmd(m.client, m.settings.RenameHistory, m.cfg.RequestTimeout)

	case "r":
		m.store.SetRefreshing(true)
		return m, fetchSnapshotCmd(m.client, m.cfg.RequestTimeout)
	}
	return m, nil
}

func (m dashModel) dispatchBulk(action model.Action) (tea.Model, tea.Cmd) {
	targets := queue.EligibleTargets(action, m.selection.Set(), m.store.Current().Jobs)
	if len(targets) == 0 {
		m.statusMessage = fmt.Sprintf("no selected jobs eligible for %s", action)
		return m, nil
	}
	m.statusMessage = fmt.Sprintf("%s: dispatching %d job(s)...", action, len(targets))
	return m, bulkCmd(m.client, action, targets, m.cfg.RequestTimeout)
}

func (m dashModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "enter":
		m.mode = dashModeBrowse
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.criteria.Query {
		m.criteria.Query = m.search.Value()
		m.applyCriteriaChange()
	}
	return m, cmd
}

func (m dashModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "n":
		m.mode = dashModeBrowse
		m.confirmIDs = nil
		m.statusMessage = "delete cancelled"
		return m, nil
	case "y", "enter":
		targets := m.confirmIDs
		m.mode = dashModeBrowse
		m.confirmIDs = nil
		m.statusMessage = fmt.Sprintf("delete: dispatching %d job(s)...", len(targets))
		return m, bulkCmd(m.client, model.ActionDelete, targets, m.cfg.RequestTimeout)
	}
	return m, nil
}

func (m dashModel) updateStats(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "enter":
		m.mode = dashModeBrowse
		return m, nil
	case "r":
		m.statsSeq++
		m.statsLoaded = false
		return m, statsCmd(m.client, m.statsJobID, m.statsSeq, m.cfg.RequestTimeout)
	}
	return m, nil
}

func (m *dashModel) cycleOwnerFilter() {
	owners := distinctOwners(m.store.Current().Jobs)
	if len(owners) == 0 {
		return
	}
	current := ""
	if len(m.criteria.Owners) == 1 {
		for o := range m.criteria.Owners {
			current = o
		}
	}
	next := ""
	if current == "" {
		next = owners[0]
	} else {
		for i, o := range owners {
			if o == current && i+1 < len(owners) {
				next = owners[i+1]
				break
			}
		}
	}
	m.criteria.Owners = map[string]bool{}
	if next != "" {
		m.criteria.Owners[next] = true
	}
}

func distinctOwners(jobs []model.Job) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, j := range jobs {
		o := strings.TrimSpace(j.Owner)
		if o != "" && !seen[o] {
			seen[o] = true
			out = append(out, o)
		}
	}
	sort.Strings(out)
	return out
}

func nextSortKey(key queue.SortKey) queue.SortKey {
	for i, k := range queue.SortKeys {
		if k == key {
			return queue.SortKeys[(i+1)%len(queue.SortKeys)]
		}
	}
	return queue.SortManual
}

func (m *dashModel) cyclePageSize(up bool) {
	idx := 0
	for i, s := range pageSizes {
		if s == m.pageSize {
			idx = i
			break
		}
	}
	if up && idx+1 < len(pageSizes) {
		idx++
	}
	if !up && idx > 0 {
		idx--
	}
	m.pageSize = pageSizes[idx]
}
