package view

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
	"github.com/MrJamesThe3rd/ilara/internal/summary"
)

type financesState int

const (
	financesStateBrowse financesState = iota
	financesStateConfirm
	financesStateSaving
)

type FinancesModel struct {
	CommonModel
	summary *summary.Service
	pos     *pos.Service

	state     financesState
	table     table.Model
	dashboard *summary.Dashboard
	month     string
	form      *huh.Form
	confirm   *bool
	selected  *ledger.Entry

	loading bool
	err     error
	status  string
}

func NewFinancesModel(summarySvc *summary.Service, posSvc *pos.Service) FinancesModel {
	return FinancesModel{
		summary: summarySvc,
		pos:     posSvc,
		table: newTable([]table.Column{
			{Title: "Date", Width: 17},
			{Title: "Kind", Width: 11},
			{Title: "Amount", Width: 11},
			{Title: "Description", Width: 60},
		}),
		month:   summary.MonthKey(time.Now(), summarySvc.Location()),
		confirm: new(bool),
		loading: true,
	}
}

func (m FinancesModel) Title() string { return "Finances" }

func (m FinancesModel) ShortHelp() string {
	switch m.state {
	case financesStateConfirm:
		return "Esc: cancel"
	case financesStateSaving:
		return "Deleting entry..."
	}

	return "Esc: back | m: next month | x: delete entry | r: refresh"
}

func (m FinancesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m FinancesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadFinancesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.dashboard = msg.dashboard
		m.refreshTable()

		return m, nil

	case reverseResultMsg:
		m.state = financesStateBrowse
		m.form = nil
		m.table.Focus()
		m.status = reversalStatus(msg.result, msg.err)

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 12)
		return m, nil
	}

	switch m.state {
	case financesStateConfirm:
		return m.updateConfirm(msg)
	case financesStateSaving:
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "m":
			m.month = m.nextMonth()
			m.loading = true

			return m, m.loadCmd()
		case "x":
			return m.openConfirm()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

// nextMonth cycles through the months that have entries, then all time.
func (m FinancesModel) nextMonth() string {
	if m.dashboard == nil {
		return summary.AllTime
	}

	cycle := append([]string{summary.AllTime}, m.dashboard.Months...)

	for i, key := range cycle {
		if key == m.month {
			return cycle[(i+1)%len(cycle)]
		}
	}

	return summary.AllTime
}

func (m FinancesModel) openConfirm() (tea.Model, tea.Cmd) {
	if m.dashboard == nil {
		return m, nil
	}

	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.dashboard.Entries) {
		return m, nil
	}

	m.selected = m.dashboard.Entries[idx]
	*m.confirm = false

	description := "The entry is removed from the ledger."
	if m.selected.IsSale() {
		description = "The sold quantity goes back to stock."
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Delete this entry?").
				Description(description).
				Affirmative("Delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = financesStateConfirm
	m.table.Blur()

	return m, m.form.Init()
}

func (m FinancesModel) updateConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = financesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !*m.confirm {
		m.state = financesStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	reverse := m.reverseCmd(m.selected)
	m.state = financesStateSaving
	m.form = nil

	return m, reverse
}

func (m FinancesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading ledger...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(fmt.Sprintf("Error: %v", m.err)))
	}

	month := m.month
	if month == summary.AllTime {
		month = "All Time"
	}

	t := m.dashboard.Totals
	header := fmt.Sprintf("[m] Month: %s\nIncome %s | Expense %s | Net %s",
		activeStyle(month),
		okText(FormatMoney(t.Income)),
		errorText(FormatMoney(t.Expense)),
		activeStyle(FormatMoney(t.Net)),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if len(m.dashboard.LowStock) > 0 {
		names := ""
		for _, p := range m.dashboard.LowStock {
			names += fmt.Sprintf("\n  %s: %d", p.Label(), p.Stock)
		}

		content += "\n" + warnText("Low stock:"+names)
	}

	if m.state == financesStateConfirm && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(54).
			Render(m.selected.Description + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *FinancesModel) refreshTable() {
	loc := m.summary.Location()
	entries := m.dashboard.Entries

	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			FormatDate(e.CreatedAt, loc),
			string(e.Kind),
			FormatMoney(e.Amount),
			e.Description,
		})
	}

	m.table.SetRows(rows)
}

func reversalStatus(res *pos.ReversalResult, err error) string {
	if err != nil {
		if errors.Is(err, pos.ErrCompensationFailed) {
			return errorText(fmt.Sprintf("Stock and ledger are out of step, check manually: %v", err))
		}

		return errorText(fmt.Sprintf("Error: %v", err))
	}

	r := res.Restitution

	switch r.Path {
	case pos.RestitutionStructured, pos.RestitutionLegacy:
		return okText(fmt.Sprintf("Entry deleted. %d returned to stock (now %d).", r.Quantity, r.NewStock))
	case pos.RestitutionSkipped:
		return warnText(fmt.Sprintf("Entry deleted, stock not restored: %v", r.Warning))
	}

	return okText("Entry deleted.")
}

// Messages

type loadFinancesMsg struct {
	dashboard *summary.Dashboard
	err       error
}

func (m FinancesModel) loadCmd() tea.Cmd {
	month := m.month

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		d, err := m.summary.Dashboard(ctx, month)

		return loadFinancesMsg{dashboard: d, err: err}
	}
}

type reverseResultMsg struct {
	result *pos.ReversalResult
	err    error
}

func (m FinancesModel) reverseCmd(e *ledger.Entry) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.pos.Reverse(ctx, e.ID)

		return reverseResultMsg{result: res, err: err}
	}
}
