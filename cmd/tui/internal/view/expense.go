package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ilara/internal/ledger"
)

type expenseFields struct {
	description string
	amount      string
}

type ExpenseModel struct {
	CommonModel
	ledger *ledger.Service

	form   *huh.Form
	fields *expenseFields
	saving bool
	done   bool
	status string
	err    error
}

func NewExpenseModel(ledgerSvc *ledger.Service) ExpenseModel {
	m := ExpenseModel{ledger: ledgerSvc, fields: &expenseFields{}}
	m.form = m.newForm()

	return m
}

func (m ExpenseModel) newForm() *huh.Form {
	*m.fields = expenseFields{}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(&m.fields.description),
			huh.NewInput().
				Title("Amount").
				Description("Enter the amount spent; it is stored as a negative entry.").
				Value(&m.fields.amount).
				Validate(requiredMoney),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExpenseModel) Title() string { return "Record Expense" }

func (m ExpenseModel) ShortHelp() string {
	if m.done {
		return "Enter: another expense | Esc: back"
	}

	return "Navigate form | Esc: back"
}

func (m ExpenseModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExpenseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case expenseResultMsg:
		m.saving = false
		m.done = true
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = fmt.Sprintf("Recorded expense %s: %s", msg.entry.Description, FormatMoney(msg.entry.Amount))

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.done {
			if msg.Type == tea.KeyEnter {
				m.done = false
				m.status = ""
				m.err = nil
				m.form = m.newForm()

				return m, m.form.Init()
			}

			return m, nil
		}
	}

	if m.done || m.saving {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	save := m.saveCmd()
	m.saving = true

	return m, save
}

func (m ExpenseModel) View() string {
	if m.saving {
		return lipgloss.NewStyle().Padding(2).Render("Recording expense...")
	}

	if !m.done {
		return lipgloss.NewStyle().Padding(1).Render("New expense\n\n" + m.form.View())
	}

	status := okText(m.status)
	if m.err != nil {
		status = errorText(m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(status + "\n\n(Enter for another, Esc to go back)")
}

type expenseResultMsg struct {
	entry *ledger.Entry
	err   error
}

func (m ExpenseModel) saveCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		amount, _ := ParseMoney(f.amount)

		ctx, cancel := DbCtx()
		defer cancel()

		e, err := m.ledger.RecordExpense(ctx, ledger.ExpenseParams{Description: f.description, Amount: amount})

		return expenseResultMsg{entry: e, err: err}
	}
}
