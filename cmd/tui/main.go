package main

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/ilara/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/ilara/internal/app"
	"github.com/MrJamesThe3rd/ilara/internal/config"
)

type model struct {
	app *app.App

	currentView View

	inventoryView view.InventoryModel
	saleView      view.SaleModel
	expenseView   view.ExpenseModel
	financesView  view.FinancesModel
	importView    view.ImportModel
}

type View int

const (
	ViewMenu      View = 0
	ViewInventory View = 1
	ViewSale      View = 2
	ViewExpense   View = 3
	ViewFinances  View = 4
	ViewImport    View = 5
)

func initialModel(a *app.App) model {
	return model{
		app:         a,
		currentView: ViewMenu,
		importView:  view.NewImportModel(a.Importer),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewInventory
				m.inventoryView = view.NewInventoryModel(m.app.Catalog, m.app.POS, m.app.Summary.Threshold())

				return m, m.inventoryView.Init()
			case "2":
				m.currentView = ViewSale
				m.saleView = view.NewSaleModel(m.app.Catalog, m.app.POS)

				return m, m.saleView.Init()
			case "3":
				m.currentView = ViewExpense
				m.expenseView = view.NewExpenseModel(m.app.Ledger)

				return m, m.expenseView.Init()
			case "4":
				m.currentView = ViewFinances
				m.financesView = view.NewFinancesModel(m.app.Summary, m.app.POS)

				return m, m.financesView.Init()
			case "5":
				m.currentView = ViewImport
				return m, m.importView.Init()
			}
		}

		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewInventory:
		var newModel tea.Model
		newModel, cmd = m.inventoryView.Update(msg)
		m.inventoryView = newModel.(view.InventoryModel)
	case ViewSale:
		var newModel tea.Model
		newModel, cmd = m.saleView.Update(msg)
		m.saleView = newModel.(view.SaleModel)
	case ViewExpense:
		var newModel tea.Model
		newModel, cmd = m.expenseView.Update(msg)
		m.expenseView = newModel.(view.ExpenseModel)
	case ViewFinances:
		var newModel tea.Model
		newModel, cmd = m.financesView.Update(msg)
		m.financesView = newModel.(view.FinancesModel)
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			m.app.Config.App.Name + "\n\n" +
				"1. Inventory\n" +
				"2. Record Sale\n" +
				"3. Record Expense\n" +
				"4. Finances\n" +
				"5. Import Legacy Data\n\n" +
				"q. Quit",
		)
	case ViewInventory:
		return m.inventoryView.View()
	case ViewSale:
		return m.saleView.View()
	case ViewExpense:
		return m.expenseView.View()
	case ViewFinances:
		return m.financesView.View()
	case ViewImport:
		return m.importView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logOut, closeLog, err := app.LogFile(cfg)
	if err != nil {
		slog.Error("failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	// The terminal belongs to the UI from here on.
	slog.SetDefault(app.NewLogger(cfg, logOut))

	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		a.Close()
		os.Exit(1)
	}
}
