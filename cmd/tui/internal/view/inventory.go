package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
)

type inventoryState int

const (
	inventoryStateBrowse inventoryState = iota
	inventoryStateAdd
	inventoryStateEdit
	inventoryStateAdjust
	inventoryStateDelete
	// A mutation is in flight; input is ignored until its result arrives.
	inventoryStateSaving
)

// inventoryFields is shared by every copy of the model so that huh keeps
// writing into the same strings.
type inventoryFields struct {
	name     string
	brand    string
	category string
	quantity string
	cost     string
	price    string
	delta    string
	reason   string
	confirm  bool
}

type InventoryModel struct {
	CommonModel
	catalog   *catalog.Service
	pos       *pos.Service
	threshold int

	state      inventoryState
	table      table.Model
	products   []*catalog.Product
	categories []string
	form       *huh.Form
	fields     *inventoryFields
	selected   *catalog.Product

	loading bool
	err     error
	status  string
}

func NewInventoryModel(catalogSvc *catalog.Service, posSvc *pos.Service, threshold int) InventoryModel {
	return InventoryModel{
		catalog:   catalogSvc,
		pos:       posSvc,
		threshold: threshold,
		table: newTable([]table.Column{
			{Title: "Name", Width: 28},
			{Title: "Brand", Width: 16},
			{Title: "Category", Width: 12},
			{Title: "Stock", Width: 7},
			{Title: "Cost", Width: 10},
			{Title: "Price", Width: 10},
			{Title: "Margin", Width: 10},
		}),
		fields:  &inventoryFields{},
		loading: true,
	}
}

func (m InventoryModel) Title() string { return "Inventory" }

func (m InventoryModel) ShortHelp() string {
	switch m.state {
	case inventoryStateBrowse:
	case inventoryStateSaving:
		return "Saving..."
	default:
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | a: add/restock | e: edit | j: adjust | x: delete | r: refresh"
}

func (m InventoryModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InventoryModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInventoryMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.products = msg.products
		m.categories = msg.categories
		m.refreshTable()

		return m, nil

	case inventorySaveMsg:
		m.status = msg.status
		if msg.err != nil {
			m.status = errorText(fmt.Sprintf("Error: %v", msg.err))
		}

		m.state = inventoryStateBrowse
		m.form = nil
		m.table.Focus()

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case inventoryStateBrowse:
		return m.updateBrowse(msg)
	case inventoryStateSaving:
		return m, nil
	}

	return m.updateForm(msg)
}

func (m InventoryModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "a":
			return m.openForm(inventoryStateAdd)
		case "e":
			return m.openForm(inventoryStateEdit)
		case "j":
			return m.openForm(inventoryStateAdjust)
		case "x":
			return m.openForm(inventoryStateDelete)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InventoryModel) openForm(state inventoryState) (tea.Model, tea.Cmd) {
	m.selected = nil
	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.products) {
		m.selected = m.products[idx]
	}

	if state != inventoryStateAdd && m.selected == nil {
		return m, nil
	}

	*m.fields = inventoryFields{}

	var group *huh.Group

	switch state {
	case inventoryStateAdd:
		group = huh.NewGroup(
			huh.NewInput().Title("Name").Value(&m.fields.name).Validate(required("name")),
			huh.NewInput().Title("Brand").Placeholder(catalog.DefaultBrand).Value(&m.fields.brand),
			m.categorySelect(),
			huh.NewInput().Title("Quantity").Value(&m.fields.quantity).Validate(positiveInt),
			huh.NewInput().Title("Unit cost").Value(&m.fields.cost).Validate(requiredMoney),
			huh.NewInput().Title("Unit price").Value(&m.fields.price).Validate(requiredMoney),
		)
	case inventoryStateEdit:
		p := m.selected
		m.fields.name = p.Name
		m.fields.brand = p.Brand
		m.fields.category = p.Category
		m.fields.cost = FormatMoney(p.Cost)
		m.fields.price = FormatMoney(p.Price)

		// Stock is not editable here: the listed value may be stale, and
		// stock changes go through an adjustment so they carry a reason.
		group = huh.NewGroup(
			huh.NewInput().Title("Name").Value(&m.fields.name).Validate(required("name")),
			huh.NewInput().Title("Brand").Value(&m.fields.brand),
			m.categorySelect(),
			huh.NewInput().Title("Unit cost").Value(&m.fields.cost).Validate(requiredMoney),
			huh.NewInput().Title("Unit price").Value(&m.fields.price).Validate(requiredMoney),
		).Description("Use j (adjust) to change stock.")
	case inventoryStateAdjust:
		group = huh.NewGroup(
			huh.NewInput().Title("Change (e.g. -2 or 5)").Value(&m.fields.delta).Validate(nonZeroInt),
			huh.NewInput().Title("Reason").Value(&m.fields.reason).Validate(required("reason")),
		)
	case inventoryStateDelete:
		group = huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", m.selected.Label())).
				Description("Ledger entries that mention it are kept.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.fields.confirm),
		)
	}

	m.form = huh.NewForm(group).WithWidth(45).WithShowHelp(false)
	m.state = state
	m.table.Blur()

	return m, m.form.Init()
}

func (m InventoryModel) categorySelect() huh.Field {
	if len(m.categories) == 0 {
		return huh.NewInput().Title("Category").Value(&m.fields.category).Validate(required("category"))
	}

	if m.fields.category == "" {
		m.fields.category = m.categories[0]
	}

	return huh.NewSelect[string]().
		Title("Category").
		Options(huh.NewOptions(m.categories...)...).
		Value(&m.fields.category)
}

func (m InventoryModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = inventoryStateBrowse
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

	save := m.saveCmd()
	m.state = inventoryStateSaving
	m.form = nil

	return m, save
}

func (m InventoryModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading inventory...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorText(fmt.Sprintf("Error: %v", m.err)))
	}

	header := fmt.Sprintf("%d products | low stock at %s or less (marked !)",
		len(m.products), activeStyle(fmt.Sprint(m.threshold)))

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		boxed(m.table.View()),
	)

	if m.state == inventoryStateSaving {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			lipgloss.NewStyle().Padding(1, 2).Render("Saving..."))
	}

	if m.state != inventoryStateBrowse && m.form != nil {
		title := map[inventoryState]string{
			inventoryStateAdd:    "Add or restock product",
			inventoryStateEdit:   "Edit product",
			inventoryStateAdjust: "Adjust stock",
			inventoryStateDelete: "Delete product",
		}[m.state]

		if m.selected != nil && m.state != inventoryStateAdd {
			title += "\n" + lipgloss.NewStyle().Faint(true).Render(
				fmt.Sprintf("%s (in stock: %d)", m.selected.Label(), m.selected.Stock))
		}

		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render(title + "\n\n" + m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = m.status + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *InventoryModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.products))
	for _, p := range m.products {
		stock := fmt.Sprint(p.Stock)
		if p.Stock <= m.threshold {
			stock += " !"
		}

		rows = append(rows, table.Row{
			p.Name,
			p.Brand,
			p.Category,
			stock,
			FormatMoney(p.Cost),
			FormatMoney(p.Price),
			FormatMoney(p.Margin()),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInventoryMsg struct {
	products   []*catalog.Product
	categories []string
	err        error
}

func (m InventoryModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.catalog.List(ctx)
		if err != nil {
			return loadInventoryMsg{err: err}
		}

		categories, err := m.catalog.Categories(ctx)

		return loadInventoryMsg{products: products, categories: categories, err: err}
	}
}

type inventorySaveMsg struct {
	status string
	err    error
}

func (m InventoryModel) saveCmd() tea.Cmd {
	state := m.state
	f := *m.fields
	selected := m.selected

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		switch state {
		case inventoryStateAdd:
			return m.upsert(ctx, f)
		case inventoryStateEdit:
			return m.edit(ctx, selected, f)
		case inventoryStateAdjust:
			return m.adjust(ctx, selected, f)
		case inventoryStateDelete:
			if !f.confirm {
				return inventorySaveMsg{}
			}

			if err := m.catalog.Delete(ctx, selected.ID); err != nil {
				return inventorySaveMsg{err: err}
			}

			return inventorySaveMsg{status: okText("Deleted " + selected.Label())}
		}

		return inventorySaveMsg{}
	}
}

func (m InventoryModel) upsert(ctx context.Context, f inventoryFields) tea.Msg {
	qty, _ := ParseInt(f.quantity)
	cost, _ := ParseMoney(f.cost)
	price, _ := ParseMoney(f.price)

	res, err := m.catalog.Upsert(ctx, catalog.UpsertParams{
		Name:     f.name,
		Brand:    f.brand,
		Category: f.category,
		Quantity: qty,
		Cost:     cost,
		Price:    price,
	})
	if err != nil {
		return inventorySaveMsg{err: err}
	}

	if res.Created {
		return inventorySaveMsg{status: okText(fmt.Sprintf("Added %s with %d in stock", res.Product.Label(), res.NewStock))}
	}

	return inventorySaveMsg{status: okText(fmt.Sprintf("Restocked %s: %d -> %d", res.Product.Label(), res.PreviousStock, res.NewStock))}
}

func (m InventoryModel) edit(ctx context.Context, p *catalog.Product, f inventoryFields) tea.Msg {
	cost, _ := ParseMoney(f.cost)
	price, _ := ParseMoney(f.price)

	updated, err := m.catalog.Edit(ctx, catalog.EditParams{
		ID:       p.ID,
		Name:     f.name,
		Brand:    f.brand,
		Category: f.category,
		Cost:     cost,
		Price:    price,
	})
	if err != nil {
		return inventorySaveMsg{err: err}
	}

	return inventorySaveMsg{status: okText("Saved " + updated.Label())}
}

func (m InventoryModel) adjust(ctx context.Context, p *catalog.Product, f inventoryFields) tea.Msg {
	delta, _ := ParseInt(f.delta)

	res, err := m.pos.Adjust(ctx, pos.AdjustParams{ProductID: p.ID, Delta: delta, Reason: f.reason})
	if err != nil {
		return inventorySaveMsg{err: err}
	}

	return inventorySaveMsg{status: okText(fmt.Sprintf("%s: %d -> %d", res.Product.Label(), res.PreviousStock, res.NewStock))}
}

// Field validators

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}

		return nil
	}
}

func positiveInt(s string) error {
	n, err := ParseInt(s)
	if err != nil {
		return err
	}

	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}

	return nil
}

func nonZeroInt(s string) error {
	n, err := ParseInt(s)
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("cannot be zero")
	}

	return nil
}

func requiredMoney(s string) error {
	d, err := ParseMoney(s)
	if err != nil {
		return err
	}

	if d == nil {
		return fmt.Errorf("amount is required")
	}

	if d.IsNegative() {
		return fmt.Errorf("cannot be negative")
	}

	return nil
}

func optionalMoney(s string) error {
	d, err := ParseMoney(s)
	if err != nil {
		return err
	}

	if d != nil && d.IsNegative() {
		return fmt.Errorf("cannot be negative")
	}

	return nil
}
