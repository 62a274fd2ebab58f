package view

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
)

type saleState int

const (
	saleStateLoading saleState = iota
	saleStateForm
	saleStateSaving
	saleStateResult
)

type saleFields struct {
	productID string
	quantity  string
	charged   string
	payment   string
	note      string
}

type SaleModel struct {
	CommonModel
	catalog *catalog.Service
	pos     *pos.Service

	state    saleState
	products []*catalog.Product
	form     *huh.Form
	fields   *saleFields

	status string
	err    error
}

func NewSaleModel(catalogSvc *catalog.Service, posSvc *pos.Service) SaleModel {
	return SaleModel{catalog: catalogSvc, pos: posSvc, fields: &saleFields{}}
}

func (m SaleModel) Title() string { return "Record Sale" }

func (m SaleModel) ShortHelp() string {
	if m.state == saleStateResult {
		return "Enter: another sale | Esc: back"
	}

	return "Navigate form | Esc: back"
}

func (m SaleModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m SaleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadSaleProductsMsg:
		if msg.err != nil {
			m.state = saleStateResult
			m.err = msg.err
			m.status = fmt.Sprintf("Error: %v", msg.err)

			return m, nil
		}

		m.products = msg.products

		return m.openForm()

	case saleResultMsg:
		m.state = saleStateResult
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		r := msg.result
		m.status = fmt.Sprintf("Sold %d x %s for %s (%s). Stock %d -> %d.",
			r.Entry.Sale.Quantity, r.Product.Label(), FormatMoney(r.Entry.Amount),
			r.Entry.Sale.PaymentMethod, r.PreviousStock, r.NewStock)

		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m, Back
		}

		if m.state == saleStateResult {
			if msg.Type == tea.KeyEnter {
				m.state = saleStateLoading
				m.err = nil
				m.status = ""

				return m, m.loadCmd()
			}

			return m, nil
		}
	}

	if m.state != saleStateForm || m.form == nil {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	sell := m.sellCmd()
	m.state = saleStateSaving
	m.form = nil

	return m, sell
}

func (m SaleModel) openForm() (tea.Model, tea.Cmd) {
	var options []huh.Option[string]

	for _, p := range m.products {
		if p.Stock < 1 {
			continue
		}

		label := fmt.Sprintf("%s (stock %d, %s)", p.Label(), p.Stock, FormatMoney(p.Price))
		options = append(options, huh.NewOption(label, p.ID.String()))
	}

	if len(options) == 0 {
		m.state = saleStateResult
		m.err = fmt.Errorf("no product in stock")
		m.status = "Nothing to sell: every product is out of stock."

		return m, nil
	}

	*m.fields = saleFields{quantity: "1", payment: string(ledger.PaymentCash)}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Product").
				Options(options...).
				Height(8).
				Value(&m.fields.productID),
			huh.NewInput().Title("Quantity").Value(&m.fields.quantity).Validate(positiveInt),
			huh.NewInput().
				Title("Charged total").
				Placeholder("blank = quantity x price").
				Value(&m.fields.charged).
				Validate(optionalMoney),
			huh.NewSelect[string]().
				Title("Payment").
				Options(
					huh.NewOption("Cash", string(ledger.PaymentCash)),
					huh.NewOption("Card", string(ledger.PaymentCard)),
					huh.NewOption("Transfer", string(ledger.PaymentTransfer)),
				).
				Value(&m.fields.payment),
			huh.NewInput().Title("Note (optional)").Value(&m.fields.note),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = saleStateForm

	return m, m.form.Init()
}

func (m SaleModel) View() string {
	switch m.state {
	case saleStateLoading:
		return lipgloss.NewStyle().Padding(2).Render("Loading products...")
	case saleStateForm:
		return lipgloss.NewStyle().Padding(1).Render("New sale\n\n" + m.form.View())
	case saleStateSaving:
		return lipgloss.NewStyle().Padding(2).Render("Recording sale...")
	case saleStateResult:
		status := okText(m.status)
		if m.err != nil {
			status = errorText(m.status)
		}

		return lipgloss.NewStyle().Padding(2).Render(status + "\n\n(Enter for another sale, Esc to go back)")
	}

	return ""
}

// Messages

type loadSaleProductsMsg struct {
	products []*catalog.Product
	err      error
}

func (m SaleModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		products, err := m.catalog.List(ctx)

		return loadSaleProductsMsg{products: products, err: err}
	}
}

type saleResultMsg struct {
	result *pos.SaleResult
	err    error
}

func (m SaleModel) sellCmd() tea.Cmd {
	f := *m.fields

	return func() tea.Msg {
		id, err := uuid.Parse(f.productID)
		if err != nil {
			return saleResultMsg{err: fmt.Errorf("no product selected")}
		}

		qty, _ := ParseInt(f.quantity)
		charged, _ := ParseMoney(f.charged)

		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.pos.Sell(ctx, pos.SaleParams{
			ProductID:     id,
			Quantity:      qty,
			Charged:       charged,
			PaymentMethod: ledger.PaymentMethod(f.payment),
			Note:          f.note,
		})

		return saleResultMsg{result: res, err: err}
	}
}
