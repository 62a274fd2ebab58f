package view

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/ilara/internal/catalog"
	"github.com/MrJamesThe3rd/ilara/internal/ledger"
	"github.com/MrJamesThe3rd/ilara/internal/pos"
	"github.com/MrJamesThe3rd/ilara/internal/summary"
)

// afterSubmit is what reaches a model between a form completing and the
// result of its command: the submitting key, a resize and more typing.
var afterSubmit = []tea.Msg{
	tea.KeyMsg{Type: tea.KeyEnter},
	tea.WindowSizeMsg{Width: 120, Height: 40},
	tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")},
	tea.KeyMsg{Type: tea.KeyEnter},
}

// feed sends msgs to m and returns the model and every non-nil command.
func feed(t *testing.T, m tea.Model, msgs []tea.Msg) (tea.Model, []tea.Cmd) {
	t.Helper()

	var cmds []tea.Cmd

	for _, msg := range msgs {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)

		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, cmds
}

func testProduct() *catalog.Product {
	return &catalog.Product{
		ID: uuid.New(), Name: "Lipstick", Brand: "Acme", Category: "Lips", Stock: 5,
		Cost: decimal.NewFromInt(10), Price: decimal.NewFromInt(20),
	}
}

func TestSaleModel_SubmitsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := testProduct()

	inventory := pos.NewMockInventory(ctrl)
	journal := pos.NewMockJournal(ctrl)
	inventory.EXPECT().GetProduct(gomock.Any(), p.ID).Return(p, nil).Times(1)
	inventory.EXPECT().AdjustStock(gomock.Any(), p.ID, -1).Return(4, nil).Times(1)
	journal.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	m := NewSaleModel(nil, pos.NewService(inventory, journal, nil))
	m.products = []*catalog.Product{p}

	opened, _ := m.openForm()
	m = opened.(SaleModel)
	require.Equal(t, saleStateForm, m.state)

	m.fields.productID = p.ID.String()
	m.form.State = huh.StateCompleted

	model, cmds := feed(t, m, afterSubmit)
	require.Len(t, cmds, 1)
	assert.Equal(t, saleStateSaving, model.(SaleModel).state)

	result := cmds[0]()
	require.IsType(t, saleResultMsg{}, result)
	require.NoError(t, result.(saleResultMsg).err)
	assert.Equal(t, 4, result.(saleResultMsg).result.NewStock)

	model, _ = model.Update(result)
	assert.Equal(t, saleStateResult, model.(SaleModel).state)
}

func TestExpenseModel_SubmitsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	repo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	m := NewExpenseModel(ledger.NewService(repo, nil))
	m.fields.description = "Rent"
	m.fields.amount = "12,50"
	m.form.State = huh.StateCompleted

	model, cmds := feed(t, m, afterSubmit)
	require.Len(t, cmds, 1)
	assert.True(t, model.(ExpenseModel).saving)

	result := cmds[0]()
	require.IsType(t, expenseResultMsg{}, result)
	require.NoError(t, result.(expenseResultMsg).err)
	assert.True(t, decimal.RequireFromString("-12.5").Equal(result.(expenseResultMsg).entry.Amount))

	model, _ = model.Update(result)
	assert.True(t, model.(ExpenseModel).done)
	assert.False(t, model.(ExpenseModel).saving)
}

func TestFinancesModel_ReversesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := &ledger.Entry{ID: uuid.New(), Kind: ledger.KindExpense, Description: "Rent", Amount: decimal.NewFromInt(-100)}

	journal := pos.NewMockJournal(ctrl)
	journal.EXPECT().GetEntry(gomock.Any(), entry.ID).Return(entry, nil).Times(1)
	journal.EXPECT().DeleteEntry(gomock.Any(), entry.ID).Return(nil).Times(1)

	m := NewFinancesModel(summary.NewService(nil, nil, 3, time.UTC), pos.NewService(pos.NewMockInventory(ctrl), journal, nil))
	m.loading = false
	m.dashboard = &summary.Dashboard{Entries: []*ledger.Entry{entry}}
	m.selected = entry
	*m.confirm = true
	m.form = huh.NewForm(huh.NewGroup(huh.NewConfirm().Value(m.confirm)))
	m.form.State = huh.StateCompleted
	m.state = financesStateConfirm

	model, cmds := feed(t, m, afterSubmit)
	require.Len(t, cmds, 1)
	assert.Equal(t, financesStateSaving, model.(FinancesModel).state)

	result := cmds[0]()
	require.IsType(t, reverseResultMsg{}, result)
	require.NoError(t, result.(reverseResultMsg).err)

	model, _ = model.Update(result)
	assert.Equal(t, financesStateBrowse, model.(FinancesModel).state)
}

func TestInventoryModel_EditLeavesStockToTheStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	listed := testProduct()

	// A sale since the list was loaded took the stored stock to 3.
	stored := testProduct()
	stored.ID = listed.ID
	stored.Stock = 3

	repo := catalog.NewMockRepository(ctrl)
	repo.EXPECT().GetProduct(gomock.Any(), listed.ID).Return(stored, nil).Times(1)
	repo.EXPECT().FindByIdentity(gomock.Any(), "lipstick_acme").Return(stored, nil).Times(1)
	repo.EXPECT().ListCategories(gomock.Any()).Return(nil, nil).Times(1)
	repo.EXPECT().UpdateProduct(gomock.Any(), gomock.Any(), gomock.Nil()).
		DoAndReturn(func(_ context.Context, p *catalog.Product, _ *int) error {
			assert.True(t, decimal.NewFromInt(25).Equal(p.Price))
			return nil
		}).Times(1)

	m := NewInventoryModel(catalog.NewService(repo, nil, []string{"Lips", "Face"}), nil, 3)
	m.loading = false
	m.products = []*catalog.Product{listed}
	m.categories = []string{"Lips", "Face"}

	opened, _ := m.openForm(inventoryStateEdit)
	m = opened.(InventoryModel)
	require.Equal(t, inventoryStateEdit, m.state)

	m.fields.price = "25"
	m.form.State = huh.StateCompleted

	model, cmds := feed(t, m, afterSubmit)
	require.Len(t, cmds, 1)
	assert.Equal(t, inventoryStateSaving, model.(InventoryModel).state)

	result := cmds[0]()
	require.IsType(t, inventorySaveMsg{}, result)
	require.NoError(t, result.(inventorySaveMsg).err)

	model, _ = model.Update(result)
	assert.Equal(t, inventoryStateBrowse, model.(InventoryModel).state)
}

func TestInventoryModel_AdjustSubmitsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	p := testProduct()

	inventory := pos.NewMockInventory(ctrl)
	journal := pos.NewMockJournal(ctrl)
	inventory.EXPECT().GetProduct(gomock.Any(), p.ID).Return(p, nil).Times(1)
	inventory.EXPECT().AdjustStock(gomock.Any(), p.ID, -2).Return(3, nil).Times(1)
	journal.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	m := NewInventoryModel(nil, pos.NewService(inventory, journal, nil), 3)
	m.loading = false
	m.products = []*catalog.Product{p}

	opened, _ := m.openForm(inventoryStateAdjust)
	m = opened.(InventoryModel)

	m.fields.delta = "-2"
	m.fields.reason = "damaged"
	m.form.State = huh.StateCompleted

	model, cmds := feed(t, m, afterSubmit)
	require.Len(t, cmds, 1)

	result := cmds[0]()
	require.IsType(t, inventorySaveMsg{}, result)
	assert.NoError(t, result.(inventorySaveMsg).err)
	assert.Contains(t, result.(inventorySaveMsg).status, "5 -> 3")

	model, _ = model.Update(result)
	assert.Equal(t, inventoryStateBrowse, model.(InventoryModel).state)
}
