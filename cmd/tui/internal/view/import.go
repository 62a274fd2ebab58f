package view

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/ilara/internal/importer"
)

const importTimeout = 2 * time.Minute

// maxSkippedShown bounds the skipped-row list on the result screen.
const maxSkippedShown = 10

type importState int

const (
	importStateKindSelect importState = iota
	importStateFilePick
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	importService *importer.Service

	state        importState
	filePicker   filepicker.Model
	selectedKind importer.Kind
	kindOptions  []importer.Kind
	kindCursor   int

	result *importer.Result
	status string
	err    error
}

func NewImportModel(impSvc *importer.Service) ImportModel {
	fp := filepicker.New()
	fp.CurrentDirectory, _ = os.Getwd()
	fp.AllowedTypes = []string{".csv", ".txt"}
	fp.ShowHidden = false
	fp.DirAllowed = false
	fp.FileAllowed = true
	fp.SetHeight(15)

	return ImportModel{
		importService: impSvc,
		filePicker:    fp,
		kindOptions:   []importer.Kind{importer.KindInventory, importer.KindFinance},
	}
}

func (m ImportModel) Title() string { return "Import Legacy Data" }

func (m ImportModel) ShortHelp() string {
	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.filePicker.Init()
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}

		if m.state == importStateKindSelect {
			return m.updateKindSelect(msg)
		}

	case importResultMsg:
		m.state = importStateResult
		m.result = msg.result
		m.err = msg.err

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			if msg.result != nil {
				m.status += fmt.Sprintf(" (%d rows imported before the error)", msg.result.Imported)
			}

			return m, nil
		}

		m.status = fmt.Sprintf("Imported %d rows (%s).", msg.result.Imported, msg.result.Charset)
		if msg.result.Kind == importer.KindInventory {
			m.status += fmt.Sprintf(" %d new products, %d restocked.", msg.result.Created, msg.result.Merged)
		}

		return m, nil
	}

	if m.state != importStateFilePick {
		return m, nil
	}

	var cmd tea.Cmd
	m.filePicker, cmd = m.filePicker.Update(msg)

	if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
		m.state = importStateImporting
		m.status = fmt.Sprintf("Importing from %s...", path)

		return m, m.importCmd(path)
	}

	return m, cmd
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateFilePick:
		m.state = importStateKindSelect
		return m, nil
	case importStateResult:
		m.state = importStateKindSelect
		m.err = nil
		m.result = nil
		m.status = ""

		return m, nil
	}

	return m, Back
}

func (m ImportModel) updateKindSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.kindCursor > 0 {
			m.kindCursor--
		}
	case tea.KeyDown:
		if m.kindCursor < len(m.kindOptions)-1 {
			m.kindCursor++
		}
	case tea.KeyEnter:
		m.selectedKind = m.kindOptions[m.kindCursor]
		m.state = importStateFilePick

		return m, m.filePicker.Init()
	}

	return m, nil
}

func (m ImportModel) View() string {
	switch m.state {
	case importStateKindSelect:
		return m.viewKindSelect()
	case importStateFilePick:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("Select %s export:\n\n%s", m.selectedKind, m.filePicker.View()),
		)
	case importStateImporting:
		return lipgloss.NewStyle().Padding(2).Render(m.status)
	case importStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ImportModel) viewKindSelect() string {
	s := "What does the file contain?\n\n"

	for i, kind := range m.kindOptions {
		cursor := " "
		if i == m.kindCursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, kindLabel(kind))
	}

	return lipgloss.NewStyle().Padding(2).Render(s)
}

func (m ImportModel) viewResult() string {
	status := okText(m.status)
	if m.err != nil {
		status = errorText(m.status)
	}

	var b strings.Builder
	b.WriteString(status)

	if m.result != nil && len(m.result.Skipped) > 0 {
		fmt.Fprintf(&b, "\n\n%s", warnText(fmt.Sprintf("%d rows skipped:", len(m.result.Skipped))))

		for i, s := range m.result.Skipped {
			if i == maxSkippedShown {
				fmt.Fprintf(&b, "\n  ... and %d more", len(m.result.Skipped)-maxSkippedShown)
				break
			}

			fmt.Fprintf(&b, "\n  %v", s)
		}
	}

	b.WriteString("\n\n(Esc to go back)")

	return lipgloss.NewStyle().Padding(2).Render(b.String())
}

func kindLabel(k importer.Kind) string {
	switch k {
	case importer.KindInventory:
		return "Inventory (inventario)"
	case importer.KindFinance:
		return "Finances (finanzas)"
	}

	return string(k)
}

// Messages

type importResultMsg struct {
	result *importer.Result
	err    error
}

func (m ImportModel) importCmd(path string) tea.Cmd {
	kind := m.selectedKind

	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return importResultMsg{err: err}
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
		defer cancel()

		result, err := m.importService.Import(ctx, kind, f)

		return importResultMsg{result: result, err: err}
	}
}
