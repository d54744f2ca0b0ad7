package tui

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
)

const defaultListRows = 15

// A SessionOpener starts a shop session rendering into display.
type SessionOpener interface {
	Open(shopID string, display port.ProductsDisplay) (port.ShopSession, error)
}

type screen int

const (
	screenPicker screen = iota
	screenShop
)

// A Model is the root bubbletea model: the store picker and the shop screen.
type Model struct {
	opener SessionOpener
	send   func(tea.Msg)
	styles Styles
	stores []domain.Store

	screen screen
	cursor int
	notice string

	// current shop session, gen tags its display messages
	gen        uint64
	session    port.ShopSession
	shop       string
	search     textinput.Model
	categories []domain.Category
	selected   domain.Category
	products   []domain.Product
	state      domain.ScreenState
	fetchErr   error
	offset     int

	height int
}

func NewModel(opener SessionOpener, send func(tea.Msg)) Model {
	search := textinput.New()
	search.Placeholder = "Поиск товаров"
	search.Prompt = "> "
	search.CharLimit = 64

	return Model{
		opener: opener,
		send:   send,
		styles: DefaultStyles,
		stores: domain.PartnerStores(),
		search: search,
		state:  domain.StateIdle,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.screen == screenShop {
			return m.updateShop(msg)
		}
		return m.updatePicker(msg)
	case categoriesMsg:
		if msg.gen == m.gen {
			m.categories = msg.categories
			m.selected = msg.selected
		}
	case selectedCategoryMsg:
		if msg.gen == m.gen {
			m.selected = msg.category
		}
	case productsMsg:
		if msg.gen == m.gen {
			m.products = msg.products
			m.offset = 0
		}
	case stateMsg:
		if msg.gen == m.gen {
			m.state = msg.state
			m.fetchErr = msg.err
		}
	}
	return m, nil
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.stores)-1 {
			m.cursor++
		}
	case "enter":
		return m.openShop(m.stores[m.cursor].Name)
	}
	return m, nil
}

func (m Model) openShop(name string) (tea.Model, tea.Cmd) {
	const op = "Model.openShop"

	m.gen++
	session, err := m.opener.Open(name, NewDisplay(m.gen, m.send))
	if err != nil {
		slog.Error("failed to open shop", "op", op, "shop", name, "err", err)
		m.notice = fmt.Sprintf("Не удалось открыть %s", name)
		return m, nil
	}

	m.screen = screenShop
	m.notice = ""
	m.session = session
	m.shop = name
	m.categories = nil
	m.selected = domain.DefaultCategory
	m.products = nil
	m.state = domain.StateIdle
	m.fetchErr = nil
	m.offset = 0
	m.search.SetValue("")
	m.search.Focus()

	session.OnScreenLoad()
	return m, textinput.Blink
}

// CloseSession dismisses the current shop session, if any.
func (m *Model) CloseSession() {
	if m.session != nil {
		m.session.Close()
		m.session = nil
	}
}

func (m Model) updateShop(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.CloseSession()
		return m, tea.Quit
	case "esc":
		m.CloseSession()
		m.gen++
		m.screen = screenPicker
		m.search.Blur()
		return m, nil
	case "right", "tab":
		m.stepCategory(1)
		return m, nil
	case "left", "shift+tab":
		m.stepCategory(-1)
		return m, nil
	case "ctrl+r":
		m.session.Retry()
		return m, nil
	case "up":
		if m.offset > 0 {
			m.offset--
		}
		return m, nil
	case "down":
		if m.offset < len(m.products)-1 {
			m.offset++
		}
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.session.OnSearchTextChanged(after)
	}
	return m, cmd
}

func (m *Model) stepCategory(delta int) {
	const op = "Model.stepCategory"

	n := len(m.categories)
	if n == 0 {
		return
	}
	i := slices.Index(m.categories, m.selected)
	next := m.categories[((i+delta)%n+n)%n]
	if err := m.session.OnCategorySelected(next.String()); err != nil {
		slog.Warn("category rejected", "op", op, "category", next, "err", err)
	}
}

func (m Model) View() string {
	if m.screen == screenShop {
		return m.viewShop()
	}
	return m.viewPicker()
}

func (m Model) viewPicker() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Корзина: выберите магазин"))
	b.WriteString("\n")
	for i, s := range m.stores {
		if i == m.cursor {
			b.WriteString(m.styles.SelectedRow.Render("› " + s.Name))
		} else {
			b.WriteString(m.styles.Item.Render("  " + s.Name))
		}
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.styles.Error.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("↑/↓ выбор • enter открыть • q выход"))
	return b.String()
}

func (m Model) viewShop() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.shop))
	b.WriteString("\n")
	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	for _, c := range m.categories {
		if c == m.selected {
			b.WriteString(m.styles.Selected.Render(c.String()))
		} else {
			b.WriteString(m.styles.Category.Render(c.String()))
		}
	}
	b.WriteString("\n\n")

	b.WriteString(m.statusLine())
	b.WriteString("\n")

	for _, p := range m.visibleProducts() {
		b.WriteString(m.styles.Item.Render(p.Name))
		b.WriteString("  ")
		b.WriteString(m.styles.Price.Render(fmt.Sprintf("%.2f ₽", p.Price)))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render(
		"←/→ категория • ↑/↓ прокрутка • ctrl+r повторить • esc назад",
	))
	return b.String()
}

func (m Model) statusLine() string {
	switch m.state {
	case domain.StateLoading:
		return m.styles.Status.Render("Загрузка...")
	case domain.StateFailed:
		return m.styles.Error.Render("Не удалось загрузить товары")
	case domain.StateLoaded:
		return m.styles.Status.Render(fmt.Sprintf("Найдено товаров: %d", len(m.products)))
	}
	return ""
}

func (m Model) visibleProducts() []domain.Product {
	rows := defaultListRows
	if m.height > 0 {
		rows = max(m.height-10, 1)
	}
	start := min(m.offset, len(m.products))
	end := min(start+rows, len(m.products))
	return m.products[start:end]
}
