package tui

import (
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/niksmo/korzina/internal/core/domain"
	"github.com/niksmo/korzina/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	mu         sync.Mutex
	loads      int
	searches   []string
	categories []string
	retries    int
	closed     bool
	selectErr  error
}

func (s *fakeSession) OnScreenLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
}

func (s *fakeSession) OnCategorySelected(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, name)
	return s.selectErr
}

func (s *fakeSession) OnSearchTextChanged(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches = append(s.searches, text)
}

func (s *fakeSession) Retry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries++
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

type fakeOpener struct {
	sessions []*fakeSession
	shops    []string
	displays []port.ProductsDisplay
	err      error
}

func (o *fakeOpener) Open(shopID string, d port.ProductsDisplay) (port.ShopSession, error) {
	if o.err != nil {
		return nil, o.err
	}
	s := new(fakeSession)
	o.sessions = append(o.sessions, s)
	o.shops = append(o.shops, shopID)
	o.displays = append(o.displays, d)
	return s, nil
}

func key(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

// openSecondShop opens the store under the cursor after one step down.
func openSecondShop(t *testing.T) (Model, *fakeOpener, *[]tea.Msg) {
	t.Helper()
	var sent []tea.Msg
	opener := new(fakeOpener)
	m := NewModel(opener, func(msg tea.Msg) { sent = append(sent, msg) })
	m = update(t, m, key(tea.KeyDown), key(tea.KeyEnter))
	require.Len(t, opener.sessions, 1)
	return m, opener, &sent
}

func TestPicker(t *testing.T) {
	m, opener, _ := openSecondShop(t)

	assert.Equal(t, screenShop, m.screen)
	assert.Equal(t, []string{"Перекресток"}, opener.shops)
	assert.Equal(t, 1, opener.sessions[0].loads)
	assert.Contains(t, m.View(), "Перекресток")
}

func TestPickerOpenFailure(t *testing.T) {
	opener := &fakeOpener{err: errors.New("empty shop")}
	m := update(t, NewModel(opener, func(tea.Msg) {}), key(tea.KeyEnter))

	assert.Equal(t, screenPicker, m.screen)
	assert.Contains(t, m.View(), "Не удалось открыть Ашан")
}

func TestPickerQuit(t *testing.T) {
	m := NewModel(new(fakeOpener), func(tea.Msg) {})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestShopScreenDisplayMessages(t *testing.T) {
	m, opener, sent := openSecondShop(t)
	d := opener.displays[0]

	d.ShowCategories(domain.Categories(), domain.CategoryAll)
	d.ShowState(domain.StateLoading, nil)
	d.ShowProducts([]domain.Product{
		{Name: "Бананы 1 кг", Price: 119.9},
		{Name: "Кефир 1% 900 г", Price: 84.9},
	})
	d.ShowState(domain.StateLoaded, nil)
	m = update(t, m, *sent...)

	view := m.View()
	assert.Contains(t, view, "Бананы 1 кг")
	assert.Contains(t, view, "119.90 ₽")
	assert.Contains(t, view, "Найдено товаров: 2")
	assert.Equal(t, domain.StateLoaded, m.state)
}

func TestShopScreenIgnoresStaleSession(t *testing.T) {
	m, opener, sent := openSecondShop(t)
	stale := opener.displays[0]

	m = update(t, m, key(tea.KeyEsc), key(tea.KeyEnter))
	require.Len(t, opener.sessions, 2)
	assert.True(t, opener.sessions[0].closed)

	*sent = nil
	stale.ShowProducts([]domain.Product{{Name: "Старый товар"}})
	m = update(t, m, *sent...)

	assert.Empty(t, m.products)
	assert.NotContains(t, m.View(), "Старый товар")
}

func TestShopScreenSearch(t *testing.T) {
	m, opener, _ := openSecondShop(t)

	m = update(t, m, runes("я"), runes("б"), key(tea.KeyBackspace))

	assert.Equal(t, []string{"я", "яб", "я"}, opener.sessions[0].searches)
}

func TestShopScreenCategoryCycle(t *testing.T) {
	m, opener, sent := openSecondShop(t)
	opener.displays[0].ShowCategories(domain.Categories(), domain.CategoryAll)
	m = update(t, m, *sent...)

	m = update(t, m, key(tea.KeyRight))
	m = update(t, m, key(tea.KeyLeft))

	cats := domain.Categories()
	assert.Equal(t,
		[]string{cats[1].String(), cats[len(cats)-1].String()},
		opener.sessions[0].categories,
	)
}

func TestShopScreenSelectedCategory(t *testing.T) {
	m, opener, sent := openSecondShop(t)
	d := opener.displays[0]
	d.ShowCategories(domain.Categories(), domain.CategoryAll)
	d.ShowSelectedCategory(domain.CategoryMeat)
	m = update(t, m, *sent...)

	assert.Equal(t, domain.CategoryMeat, m.selected)
}

func TestShopScreenFailureKeepsList(t *testing.T) {
	m, opener, sent := openSecondShop(t)
	d := opener.displays[0]
	d.ShowProducts([]domain.Product{{Name: "Хлеб Бородинский 300 г", Price: 59.9}})
	d.ShowState(domain.StateFailed, domain.ErrTransport)
	m = update(t, m, *sent...)

	view := m.View()
	assert.Contains(t, view, "Хлеб Бородинский 300 г")
	assert.Contains(t, view, "Не удалось загрузить товары")

	m = update(t, m, key(tea.KeyCtrlR))
	assert.Equal(t, 1, opener.sessions[0].retries)
}

func TestShopScreenQuitClosesSession(t *testing.T) {
	m, opener, _ := openSecondShop(t)

	next, cmd := m.Update(key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, opener.sessions[0].closed)
	assert.Nil(t, next.(Model).session)
}

func TestVisibleProductsWindow(t *testing.T) {
	m := NewModel(new(fakeOpener), func(tea.Msg) {})
	for i := 0; i < 30; i++ {
		m.products = append(m.products, domain.Product{Name: "p"})
	}

	assert.Len(t, m.visibleProducts(), defaultListRows)

	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 14})
	assert.Len(t, m.visibleProducts(), 4)

	m.offset = 28
	assert.Len(t, m.visibleProducts(), 2)
}
