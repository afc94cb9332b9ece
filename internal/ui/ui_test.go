package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/shared"
	"github.com/desertthunder/wordcount/internal/tasks"
	tu "github.com/desertthunder/wordcount/internal/testing"
	"github.com/desertthunder/wordcount/internal/testing/fakes"
)

type fakeBrowser struct {
	results []*models.Result
	deleted []string
	listErr error
	lists   int
}

func (b *fakeBrowser) List(criteria map[string]any) ([]*models.Result, error) {
	b.lists++
	if b.listErr != nil {
		return nil, b.listErr
	}
	if limit, ok := criteria["limit"].(int); ok && limit < len(b.results) {
		return b.results[:limit], nil
	}
	return b.results, nil
}

func (b *fakeBrowser) Delete(id string) error {
	for i, r := range b.results {
		if r.ID() == id {
			b.results = append(b.results[:i], b.results[i+1:]...)
			b.deleted = append(b.deleted, id)
			return nil
		}
	}
	return shared.ErrNotFound
}

func newResult(id, url string) *models.Result {
	r := models.NewResult(1, url,
		map[string]int{"dog": 3, "cat": 2, "the": 4},
		map[string]int{"dog": 3, "cat": 2},
	)
	r.SetID(id)
	r.SetCreatedAt(time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC))
	return r
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drain runs cmd and feeds its messages back into m until done reports true.
func drain(t *testing.T, m *Model, cmd tea.Cmd, done func() bool) {
	t.Helper()
	for i := 0; cmd != nil && !done(); i++ {
		if i > 20 {
			t.Fatal("model did not settle")
		}
		_, cmd = m.Update(cmd())
	}
}

type tuiHarness struct {
	model   *Model
	browser *fakeBrowser
	store   *fakes.MockResultStore
	opened  []string
}

func newHarness(t *testing.T) *tuiHarness {
	t.Helper()
	h := &tuiHarness{
		browser: &fakeBrowser{results: []*models.Result{
			newResult("r2", "http://second.example"),
			newResult("r1", "http://first.example"),
		}},
		store: fakes.NewMockResultStore(),
	}
	fetcher := fakes.NewMockFetcher(map[string]string{"http://example.com": tu.ExamplePage})
	h.model = NewModel(context.Background(), Options{
		Results:   h.browser,
		Engine:    tasks.NewCountEngine(fetcher, h.store, nil, nil),
		Limit:     10,
		ResultURL: func(id string) string { return "http://127.0.0.1:5000/result/" + id },
		Open: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		Palette: Plain,
	})

	h.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.model.Update(h.model.Init()())
	return h
}

func (h *tuiHarness) press(keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = h.model.Update(keyMsg(k))
	}
	return cmd
}

func TestModel(t *testing.T) {
	t.Run("Lists Results", func(t *testing.T) {
		h := newHarness(t)
		if h.model.State() != ResultListView {
			t.Fatalf("expected result list, got %v", h.model.State())
		}
		view := h.model.View()
		for _, want := range []string{"Stored Results", "http://second.example", "9 words • 2 unique"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view:\n%s", want, view)
			}
		}
	})

	t.Run("Help Toggle", func(t *testing.T) {
		h := newHarness(t)
		if view := h.model.View(); strings.Contains(view, "toggle stop words") {
			t.Error("short help should not list word list keys")
		}
		h.press("?")
		if view := h.model.View(); !strings.Contains(view, "toggle stop words") {
			t.Errorf("expected full help after ?:\n%s", view)
		}
	})

	t.Run("Word List", func(t *testing.T) {
		h := newHarness(t)
		h.press("enter")
		if h.model.State() != WordListView {
			t.Fatalf("expected word list, got %v", h.model.State())
		}
		view := h.model.View()
		if !strings.Contains(view, "without stop words") || !strings.Contains(view, "dog") {
			t.Errorf("unexpected word list:\n%s", view)
		}
		if n := len(h.model.wordList.Items()); n != 2 {
			t.Errorf("stop words should be hidden by default, got %d words", n)
		}

		h.press("a")
		if view := h.model.View(); !strings.Contains(view, "all words") {
			t.Errorf("expected all words after toggle:\n%s", view)
		}
		if n := len(h.model.wordList.Items()); n != 3 {
			t.Errorf("expected stop words after toggle, got %d words", n)
		}

		h.press("esc")
		if h.model.State() != ResultListView {
			t.Errorf("expected esc to go back, got %v", h.model.State())
		}
	})

	t.Run("Count A URL", func(t *testing.T) {
		h := newHarness(t)
		h.press("n")
		if h.model.State() != InputView {
			t.Fatalf("expected input view, got %v", h.model.State())
		}

		h.press("enter")
		if h.model.State() != InputView || !strings.Contains(h.model.View(), "Please enter a URL.") {
			t.Fatalf("empty input should stay on the form:\n%s", h.model.View())
		}

		h.press("example.com")
		cmd := h.press("enter")
		if h.model.State() != CountView {
			t.Fatalf("expected count view, got %v", h.model.State())
		}
		drain(t, h.model, cmd, func() bool { return h.model.State() == OutcomeView })

		view := h.model.View()
		if !strings.Contains(view, "Count Complete") || !strings.Contains(view, "http://example.com") {
			t.Errorf("unexpected outcome view:\n%s", view)
		}
		if h.store.Len() != 1 {
			t.Errorf("expected one persisted result, got %d", h.store.Len())
		}

		lists := h.browser.lists
		cmd = h.press("enter")
		if h.model.State() != WordListView || !strings.Contains(h.model.View(), "dog") {
			t.Errorf("expected the new result's words:\n%s", h.model.View())
		}
		if cmd != nil {
			h.model.Update(cmd())
		}
		if h.browser.lists != lists+1 {
			t.Error("expected results to reload after a count")
		}
	})

	t.Run("Count Unreachable", func(t *testing.T) {
		h := newHarness(t)
		h.press("n", "nowhere.invalid")
		drain(t, h.model, h.press("enter"), func() bool { return h.model.State() == OutcomeView })

		if view := h.model.View(); !strings.Contains(view, tasks.FetchErrorMessage) {
			t.Errorf("expected fetch error in view:\n%s", view)
		}
		if h.store.Len() != 0 {
			t.Error("nothing should be persisted")
		}

		h.press("r")
		if h.model.State() != ResultListView {
			t.Errorf("expected r to return to results, got %v", h.model.State())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		h := newHarness(t)
		h.press("d")
		if h.model.State() != ConfirmView || !strings.Contains(h.model.View(), "http://second.example") {
			t.Fatalf("expected delete confirmation:\n%s", h.model.View())
		}

		h.press("n")
		if h.model.State() != ResultListView || len(h.browser.deleted) != 0 {
			t.Fatal("n should cancel the delete")
		}

		h.press("d")
		drain(t, h.model, h.press("y"), func() bool { return len(h.browser.deleted) == 1 && h.model.State() == ResultListView })
		if h.browser.deleted[0] != "r2" {
			t.Errorf("expected r2 deleted, got %v", h.browser.deleted)
		}
		if !strings.Contains(h.model.View(), "Deleted r2") {
			t.Errorf("expected delete status:\n%s", h.model.View())
		}
	})

	t.Run("Open In Browser", func(t *testing.T) {
		h := newHarness(t)
		cmd := h.press("o")
		if cmd == nil {
			t.Fatal("expected an open command")
		}
		h.model.Update(cmd())

		if len(h.opened) != 1 || h.opened[0] != "http://127.0.0.1:5000/result/r2" {
			t.Errorf("unexpected opened urls %v", h.opened)
		}
		if !strings.Contains(h.model.View(), "Opened http://127.0.0.1:5000/result/r2") {
			t.Errorf("expected open status:\n%s", h.model.View())
		}
	})

	t.Run("Open Without Server", func(t *testing.T) {
		h := newHarness(t)
		h.model.resultURL = nil
		if cmd := h.press("o"); cmd != nil {
			t.Error("expected no command without a server address")
		}
		if !strings.Contains(h.model.View(), "needs a server address") {
			t.Errorf("expected warning:\n%s", h.model.View())
		}
	})

	t.Run("List Error", func(t *testing.T) {
		h := newHarness(t)
		h.browser.listErr = errors.New("database is locked")
		h.model.Update(h.model.Init()())
		if view := h.model.View(); !strings.Contains(view, "database is locked") {
			t.Errorf("expected error view:\n%s", view)
		}
	})

	t.Run("Quit", func(t *testing.T) {
		h := newHarness(t)
		cmd := h.press("q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}
