package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/wordcount/internal/models"
	"github.com/desertthunder/wordcount/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ResultListView ViewState = iota
	WordListView
	InputView
	CountView
	OutcomeView
	ConfirmView
)

// ResultBrowser lists and deletes stored results. Satisfied by repositories.ResultRepository.
type ResultBrowser interface {
	List(criteria map[string]any) ([]*models.Result, error)
	Delete(id string) error
}

// Options wires a [Model]. Results and Engine are required.
type Options struct {
	Results   ResultBrowser
	Engine    tasks.Engine
	Limit     int                    // results listed, 0 for all
	ResultURL func(id string) string // page for a result; nil disables opening in a browser
	Open      func(url string) error // opens url in a browser
	Palette   *Palette
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	results   ResultBrowser
	engine    tasks.Engine
	limit     int
	resultURL func(string) string
	open      func(string) error
	palette   *Palette

	width      int
	height     int
	resultList list.Model
	wordList   list.Model
	input      textinput.Model
	selected   *models.Result
	showAll    bool

	progressChan chan tasks.ProgressUpdate
	done         chan *tasks.Outcome
	progress     tasks.ProgressUpdate
	outcome      *tasks.Outcome

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Palette == nil {
		opts.Palette = Default
	}

	input := textinput.New()
	input.Placeholder = "example.com"
	input.Prompt = "URL: "
	input.CharLimit = 2048

	resultList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	resultList.Title = "Stored Results"
	wordList := list.New(nil, list.NewDefaultDelegate(), 0, 0)

	return &Model{
		ctx:        ctx,
		view:       ResultListView,
		results:    opts.Results,
		engine:     opts.Engine,
		limit:      opts.Limit,
		resultURL:  opts.ResultURL,
		open:       opts.Open,
		palette:    opts.Palette,
		resultList: resultList,
		wordList:   wordList,
		input:      input,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// State returns the current view.
func (m *Model) State() ViewState { return m.view }

// Init loads the stored results.
func (m *Model) Init() tea.Cmd {
	return m.loadResults()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resultList.SetSize(msg.Width-4, msg.Height-8)
		m.wordList.SetSize(msg.Width-4, msg.Height-8)
		m.input.Width = max(msg.Width-10, 20)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ResultListView:
			return m.handleResultListKeys(msg)
		case WordListView:
			return m.handleWordListKeys(msg)
		case InputView:
			return m.handleInputKeys(msg)
		case CountView:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		case OutcomeView:
			return m.handleOutcomeKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}

	case resultsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		return m, m.resultList.SetItems(resultItems(msg.results))

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case countCompleteMsg:
		m.outcome = msg.outcome
		m.progressChan, m.done = nil, nil
		m.view = OutcomeView
		return m, nil

	case resultDeletedMsg:
		m.view = ResultListView
		if msg.err != nil {
			m.status = m.palette.Err(fmt.Sprintf("Delete failed: %v", msg.err))
			return m, nil
		}
		m.status = m.palette.OK("Deleted " + msg.id)
		m.selected = nil
		return m, m.loadResults()

	case browserOpenedMsg:
		if msg.err != nil {
			m.status = m.palette.Err(fmt.Sprintf("Could not open %s: %v", msg.url, msg.err))
		} else {
			m.status = m.palette.Help("Opened " + msg.url)
		}
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return m.palette.Err(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ResultListView:
		return m.renderResultList()
	case WordListView:
		return m.renderWordList()
	case InputView:
		return m.renderInput()
	case CountView:
		return m.renderCount()
	case OutcomeView:
		return m.renderOutcome()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) filtering(l list.Model) bool {
	return l.FilterState() == list.Filtering
}

func (m *Model) handleResultListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering(m.resultList) {
		var cmd tea.Cmd
		m.resultList, cmd = m.resultList.Update(msg)
		return m, cmd
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if result := m.selectedResult(); result != nil {
			m.showWords(result)
			return m, nil
		}
	case key.Matches(msg, m.keys.count):
		m.view = InputView
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.del):
		if result := m.selectedResult(); result != nil {
			m.selected = result
			m.view = ConfirmView
		}
		return m, nil
	case key.Matches(msg, m.keys.open):
		if result := m.selectedResult(); result != nil {
			return m, m.openResult(result)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleWordListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering(m.wordList) {
		var cmd tea.Cmd
		m.wordList, cmd = m.wordList.Update(msg)
		return m, cmd
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = ResultListView
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.showAll = !m.showAll
		m.showWords(m.selected)
		return m, nil
	case key.Matches(msg, m.keys.open):
		return m, m.openResult(m.selected)
	}

	var cmd tea.Cmd
	m.wordList, cmd = m.wordList.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.input.Blur()
		m.status = ""
		m.view = ResultListView
		return m, nil
	case "enter":
		raw := strings.TrimSpace(m.input.Value())
		if raw == "" {
			m.status = m.palette.Err("Please enter a URL.")
			return m, nil
		}
		m.input.Blur()
		m.status = ""
		m.outcome = nil
		m.progress = tasks.ProgressUpdate{}
		m.view = CountView
		return m, m.startCount(tasks.NormalizeURL(raw))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleOutcomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if m.outcome != nil && m.outcome.OK() && m.outcome.Result != nil {
			m.showWords(m.outcome.Result)
			return m, m.loadResults()
		}
	case key.Matches(msg, m.keys.restart):
		m.view = ResultListView
		return m, m.loadResults()
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		return m, m.deleteResult(m.selected.ID())
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = ResultListView
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case ResultListView:
		m.resultList, cmd = m.resultList.Update(msg)
	case WordListView:
		m.wordList, cmd = m.wordList.Update(msg)
	case InputView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedResult() *models.Result {
	if item, ok := m.resultList.SelectedItem().(resultItem); ok {
		return item.result
	}
	return nil
}

// showWords switches to the word list for result.
func (m *Model) showWords(result *models.Result) {
	m.selected = result
	words, label := result.Sorted(), "without stop words"
	if m.showAll {
		words, label = result.SortedAll(), "all words"
	}

	total := 0
	for _, w := range words {
		total += w.Count
	}
	m.wordList.SetItems(wordItems(words, total))
	m.wordList.ResetFilter()
	m.wordList.Select(0)
	m.wordList.Title = fmt.Sprintf("%s (%s)", result.URL(), label)
	m.view = WordListView
}

func (m *Model) loadResults() tea.Cmd {
	return func() tea.Msg {
		criteria := map[string]any{}
		if m.limit > 0 {
			criteria["limit"] = m.limit
		}
		results, err := m.results.List(criteria)
		return resultsLoadedMsg{results: results, err: err}
	}
}

func (m *Model) deleteResult(id string) tea.Cmd {
	return func() tea.Msg {
		return resultDeletedMsg{id: id, err: m.results.Delete(id)}
	}
}

func (m *Model) openResult(result *models.Result) tea.Cmd {
	if m.resultURL == nil || m.open == nil || result == nil {
		m.status = m.palette.Warn("Opening results needs a server address")
		return nil
	}
	url := m.resultURL(result.ID())
	return func() tea.Msg {
		return browserOpenedMsg{url: url, err: m.open(url)}
	}
}

func (m *Model) startCount(url string) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan *tasks.Outcome, 1)
	m.progressChan, m.done = progress, done

	go func() {
		done <- m.engine.Run(m.ctx, progress, url)
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	if progress == nil {
		return nil
	}
	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return countCompleteMsg{outcome: <-done}
	}
}

func (m *Model) withStatus(body string, keys ...key.Binding) string {
	var b strings.Builder
	b.WriteString(body)
	if m.status != "" {
		b.WriteString("\n" + m.status)
	}
	b.WriteString("\n\n" + m.help.ShortHelpView(keys))
	return b.String()
}

func (m *Model) renderResultList() string {
	body := m.resultList.View()
	if m.status != "" {
		body += "\n" + m.status
	}
	return body + "\n\n" + m.help.View(m.keys)
}

func (m *Model) renderWordList() string {
	return m.withStatus(m.wordList.View(), m.keys.toggle, m.keys.open, m.keys.back, m.keys.quit)
}

func (m *Model) renderInput() string {
	title := m.palette.Title("Count words on a page")
	submit := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "count"))
	return m.withStatus(fmt.Sprintf("%s\n\n%s", title, m.input.View()), submit, m.keys.back)
}

func (m *Model) renderCount() string {
	title := m.palette.Title("Counting Words")
	if m.progress.Total == 0 {
		return fmt.Sprintf("%s\n\nStarting...", title)
	}
	return fmt.Sprintf("%s\n\n[%d/%d] %s\n%s",
		title,
		m.progress.Step,
		m.progress.Total,
		m.progress.Message,
		m.palette.Bar(m.progress.Step, m.progress.Total, 30),
	)
}

func (m *Model) renderOutcome() string {
	if m.outcome == nil || !m.outcome.OK() {
		msg := "No result available"
		if m.outcome != nil {
			msg = m.outcome.Message()
		}
		return m.withStatus(m.palette.Err(msg), m.keys.restart, m.keys.quit)
	}

	title := m.palette.OK("✓ Count Complete!")
	body := fmt.Sprintf("\nURL: %s\nResult: %s", m.outcome.URL, m.outcome.ResultID)
	if r := m.outcome.Result; r != nil {
		body += fmt.Sprintf("\nWords: %d (%d unique without stop words)", r.TotalWords(), len(r.NoStopWords()))
		for i, w := range r.Sorted() {
			if i == 5 {
				break
			}
			body += fmt.Sprintf("\n  %-20s %d", w.Word, w.Count)
		}
	}

	view := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "view words"))
	return m.withStatus(title+"\n"+body, view, m.keys.restart, m.keys.quit)
}

func (m *Model) renderConfirm() string {
	title := m.palette.Title(fmt.Sprintf("Delete the result for '%s'?", m.selected.URL()))
	info := fmt.Sprintf("\nID: %s\nCounted: %s\n", m.selected.ID(), m.selected.CreatedAt().Local().Format("2006-01-02 15:04"))
	return m.withStatus(title+"\n"+info, m.keys.yes, m.keys.no)
}
