package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lectern-cli/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/lectern-cli/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/lectern-cli/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/lectern-cli/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/lectern-cli/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

// App is the chat TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the active keybindings.
	keymap *keymap.KeyMap

	// input is the question input component.
	input *input.QuestionInput

	// transcript shows the conversation history.
	transcript viewport.Model

	// spinner animates while an answer is pending.
	spinner spinner.Model

	// statusBar shows state and keybinding hints.
	statusBar *status.Bar

	// thinking indicates a question is in flight.
	thinking bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Title

	return &App{
		ports:     ports,
		ctx:       context.Background(),
		styles:    s,
		keymap:    km,
		input:     input.NewQuestionInput(s),
		spinner:   sp,
		statusBar: status.NewBar(s, km),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("lectern - Document Chat"),
		a.input.Init(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		if !a.thinking {
			return a, nil
		}
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.AnswerReceived:
		a.thinking = false
		if msg.Err != nil {
			a.err = msg.Err
			a.statusBar.SetState(status.StateError)
			a.statusBar.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.err = nil
		a.statusBar.SetState(status.StateReady)
		a.statusBar.SetTurnCount(len(a.ports.Chat.History()))
		a.refreshTranscript()
		a.transcript.GotoBottom()
		return a, nil

	case messages.SessionCleared:
		a.statusBar.Clear()
		a.refreshTranscript()
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKey dispatches key presses to the right action or component.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(keyStr, a.keymap.Send):
		return a, a.submit()

	case keymap.Matches(keyStr, a.keymap.NewSession):
		a.ports.Chat.Reset()
		return a, func() tea.Msg { return messages.SessionCleared{} }

	case keymap.Matches(keyStr, a.keymap.ScrollUp),
		keymap.Matches(keyStr, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.transcript, cmd = a.transcript.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit sends the typed question to the chat service.
// Empty input and questions typed while one is already in flight are ignored.
func (a *App) submit() tea.Cmd {
	question := strings.TrimSpace(a.input.Value())
	if question == "" || a.thinking {
		return nil
	}

	a.thinking = true
	a.err = nil
	a.input.Reset()
	a.statusBar.SetState(status.StateThinking)

	return tea.Batch(a.spinner.Tick, a.ask(question))
}

// ask performs the chat turn asynchronously.
func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		result, err := a.ports.Chat.Ask(a.ctx, question)
		return messages.AnswerReceived{
			Question: question,
			Result:   result,
			Err:      err,
		}
	}
}

// resize recalculates the layout for new terminal dimensions.
func (a *App) resize(width, height int) {
	a.width = width
	a.height = height

	// Header, input area and status bar take up the rest.
	transcriptHeight := height - 7
	if transcriptHeight < 3 {
		transcriptHeight = 3
	}

	if !a.ready {
		a.transcript = viewport.New(width, transcriptHeight)
		a.ready = true
	} else {
		a.transcript.Width = width
		a.transcript.Height = transcriptHeight
	}

	a.input.SetWidth(width)
	a.statusBar.SetWidth(width)
	a.refreshTranscript()
}

// refreshTranscript re-renders the conversation into the viewport.
func (a *App) refreshTranscript() {
	if !a.ready {
		return
	}
	a.transcript.SetContent(a.renderTranscript())
}

// renderTranscript formats the chat history for display.
func (a *App) renderTranscript() string {
	history := a.ports.Chat.History()
	if len(history) == 0 {
		return a.styles.Muted.Render("Ask a question about your indexed documents.")
	}

	wrap := a.styles.Normal.Width(a.transcript.Width)

	blocks := make([]string, 0, len(history))
	for _, turn := range history {
		var b strings.Builder
		b.WriteString(a.styles.Question.Render("You: "))
		b.WriteString(turn.Question)
		b.WriteString("\n")
		b.WriteString(a.styles.Answer.Render("Lectern:"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(turn.Answer.Answer))
		if sources := renderSources(a.styles, turn.Answer.Sources); sources != "" {
			b.WriteString("\n")
			b.WriteString(sources)
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}

// renderSources formats citation lines for a single answer.
func renderSources(s *styles.Styles, sources []domain.SourceRef) string {
	if len(sources) == 0 {
		return ""
	}

	lines := make([]string, 0, len(sources))
	for i, source := range sources {
		line := fmt.Sprintf("  [%d] %s (%.2f)", i+1, source.SourceID, source.Similarity)
		lines = append(lines, s.Source.Render(line))
	}
	return strings.Join(lines, "\n")
}

// View implements tea.Model.
// It renders the chat interface as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	header := a.styles.Title.Render("lectern") +
		a.styles.Muted.Render("  chat with your documents")

	inputLine := a.input.View()
	if a.thinking {
		//nolint:misspell // lipgloss.Center is the correct constant from the library
		inputLine = lipgloss.JoinHorizontal(lipgloss.Center, inputLine, " ", a.spinner.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		a.transcript.View(),
		"",
		inputLine,
		a.statusBar.View(),
	)
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Thinking returns whether a question is currently in flight.
func (a *App) Thinking() bool {
	return a.thinking
}

// History returns the chat transcript.
func (a *App) History() []domain.ChatTurn {
	return a.ports.Chat.History()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.resize(width, height)
}

// InputValue returns the current input value (for testing).
func (a *App) InputValue() string {
	return a.input.Value()
}
