package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/lectern-cli/internal/core/domain"
)

var chatPlain bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Starts an interactive session for asking multiple questions about
your indexed documents. Each question is answered independently from
the index; the transcript is kept for the session only.

By default a full-screen terminal UI is launched:

  Enter    - Ask the typed question
  Ctrl+N   - Start a new session
  ↑/↓      - Scroll the transcript
  Esc      - Quit

Use --plain for a line-based loop instead, suitable for dumb terminals
and scripting. Type 'quit', 'exit', or 'stop' to end the session.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use a plain line-based loop instead of the terminal UI")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if chatPlain {
		return runChatPlain(cmd)
	}

	return runChatTUI(cmd)
}

func runChatTUI(cmd *cobra.Command) error {
	// Recover panics so terminal state is restored with a stack trace
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in chat UI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(chatService))
	if err != nil {
		return fmt.Errorf("failed to create chat UI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}

	return nil
}

func runChatPlain(cmd *cobra.Command) error {
	ctx := cmd.Context()

	cmd.Println("Lectern - Interactive Chat")
	cmd.Println("Ask me anything! Type 'quit', 'exit', or 'stop' to end.")
	cmd.Println()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("Your question: ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(question) {
		case "quit", "exit", "stop":
			cmd.Println("Goodbye.")
			return nil
		case "":
			cmd.Println("Please enter a question.")
			cmd.Println()
			continue
		}

		result, err := chatService.Ask(ctx, question)
		if err != nil {
			cmd.Printf("Error: %v\n\n", err)
			continue
		}

		printChatAnswer(cmd, result)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	cmd.Println()
	cmd.Println("Goodbye.")
	return nil
}

func printChatAnswer(cmd *cobra.Command, result *domain.AnswerResult) {
	cmd.Println()
	cmd.Println(result.Answer)

	if len(result.Sources) > 0 {
		cmd.Println()
		cmd.Printf("Sources (%d):\n", len(result.Sources))
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.SourceID, src.Similarity)
		}
	}

	cmd.Println()
}
