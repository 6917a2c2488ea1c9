package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	replyStyle  = lipgloss.NewStyle().PaddingLeft(2)
	hintStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// exitWords end the interactive session
var exitWords = map[string]bool{
	"exit":   true,
	"quit":   true,
	"keluar": true,
}

// assistant is the part of the application the prompt talks to
type assistant interface {
	Handle(ctx context.Context, utterance string) string
}

func runREPL(cmd *cobra.Command) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer a.close()

	return repl(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), a.container.Services().Assistant)
}

// repl reads one utterance per line until an exit word, EOF or cancellation
func repl(ctx context.Context, in io.Reader, out io.Writer, assistant assistant) error {
	fmt.Fprintln(out, titleStyle.Render("HR Assistant"))
	fmt.Fprintln(out, hintStyle.Render("Ketik pertanyaan atau perintah. 'help' untuk contoh, 'exit' untuk keluar."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitWords[strings.ToLower(line)] {
			fmt.Fprintln(out, hintStyle.Render("Sampai jumpa!"))
			return nil
		}

		fmt.Fprintln(out, replyStyle.Render(assistant.Handle(ctx, line)))

		if ctx.Err() != nil {
			return nil
		}
	}
}
