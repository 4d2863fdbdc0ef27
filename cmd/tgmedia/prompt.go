package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/term"

	"tgmedia/pkg/telegram"
	"tgmedia/pkg/ui"
)

// prompter asks questions on a line-oriented terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal used for hidden input, -1 when stdin is not a terminal
	fd int
}

func newPrompter() *prompter {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fd = -1
	}
	return &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout, fd: fd}
}

func newTestPrompter(input string, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(strings.NewReader(input)), out: out, fd: -1}
}

// line reads one trimmed line. A last line without newline is accepted.
func (p *prompter) line() (string, error) {
	text, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Ask returns the answer or def when the answer is empty
func (p *prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s %s: ", ui.Cyan(label), ui.Dim("("+def+")"))
	} else {
		fmt.Fprintf(p.out, "%s: ", ui.Cyan(label))
	}
	answer, err := p.line()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskChoice repeats the question until the answer is one of choices
func (p *prompter) AskChoice(label string, choices []string, def string) (string, error) {
	full := fmt.Sprintf("%s [%s]", label, strings.Join(choices, "/"))
	for {
		answer, err := p.Ask(full, def)
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		if slices.Contains(choices, answer) {
			return answer, nil
		}
		fmt.Fprintln(p.out, ui.Red("Please select one of the available options"))
	}
}

// AskInt repeats the question until the answer is a positive integer
func (p *prompter) AskInt(label string, def int) (int, error) {
	defText := ""
	if def > 0 {
		defText = strconv.Itoa(def)
	}
	for {
		answer, err := p.Ask(label, defText)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 {
			return n, nil
		}
		fmt.Fprintln(p.out, ui.Red("Please enter a positive whole number"))
	}
}

// Confirm asks a yes/no question
func (p *prompter) Confirm(label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", ui.Cyan(label), hint)
		answer, err := p.line()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, ui.Red("Please answer y or n"))
	}
}

// Secret reads a value without echo when stdin is a terminal
func (p *prompter) Secret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", ui.Cyan(label))
	if p.fd >= 0 {
		value, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(value)), nil
	}
	return p.line()
}

// telegramPrompt adapts the prompter to the sign-in flow
func (p *prompter) telegramPrompt() telegram.PromptFunc {
	return func(ctx context.Context, label string, hidden bool) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if hidden {
			return p.Secret(label)
		}
		return p.Ask(label, "")
	}
}
