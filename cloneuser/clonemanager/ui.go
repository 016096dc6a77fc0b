package clonemanager

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// UI abstracts operator interaction so the confirmation gate stays
// testable without a terminal.
type UI interface {
	Println(a ...any)
	Printf(format string, a ...any)
	Confirm(prompt string) (bool, error)
}

type stdUI struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdUI returns a UI backed by the given streams.
func NewStdUI(in io.Reader, out io.Writer) UI {
	return &stdUI{
		in:  bufio.NewReader(in),
		out: out,
	}
}

func (u *stdUI) Println(a ...any) {
	fmt.Fprintln(u.out, a...)
}

func (u *stdUI) Printf(format string, a ...any) {
	fmt.Fprintf(u.out, format, a...)
}

// Confirm asks a yes/no question. Only "y" or "yes", case-insensitive,
// counts as affirmative; anything else declines.
func (u *stdUI) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(u.out, "%s [y/n] ", prompt)

	text, err := u.in.ReadString('\n')
	if err != nil && text == "" {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(text))
	return answer == "y" || answer == "yes", nil
}
