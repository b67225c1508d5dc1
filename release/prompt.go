package release

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mmame/txntools/termstyle"
)

// Prompter asks the operator questions.
type Prompter interface {
	// Ask returns the answer, or def when the answer is blank.
	Ask(prompt, def string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(prompt string) (bool, error)
}

// Console prompts on a terminal.
type Console struct {
	in  *bufio.Reader
	out termstyle.Printer
}

// NewConsole reads answers from in and writes prompts through out.
func NewConsole(in io.Reader, out termstyle.Printer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

func (c *Console) Ask(prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out.W, "%s [%s]: ", c.out.Sprint(termstyle.Info, prompt), def)
	} else {
		fmt.Fprintf(c.out.W, "%s: ", c.out.Sprint(termstyle.Info, prompt))
	}
	answer, err := c.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func (c *Console) Confirm(prompt string) (bool, error) {
	for {
		fmt.Fprintf(c.out.W, "%s (y/n): ", c.out.Sprint(termstyle.Warning, prompt))
		answer, err := c.readLine()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(c.out.W, "Please answer 'y' or 'n'")
	}
}

// readLine returns one trimmed line. A final line without newline is
// accepted; EOF with nothing read is an error.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
