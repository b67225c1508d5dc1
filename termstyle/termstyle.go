// Package termstyle formats console messages for the release helper. It has
// no global state: colour is a property of the Printer value.
package termstyle

import (
	"fmt"
	"io"
	"strings"
)

// Style selects how a message is decorated.
type Style int

const (
	Plain Style = iota
	Header
	Step
	Success
	Warning
	Error
	Info
	Emphasis
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiHeader    = "\033[95m"
	ansiBlue      = "\033[94m"
	ansiCyan      = "\033[96m"
	ansiGreen     = "\033[92m"
	ansiYellow    = "\033[93m"
	ansiRed       = "\033[91m"
	headerRuleLen = 60
)

// Format decorates msg for style. With color false only the textual
// decoration (symbols, rules) is applied.
func Format(msg string, style Style, color bool) string {
	wrap := func(codes, s string) string {
		if !color {
			return s
		}
		return codes + s + ansiReset
	}

	switch style {
	case Header:
		rule := strings.Repeat("=", headerRuleLen)
		return "\n" + wrap(ansiHeader+ansiBold, rule) + "\n" +
			wrap(ansiHeader+ansiBold, msg) + "\n" +
			wrap(ansiHeader+ansiBold, rule) + "\n"
	case Step:
		return wrap(ansiBlue+ansiBold, msg)
	case Success:
		return wrap(ansiGreen, "✓ "+msg)
	case Warning:
		return wrap(ansiYellow, "⚠ "+msg)
	case Error:
		return wrap(ansiRed, "✗ "+msg)
	case Info:
		return wrap(ansiCyan, msg)
	case Emphasis:
		return wrap(ansiBold, msg)
	default:
		return msg
	}
}

// Printer writes styled lines to an output.
type Printer struct {
	W     io.Writer
	Color bool
}

// Sprint returns msg formatted with the printer's colour setting.
func (p Printer) Sprint(style Style, msg string) string {
	return Format(msg, style, p.Color)
}

// Println writes one styled line.
func (p Printer) Println(style Style, msg string) {
	fmt.Fprintln(p.W, p.Sprint(style, msg))
}

// Printf formats according to a format specifier and writes one styled line.
func (p Printer) Printf(style Style, format string, args ...interface{}) {
	p.Println(style, fmt.Sprintf(format, args...))
}

// StepLine writes "[Step n] text" with the step label styled.
func (p Printer) StepLine(n int, text string) {
	fmt.Fprintf(p.W, "%s %s\n", p.Sprint(Step, fmt.Sprintf("[Step %d]", n)), text)
}
