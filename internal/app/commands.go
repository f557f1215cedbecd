package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bethropolis/tangent/internal/logger"
)

// CommandFunc runs a command. args are the whitespace-separated arguments;
// raw is everything after the command name and one separating space.
type CommandFunc func(args []string, raw string) error

// ErrUnknownCommand is returned by Execute for unregistered names.
var ErrUnknownCommand = errors.New("unknown command")

var textEscapes = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`)

// RegisterCommand adds or replaces a command.
func (a *App) RegisterCommand(name string, fn CommandFunc) {
	if _, exists := a.commands[name]; exists {
		logger.Debugf("App: replacing command '%s'", name)
	}
	a.commands[name] = fn
}

// Execute parses and runs one command line. Blank lines and lines starting
// with '#' are ignored.
func (a *App) Execute(line string) error {
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return nil
	}
	name, raw, _ := strings.Cut(trimmed, " ")
	cmdFunc, exists := a.commands[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	logger.Debugf("App: executing '%s' with %q", name, raw)
	return cmdFunc(strings.Fields(raw), raw)
}

// Run executes commands from r line by line, stopping at the first failure.
// Any open insert session is closed at the end.
func (a *App) Run(r io.Reader) error {
	defer a.session.EndInsert()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if err := a.Execute(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
	return scanner.Err()
}

func (a *App) registerCommands() {
	s := a.session
	simple := func(fn func() error) CommandFunc {
		return func([]string, string) error { return fn() }
	}
	motion := func(fn func()) CommandFunc {
		return func([]string, string) error { fn(); return nil }
	}

	// Insert mode.
	a.RegisterCommand("i", func(_ []string, raw string) error {
		return s.TypeString(textEscapes.Replace(raw))
	})
	a.RegisterCommand("tab", simple(s.TypeTab))
	a.RegisterCommand("bs", simple(s.Backspace))
	a.RegisterCommand("del", simple(s.DeleteBackward))
	a.RegisterCommand("esc", motion(s.EndInsert))

	// Normal mode.
	a.RegisterCommand("x", simple(s.DeleteChar))
	a.RegisterCommand("dd", simple(s.DeleteLine))
	a.RegisterCommand("yy", simple(s.YankLine))
	a.RegisterCommand("p", simple(s.Paste))
	a.RegisterCommand("u", func([]string, string) error {
		_, err := s.Undo()
		return err
	})
	a.RegisterCommand("redo", func([]string, string) error {
		_, err := s.Redo()
		return err
	})

	// Motion.
	a.RegisterCommand("h", motion(s.MoveLeft))
	a.RegisterCommand("l", motion(s.MoveRight))
	a.RegisterCommand("k", simple(s.MoveUp))
	a.RegisterCommand("j", simple(s.MoveDown))
	a.RegisterCommand("0", simple(s.LineStart))
	a.RegisterCommand("$", simple(s.LineEnd))
	a.RegisterCommand("gg", motion(s.DocumentStart))
	a.RegisterCommand("G", motion(s.DocumentEnd))
	a.RegisterCommand("goto", a.gotoCommand)

	// File and inspection.
	a.RegisterCommand("w", a.writeCommand)
	a.RegisterCommand("print", a.printCommand)
	a.RegisterCommand("info", func([]string, string) error {
		_, err := fmt.Fprintln(a.out, a.doc.PerformanceInfo())
		return err
	})
	a.RegisterCommand("status", func([]string, string) error {
		_, err := fmt.Fprintln(a.out, strings.TrimRight(a.Status(80), " "))
		return err
	})
}

// gotoCommand moves to "goto LINE [COL]", both 1-based.
func (a *App) gotoCommand(args []string, _ string) error {
	if len(args) == 0 || len(args) > 2 {
		return errors.New("usage: goto LINE [COL]")
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid line %q: %w", args[0], err)
	}
	col := 1
	if len(args) == 2 {
		if col, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("invalid column %q: %w", args[1], err)
		}
	}
	a.session.EndInsert()
	offset, err := a.doc.LinePosition(line, col)
	if err != nil {
		return err
	}
	a.doc.MoveCursor(offset)
	return nil
}

// writeCommand saves to the document path or to "w PATH".
func (a *App) writeCommand(args []string, _ string) error {
	a.session.EndInsert()
	if len(args) > 0 {
		return a.doc.SaveAs(args[0])
	}
	return a.doc.Save()
}

// printCommand writes "print" (whole document) or "print LINE".
func (a *App) printCommand(args []string, _ string) error {
	if len(args) == 0 {
		text, err := a.doc.Text()
		if err != nil {
			return err
		}
		_, err = io.WriteString(a.out, text)
		return err
	}
	line, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid line %q: %w", args[0], err)
	}
	text, err := a.doc.Line(line)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, text)
	return err
}
