package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

const prompt = "slots> "

// errInterrupted stops a script when a signal arrives between lines.
var errInterrupted = errors.New("interrupted")

// isTerminal reports whether r is a terminal the line editor can drive.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}

// runScript executes commands one by one and stops at the first error.
func runScript(sh *Shell, lines []string, sigCh <-chan os.Signal) error {
	for n, line := range lines {
		if interrupted(sigCh) {
			return errInterrupted
		}

		quit, err := sh.Exec(line)
		if err != nil {
			return fmt.Errorf("command %d (%s): %w", n+1, strings.TrimSpace(line), err)
		}

		if quit {
			return nil
		}
	}

	return nil
}

// runLines reads commands from a non-interactive reader with the same
// stop-at-first-error rule as runScript. Blank lines and # comments are skipped.
func runLines(sh *Shell, r io.Reader, sigCh <-chan os.Signal) error {
	scanner := bufio.NewScanner(r)

	n := 0

	for scanner.Scan() {
		n++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if interrupted(sigCh) {
			return errInterrupted
		}

		quit, err := sh.Exec(line)
		if err != nil {
			return fmt.Errorf("line %d (%s): %w", n, line, err)
		}

		if quit {
			return nil
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	return nil
}

// runInteractive drives the shell through a line editor. Command errors are
// printed and the loop continues.
func runInteractive(sh *Shell, o *IO, historyPath string, sigCh <-chan os.Signal) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(completions)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
	}

	defer saveHistory(line, historyPath)

	o.Printf("slotsctl - %s mode, capacity %d\n", sh.tbl.mode(), sh.tbl.capacity())
	o.Println("Type 'help' for available commands.")

	for {
		if interrupted(sigCh) {
			return nil
		}

		input, err := line.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				o.Println()
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		quit, err := sh.Exec(input)
		if err != nil {
			o.ErrPrintln("error:", err)
			continue
		}

		if quit {
			return nil
		}
	}
}

func saveHistory(line *liner.State, path string) {
	if path == "" {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		return
	}

	_, _ = line.WriteHistory(f)
	_ = f.Close()
}

func interrupted(sigCh <-chan os.Signal) bool {
	if sigCh == nil {
		return false
	}

	select {
	case <-sigCh:
		return true
	default:
		return false
	}
}
