// Package prompt asks yes/no questions on an interactive terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirmer reads yes/no answers. In and Out default to the process
// stdin/stdout; IsInteractive guards against prompting a pipe.
type Confirmer struct {
	In            io.Reader
	Out           io.Writer
	IsInteractive func() bool
}

func DefaultConfirmer() Confirmer {
	return Confirmer{
		In:  os.Stdin,
		Out: os.Stdout,
		IsInteractive: func() bool {
			info, err := os.Stdin.Stat()
			if err != nil {
				return false
			}
			return (info.Mode() & os.ModeCharDevice) != 0
		},
	}
}

// Ask prints question and reads one line. Only "y" or "yes"
// (case-insensitive) count as confirmation.
func (c Confirmer) Ask(question string) (bool, error) {
	if c.IsInteractive == nil || !c.IsInteractive() {
		return false, fmt.Errorf("stdin is not a terminal: pass -y to confirm non-interactively")
	}
	if c.Out != nil {
		fmt.Fprintf(c.Out, "%s [y/N]: ", question)
	}
	reader := bufio.NewReader(c.In)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// ConfirmOverwrite asks before clobbering an existing output file.
// force skips the question entirely.
func (c Confirmer) ConfirmOverwrite(path string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return c.Ask(fmt.Sprintf("Output file %s already exists. Overwrite?", path))
}
