// Package term holds the shared terminal state the kernel prints
// through. Services and the scheduler write diagnostics here; the
// state serializes access to the console driver.
package term

import (
	"sync"

	"github.com/architector1324/vnix/pkg/drv"
)

// Term is the write-through terminal shared by every task.
type Term struct {
	mu   sync.Mutex
	pos  int // column cursor of the last unfinished line
	cols int
}

func New() *Term {
	return &Term{}
}

// Print writes s to the console driver.
func (t *Term) Print(cli drv.CLI, s string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cols == 0 {
		if cols, _, err := cli.Res(); err == nil && cols > 0 {
			t.cols = cols
		} else {
			t.cols = 80
		}
	}

	if _, err := cli.Write([]byte(s)); err != nil {
		return err
	}
	for _, r := range s {
		if r == '\n' {
			t.pos = 0
			continue
		}
		t.pos++
		if t.pos == t.cols {
			t.pos = 0
		}
	}
	return nil
}

// Println writes s followed by a newline.
func (t *Term) Println(cli drv.CLI, s string) error {
	return t.Print(cli, s+"\n")
}

// Clear clears the console and resets the cursor.
func (t *Term) Clear(cli drv.CLI) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pos = 0
	return cli.Clear()
}
