// Package terminal owns the interactive terminal: raw mode, key input and
// full-screen redraws.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"Ossctl/internal/errs"
	"Ossctl/internal/listing"
	"Ossctl/internal/render"
)

const clearScreen = "\x1b[H\x1b[2J"

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Acquire puts f into raw mode. The returned release restores the previous
// state and is safe to call more than once.
func Acquire(f *os.File) (release func(), err error) {
	fd := int(f.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, errs.IO("enter raw mode", err)
	}
	released := false
	return func() {
		if released {
			return
		}
		released = true
		_ = term.Restore(fd, old)
	}, nil
}

// Keys reads single bytes from r and delivers them as key presses. The reader
// goroutine exits when r returns an error.
type Keys struct {
	ch chan keyEvent
}

type keyEvent struct {
	key rune
	err error
}

func NewKeys(r io.Reader) *Keys {
	k := &Keys{ch: make(chan keyEvent, 16)}
	go k.read(r)
	return k
}

func (k *Keys) read(r io.Reader) {
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			k.ch <- keyEvent{key: rune(buf[0])}
		}
		if err != nil {
			k.ch <- keyEvent{err: err}
			close(k.ch)
			return
		}
	}
}

// Poll waits up to timeout for a key. ok is false when no key arrived. Once
// the input is closed every call reports a quit key.
func (k *Keys) Poll(timeout time.Duration) (key rune, ok bool, err error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case ev, open := <-k.ch:
		switch {
		case !open, ev.err == io.EOF:
			return 'q', true, nil
		case ev.err != nil:
			return 0, false, errs.IO("read key", ev.err)
		}
		return ev.key, true, nil
	case <-t.C:
		return 0, false, nil
	}
}

// Screen redraws the whole terminal for each page.
type Screen struct {
	w io.Writer
}

func NewScreen(w io.Writer) *Screen {
	return &Screen{w: w}
}

// Show draws page with the navigation hint below it.
func (s *Screen) Show(page listing.ClassifiedPage, isLast bool) error {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(render.Grid(page))
	b.WriteString("\n")
	b.WriteString(render.Hint(isLast))
	b.WriteString("\n")
	return s.write(b.String())
}

// Status replaces the screen with a single line.
func (s *Screen) Status(msg string) error {
	return s.write(clearScreen + msg + "\n")
}

// write converts newlines to CRLF, which raw mode no longer does for us.
func (s *Screen) write(text string) error {
	text = strings.ReplaceAll(text, "\n", "\r\n")
	if _, err := fmt.Fprint(s.w, text); err != nil {
		return errs.IO("draw", err)
	}
	return nil
}
