package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/dacapoday/jdb"
	"github.com/dacapoday/jdb/graph"
	"github.com/dacapoday/jdb/path"
	"golang.org/x/term"
)

// runBrowse opens filename and drives an interactive pager over its graph,
// one container at a time: j/k move the selection, Enter descends into a
// selected container, u goes back up, q/Esc/Ctrl+C quits.
func runBrowse(filename string) error {
	store, err := jdb.Open(filename)
	if err != nil {
		return err
	}
	defer store.Close()

	view, err := store.Root()
	if err != nil {
		return err
	}
	defer view.Abort()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	b := &browser{stack: []*graph.View{view.View}}
	if err := b.load(); err != nil {
		return err
	}

	fmt.Print("\033[?25l\033[2J")
	defer fmt.Print("\033[?25h\033[2J\033[H")

	reader := bufio.NewReader(os.Stdin)
	for {
		b.updateSize()
		b.render()

		c, err := reader.ReadByte()
		if err != nil {
			return nil
		}
		b.status = ""

		switch c {
		case 'q', 3, 27:
			return nil
		case 'j':
			if b.selected < len(b.entries)-1 {
				b.selected++
			}
		case 'k':
			if b.selected > 0 {
				b.selected--
			}
		case 'g':
			b.selected = 0
		case 'G':
			if len(b.entries) > 0 {
				b.selected = len(b.entries) - 1
			}
		case 'u':
			if len(b.stack) > 1 {
				b.stack = b.stack[:len(b.stack)-1]
				if err := b.load(); err != nil {
					b.status = err.Error()
				}
			}
		case '\r', '\n':
			if err := b.descend(); err != nil {
				b.status = err.Error()
			}
		}
	}
}

type entry struct {
	label string
	val   any
}

type browser struct {
	stack    []*graph.View
	entries  []entry
	selected int
	top      int
	width    int
	height   int
	status   string
}

func (b *browser) current() *graph.View {
	return b.stack[len(b.stack)-1]
}

func (b *browser) load() error {
	b.entries = nil
	b.selected = 0
	b.top = 0

	v := b.current()
	it := v.Iterate()
	defer it.Close()

	if v.Kind() == graph.ArrayKind {
		for it.Next() {
			idx, val, _ := it.ArrayEntry()
			b.entries = append(b.entries, entry{label: fmt.Sprintf("[%d]", idx), val: val})
		}
	} else {
		for it.Next() {
			key, val, _ := it.ObjectEntry()
			b.entries = append(b.entries, entry{label: key, val: val})
		}
	}
	return it.Err()
}

func (b *browser) descend() error {
	if b.selected >= len(b.entries) {
		return nil
	}
	child, ok := b.entries[b.selected].val.(*graph.View)
	if !ok {
		return fmt.Errorf("not a container")
	}
	b.stack = append(b.stack, child)
	return b.load()
}

func (b *browser) updateSize() {
	w, h, err := term.GetSize(int(os.Stdin.Fd()))
	if err != nil {
		w, h = 80, 24
	}
	b.width, b.height = w, h
}

func (b *browser) lines() int {
	n := b.height - 4
	if n < 1 {
		n = 1
	}
	return n
}

func (b *browser) breadcrumb() string {
	p := b.current().Path()
	if len(p) == 0 {
		return "/"
	}
	var sb strings.Builder
	for _, s := range p {
		if s.Kind == path.IndexStepKind {
			fmt.Fprintf(&sb, "[%d]", s.Index)
		} else {
			sb.WriteByte('.')
			sb.WriteString(s.Key)
		}
	}
	return sb.String()
}

func (b *browser) render() {
	var out strings.Builder
	out.WriteString("\033[H")
	out.WriteString(fmt.Sprintf("[ jview ] %s\033[K\r\n", b.breadcrumb()))
	out.WriteString(strings.Repeat("─", b.width))
	out.WriteString("\033[K\r\n")

	lines := b.lines()
	// keep the selection on screen
	if b.selected < b.top {
		b.top = b.selected
	}
	if b.selected >= b.top+lines {
		b.top = b.selected - lines + 1
	}
	for i := 0; i < lines; i++ {
		row := b.top + i
		if row < len(b.entries) {
			marker := "  "
			if row == b.selected {
				marker = "> "
			}
			out.WriteString(marker)
			out.WriteString(describeEntry(b.entries[row], b.width-2))
		} else {
			out.WriteString("~")
		}
		out.WriteString("\033[K\r\n")
	}

	out.WriteString(strings.Repeat("─", b.width))
	out.WriteString("\033[K\r\n")
	if b.status != "" {
		out.WriteString(" " + b.status)
	} else {
		out.WriteString(" j/k:move enter:open u:up q:quit")
	}
	out.WriteString("\033[K")

	fmt.Print(out.String())
}

func describeEntry(e entry, width int) string {
	switch v := e.val.(type) {
	case *graph.View:
		kind := "object"
		if v.Kind() == graph.ArrayKind {
			kind = "array"
		}
		return truncate(fmt.Sprintf("%s: <%s>", e.label, kind), width)
	default:
		return truncate(fmt.Sprintf("%s: %v", e.label, v), width)
	}
}

func truncate(s string, width int) string {
	if width < 4 || len(s) <= width {
		return s
	}
	return s[:width-3] + "..."
}
