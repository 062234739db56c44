package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/benz9527/xrbtree/lib/tree"
)

// treePrinter writes the in-order walk of a tree, <X> for a red node and
// [X] for a black node.
type treePrinter struct {
	out   io.Writer
	red   *color.Color
	black *color.Color
}

func newTreePrinter(out io.Writer, colored bool) *treePrinter {
	p := &treePrinter{
		out:   out,
		red:   color.New(color.FgRed, color.Bold),
		black: color.New(color.FgYellow),
	}
	if colored {
		p.red.EnableColor()
		p.black.EnableColor()
	} else {
		p.red.DisableColor()
		p.black.DisableColor()
	}
	return p
}

func (p *treePrinter) Println(a ...any) {
	_, _ = fmt.Fprintln(p.out, a...)
}

func (p *treePrinter) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(p.out, format, a...)
}

func printInorder[K any, E any](p *treePrinter, t tree.RBTree[K, E], format func(elem E) string) {
	t.Foreach(func(idx int64, c tree.RBColor, elem E) bool {
		if idx > 0 {
			_, _ = io.WriteString(p.out, " ")
		}
		// Each token carries its own reset code.
		token := p.black.Sprintf("[%s]", format(elem))
		if c == tree.Red {
			token = p.red.Sprintf("<%s>", format(elem))
		}
		_, _ = io.WriteString(p.out, token)
		return true
	})
	_, _ = io.WriteString(p.out, "\n")
}
