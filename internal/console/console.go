// Package console prints user-facing progress lines. Styling is bound to the
// destination writer, so output that is not a terminal stays plain text.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

type Console struct {
	out, errOut io.Writer

	ok   lipgloss.Style
	fail lipgloss.Style
	head lipgloss.Style
	dim  lipgloss.Style
}

func New(out, errOut io.Writer) *Console {
	ro := lipgloss.NewRenderer(out)
	re := lipgloss.NewRenderer(errOut)
	return &Console{
		out:    out,
		errOut: errOut,
		ok:     ro.NewStyle().Foreground(lipgloss.Color("#4ADF6A")).Bold(true),
		fail:   re.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		head:   ro.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true),
		dim:    ro.NewStyle().Foreground(lipgloss.Color("#AAAAAA")),
	}
}

func (c *Console) Saved(path string) {
	fmt.Fprintf(c.out, "%s Saved confusion matrix image: %s\n", c.ok.Render("✓"), path)
}

func (c *Console) Failed(path string, err error) {
	fmt.Fprintf(c.errOut, "%s Error processing %s: %v\n", c.fail.Render("✗"), path, err)
}

func (c *Console) Found(n int) {
	fmt.Fprintln(c.out, c.head.Render(fmt.Sprintf("Found %d confusion matrix file(s)", n)))
}

func (c *Console) NoneFound(root string) {
	fmt.Fprintf(c.out, "No confusion matrix CSV files found in %s\n", root)
}

func (c *Console) Summary(rendered, failed int) {
	fmt.Fprintln(c.out, c.dim.Render(fmt.Sprintf("Rendered %d, failed %d", rendered, failed)))
}

// Error reports a fatal problem.
func (c *Console) Error(err error) {
	fmt.Fprintf(c.errOut, "%s %v\n", c.fail.Render("Error:"), err)
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
