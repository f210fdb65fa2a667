package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/smallnest/searchflow/state"
	"github.com/smallnest/searchflow/stream"
)

type styles struct {
	header  lipgloss.Style
	status  lipgloss.Style
	ordinal lipgloss.Style
	name    lipgloss.Style
	muted   lipgloss.Style
	err     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#2DD4BF")),
		status:  r.NewStyle().Foreground(lipgloss.Color("#64748B")),
		ordinal: r.NewStyle().Foreground(lipgloss.Color("#64748B")).Width(5).Align(lipgloss.Right),
		name:    r.NewStyle().Bold(true),
		muted:   r.NewStyle().Italic(true).Foreground(lipgloss.Color("#64748B")),
		err:     r.NewStyle().Foreground(lipgloss.Color("#EF4444")),
	}
}

// renderer prints every distinct state it receives as a full screen.
type renderer struct {
	out    io.Writer
	styles styles
	last   *state.ViewState
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out, styles: newStyles(lipgloss.NewRenderer(out))}
}

func (r *renderer) view(vs state.ViewState) string {
	var b strings.Builder

	phrase := vs.Phrase
	if phrase == "" {
		phrase = "(no search)"
	}
	b.WriteString(r.styles.header.Render("search: " + phrase))
	b.WriteString(" ")
	b.WriteString(r.styles.status.Render("[" + vs.Status.String() + "]"))
	b.WriteString("\n")

	if vs.Status == state.LoadingFresh {
		b.WriteString(r.styles.muted.Render("searching..."))
		b.WriteString("\n")
	}

	for _, item := range vs.ListItems() {
		switch it := item.(type) {
		case state.ProfileItem:
			line := fmt.Sprintf("%s %s", r.styles.ordinal.Render(fmt.Sprintf("%d.", it.Ordinal)), r.styles.name.Render(it.Profile.Name))
			if it.Profile.Title != "" {
				line += " " + r.styles.status.Render(it.Profile.Title)
			}
			b.WriteString(line)
			b.WriteString("\n")
		case state.LoadingMoreItem:
			b.WriteString(r.styles.muted.Render("loading more..."))
			b.WriteString("\n")
		case state.NoMoreResultsItem:
			b.WriteString(r.styles.muted.Render("no more results"))
			b.WriteString("\n")
		}
	}

	if msg := vs.ErrorMessage(); msg != "" {
		b.WriteString(r.styles.err.Render("error: " + msg))
		b.WriteString("\n")
	}
	if vs.HasNoResults() && vs.Err == nil {
		b.WriteString(r.styles.muted.Render("no results for " + vs.Phrase))
		b.WriteString("\n")
	}
	return b.String()
}

// print writes vs unless it equals the previously printed state.
func (r *renderer) print(vs state.ViewState) error {
	if r.last != nil && r.last.Equal(vs) {
		return nil
	}
	r.last = &vs
	_, err := io.WriteString(r.out, r.view(vs)+"\n")
	return err
}

// run renders until the subscription ends or ctx is done.
func (r *renderer) run(ctx context.Context, sub *stream.Subscription[state.ViewState]) error {
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return nil
		case vs, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := r.print(vs); err != nil {
				return err
			}
		}
	}
}
