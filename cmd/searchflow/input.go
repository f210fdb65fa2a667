package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/smallnest/searchflow/paging"
	"github.com/smallnest/searchflow/search"
	"github.com/smallnest/searchflow/state"
)

type commandKind int

const (
	cmdPhrase commandKind = iota
	cmdMore
	cmdScroll
	cmdClear
	cmdQuit
)

type command struct {
	kind   commandKind
	phrase string
	first  int
}

// parseLine maps one line of input to a command. Lines starting with a
// colon are control commands, anything else is a search phrase.
func parseLine(line string) (command, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, ":") {
		return command{kind: cmdPhrase, phrase: line}, nil
	}
	fields := strings.Fields(trimmed)
	switch fields[0] {
	case ":more":
		return command{kind: cmdMore}, nil
	case ":clear":
		return command{kind: cmdClear}, nil
	case ":quit", ":q":
		return command{kind: cmdQuit}, nil
	case ":scroll":
		if len(fields) != 2 {
			return command{}, fmt.Errorf("usage: :scroll <first visible row>")
		}
		first, err := strconv.Atoi(fields[1])
		if err != nil || first < 0 {
			return command{}, fmt.Errorf("invalid row %q", fields[1])
		}
		return command{kind: cmdScroll, first: first}, nil
	}
	return command{}, fmt.Errorf("unknown command %s", fields[0])
}

// input turns lines into phrase and edge signals. Phrases and edges are
// sent from one goroutine, so the orchestrator sees them in line order.
type input struct {
	detector *paging.EdgeDetector
	// window is the number of rows a renderer shows at once.
	window  int
	current func() state.ViewState
	errOut  io.Writer
}

// readLines pumps lines from r until EOF. Reads cannot be interrupted, so
// the goroutine outlives a cancelled run until the next line or EOF.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// run forwards commands until :quit, EOF or ctx is done. It closes both
// output channels on return.
func (in *input) run(ctx context.Context, lines <-chan string, phrases chan<- string, edges chan<- struct{}) error {
	defer close(phrases)
	defer close(edges)

	var normalizer search.Normalizer
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}

		cmd, err := parseLine(line)
		if err != nil {
			fmt.Fprintln(in.errOut, err)
			continue
		}

		switch cmd.kind {
		case cmdQuit:
			return nil
		case cmdPhrase, cmdClear:
			phrase, changed := normalizer.Next(cmd.phrase)
			if changed && !send(ctx, phrases, phrase) {
				return nil
			}
		case cmdMore:
			if !send(ctx, edges, struct{}{}) {
				return nil
			}
		case cmdScroll:
			total := len(in.current().ListItems())
			if in.detector.Reached(total, cmd.first, in.window) {
				if !send(ctx, edges, struct{}{}) {
					return nil
				}
			}
		}
	}
}

func send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
