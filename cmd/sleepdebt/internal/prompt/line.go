// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// LinePrompter asks questions one line at a time.
//
// # Description
//
// Used when stdin is not a terminal (pipes, redirects, tests). Invalid
// answers print the validation message and the question is asked again.
// End of input and context cancellation both return ErrCancelled.
//
// # Thread Safety
//
// Not safe for concurrent use. A read interrupted by cancellation stays
// pending on the underlying reader; the next call picks up its line
// instead of starting a second read.
type LinePrompter struct {
	reader  *bufio.Reader
	writer  io.Writer
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewLinePrompter creates a LinePrompter over the given streams.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{
		reader: bufio.NewReader(in),
		writer: out,
	}
}

// Ask prints q.Title and reads answers until one validates.
func (p *LinePrompter) Ask(ctx context.Context, q Question) (string, error) {
	for {
		fmt.Fprint(p.writer, formatQuestion(q))

		line, err := p.readLine(ctx)
		if err != nil {
			return "", fmt.Errorf("ask %s: %w", q.Key, err)
		}

		answer, err := q.resolve(line)
		if err != nil {
			fmt.Fprintf(p.writer, "  ✗ %s\n", err)
			continue
		}
		return answer, nil
	}
}

// Confirm prints text with a [y/N] hint. An empty answer means no;
// anything other than y/yes/n/no is asked again.
func (p *LinePrompter) Confirm(ctx context.Context, text string) (bool, error) {
	for {
		fmt.Fprintf(p.writer, "%s [y/N]: ", text)

		line, err := p.readLine(ctx)
		if err != nil {
			return false, fmt.Errorf("confirm: %w", err)
		}

		switch strings.ToLower(line) {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		default:
			fmt.Fprintln(p.writer, "  ✗ please answer y or n")
		}
	}
}

// IsInteractive returns false.
func (p *LinePrompter) IsInteractive() bool {
	return false
}

// readLine reads one trimmed line. The read runs in its own goroutine so
// a signal-cancelled context unblocks the caller. The process usually
// exits right after a cancellation, leaving that goroutine parked in
// ReadString; a later call on the same prompter waits on it instead.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	if ctx.Err() != nil {
		return "", ErrCancelled
	}

	if p.pending == nil {
		p.pending = make(chan lineResult, 1)
		go func(done chan<- lineResult) {
			line, err := p.reader.ReadString('\n')
			done <- lineResult{line: line, err: err}
		}(p.pending)
	}

	select {
	case <-ctx.Done():
		return "", ErrCancelled
	case r := <-p.pending:
		p.pending = nil
		// Piped input may end without a trailing newline.
		if errors.Is(r.err, io.EOF) && r.line != "" {
			return strings.TrimSpace(r.line), nil
		}
		if errors.Is(r.err, io.EOF) {
			return "", ErrCancelled
		}
		if r.err != nil {
			return "", r.err
		}
		return strings.TrimSpace(r.line), nil
	}
}

// formatQuestion renders "Title (e.g. x) [default]: ".
func formatQuestion(q Question) string {
	var b strings.Builder
	b.WriteString(q.Title)
	if q.Placeholder != "" {
		fmt.Fprintf(&b, " (e.g. %s)", q.Placeholder)
	}
	if q.Default != "" {
		fmt.Fprintf(&b, " [%s]", q.Default)
	}
	b.WriteString(": ")
	return b.String()
}

var _ Prompter = (*LinePrompter)(nil)
