package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/deckscore/deckscore/internal/model"
)

// ErrLabelingCanceled is returned when the user quits an interactive
// labeling session.
var ErrLabelingCanceled = errors.New("labeling canceled")

// ErrInputCanceled is returned when a read is cut short by context
// cancellation.
var ErrInputCanceled = errors.New("input canceled")

// Labeler collects axis labels for documents over a terminal conversation.
type Labeler struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLabeler creates a Labeler reading choices from in and prompting on out.
func NewLabeler(in io.Reader, out io.Writer) *Labeler {
	return &Labeler{in: bufio.NewReader(in), out: out}
}

// PromptRow walks the four axes for one document. For each axis the current
// value is shown: enter keeps it, a number picks from the category list, a
// category name is taken as typed, "-" clears the label and "q" aborts the
// session with ErrLabelingCanceled.
func (l *Labeler) PromptRow(ctx context.Context, row model.LabelRow) (model.LabelRow, error) {
	fmt.Fprintln(l.out, FormatTitle("Labeling "+row.Doc))

	for _, axis := range model.AllAxes() {
		value, err := l.promptAxis(ctx, axis, row.Get(axis))
		if err != nil {
			return model.LabelRow{}, err
		}
		if err := row.Set(axis, value); err != nil {
			return model.LabelRow{}, err
		}
	}
	return row, nil
}

func (l *Labeler) promptAxis(ctx context.Context, axis model.Axis, current string) (string, error) {
	categories := axis.Categories()

	fmt.Fprintln(l.out)
	header := BoldStyle.Render(axis.String())
	if current != "" {
		header += SubtleStyle.Render(" (current: " + current + ")")
	}
	fmt.Fprintln(l.out, header)
	for i, category := range categories {
		fmt.Fprintf(l.out, "  %d. %s\n", i+1, category)
	}

	for {
		fmt.Fprint(l.out, FormatPrompt("enter keeps, number or name picks, - clears, q quits"))
		line, err := l.readLine(ctx)
		if err != nil {
			return "", err
		}

		switch line {
		case "":
			return current, nil
		case "-":
			return "", nil
		case "q", "Q":
			return "", ErrLabelingCanceled
		}

		if n, convErr := strconv.Atoi(line); convErr == nil {
			if n >= 1 && n <= len(categories) {
				return categories[n-1], nil
			}
			fmt.Fprintln(l.out, FormatWarning(fmt.Sprintf("pick a number between 1 and %d", len(categories))))
			continue
		}
		if axis.ValidCategory(line) {
			return line, nil
		}
		fmt.Fprintln(l.out, FormatWarning(fmt.Sprintf("%q is not a %s category", line, axis)))
	}
}

// readLine reads one trimmed line without blocking past context
// cancellation. A canceled read leaves its goroutine parked on the reader,
// so a Labeler is done after the first ErrInputCanceled.
func (l *Labeler) readLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	ch := make(chan result, 1)

	go func() {
		value, err := l.in.ReadString('\n')
		ch <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ErrInputCanceled
	case res := <-ch:
		line := strings.TrimSpace(res.value)
		if res.err != nil && line == "" {
			return "", res.err
		}
		return line, nil
	}
}
