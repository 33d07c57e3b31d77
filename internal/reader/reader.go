// Package reader feeds candidate lines into the engine, either from an
// io.Reader (piped stdin) or from a spawned shell command. Each line is
// appended exactly once, in arrival order; EOF seals the store.
package reader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/asheshgoplani/sift/internal/item"
	"github.com/asheshgoplani/sift/internal/logging"
)

var log = logging.ForComponent(logging.CompReader)

// maxLineSize caps a single candidate line at 1MB.
const maxLineSize = 1 << 20

// Sink receives produced lines. *engine.Engine satisfies it.
type Sink interface {
	Append(text string) int
	Seal()
}

// FromReader streams lines from r into sink until EOF or ctx
// cancellation, then seals the sink. Returns nil on clean EOF and on
// cancellation; cancellation of the producer is normal shutdown, not a
// failure.
func FromReader(ctx context.Context, r io.Reader, sink Sink) error {
	defer sink.Seal()

	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 64*1024), maxLineSize)
	count := 0
	for scan.Scan() {
		select {
		case <-ctx.Done():
			log.Debug("reader interrupted", "lines", count)
			return nil
		default:
		}
		sink.Append(item.TrimLineEnding(scan.Text()))
		count++
	}
	if err := scan.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("read input: %w", err)
	}
	log.Debug("reader done", "lines", count)
	return nil
}

// FromCommand runs command through the shell and streams its stdout
// into sink. Cancelling ctx kills the process; a killed producer is
// treated as clean termination since the user superseded it.
func FromCommand(ctx context.Context, command string, sink Sink) error {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		sink.Seal()
		return fmt.Errorf("producer pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		sink.Seal()
		return fmt.Errorf("start producer: %w", err)
	}

	readErr := FromReader(ctx, stdout, sink)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		// A producer that dies after emitting lines is surfaced to the
		// caller; whatever it produced stays usable.
		log.Warn("producer command failed", "command", command, "err", err)
		return fmt.Errorf("producer %q: %w", command, err)
	}
	return readErr
}
