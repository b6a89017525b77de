package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// InterruptHandler flags SIGINT and SIGTERM and cancels the watched context
// so batch stages stop at the next document boundary.
type InterruptHandler struct {
	mu          sync.Mutex
	interrupted bool
}

// NewInterruptHandler creates an interrupt handler.
func NewInterruptHandler() *InterruptHandler {
	return &InterruptHandler{}
}

// Watch returns a child context canceled when an interrupt signal arrives.
// The watcher unregisters itself once the context ends for any reason.
func (h *InterruptHandler) Watch(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			h.mu.Lock()
			h.interrupted = true
			h.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}

// WasInterrupted reports whether a signal arrived while watching.
func (h *InterruptHandler) WasInterrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interrupted
}

// InterruptNotice is the message to show after a run stopped early.
// resumeCmd names the command that picks the work back up.
func InterruptNotice(resumeCmd string) string {
	msg := FormatWarning("Run interrupted!") +
		"\n" + FormatInfo("Completed stages are already on disk.")
	if resumeCmd != "" {
		msg += "\n" + FormatInfo("Pick up where you left off with: "+resumeCmd)
	}
	return msg
}
