package interrupt_test

// Notes:
// - Black-box tests; signals, clock and exit are injected through Options
// - ctx.Done() confirms the first signal was processed before sending the next
// - bytes.Buffer is not safe for concurrent use, so stderr goes to syncBuffer

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-formalize/internal/interrupt"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// clock returns the given instants in order, repeating the last one.
func clock(instants ...time.Time) func() time.Time {
	var (
		mu sync.Mutex
		i  int
	)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := instants[min(i, len(instants)-1)]
		i++
		return t
	}
}

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Fatal("context should be canceled after first signal")
	}
}

func waitExit(t *testing.T, code *atomic.Int32) {
	t.Helper()
	deadline := time.After(100 * time.Millisecond)
	for code.Load() == -1 {
		select {
		case <-deadline:
			t.Fatal("exitFunc should have been called")
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
}

// ---------------------------------------------------------------------------
// TestNewHandler - Default constructor
// ---------------------------------------------------------------------------

func TestNewHandler(t *testing.T) {
	t.Parallel()

	h, ctx := interrupt.NewHandler(context.Background(), "draining")
	if h == nil || ctx == nil {
		t.Fatal("NewHandler returned nil")
	}
	select {
	case <-ctx.Done():
		t.Fatal("context should not be canceled before any signal")
	default:
	}
	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false before any signal")
	}
	h.Stop()
}

// ---------------------------------------------------------------------------
// TestHandler_FirstInterrupt - Cancels the context and prints the notice
// ---------------------------------------------------------------------------

func TestHandler_FirstInterrupt(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	var stderr syncBuffer

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
		SigCh:  sigCh,
		Stderr: &stderr,
		Notice: "Shutting down, press Ctrl+C again to abort.",
	})
	defer h.Stop()

	sigCh <- os.Interrupt
	waitDone(t, ctx)

	if !h.WasInterrupted() {
		t.Error("WasInterrupted should be true after first signal")
	}
	if h.Aborted() {
		t.Error("Aborted should be false after one signal")
	}
	if !strings.Contains(stderr.String(), "press Ctrl+C again") {
		t.Errorf("stderr = %q, want notice", stderr.String())
	}
}

// ---------------------------------------------------------------------------
// TestHandler_SecondInterrupt - Window behavior
// ---------------------------------------------------------------------------

func TestHandler_SecondInterrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		second    time.Duration
		wantAbort bool
	}{
		{name: "within window aborts", second: time.Second, wantAbort: true},
		{name: "at window edge aborts", second: interrupt.Window, wantAbort: true},
		{name: "after window reopens", second: 3 * time.Second, wantAbort: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sigCh := make(chan os.Signal, 2)
			var stderr syncBuffer
			var exitCode atomic.Int32
			exitCode.Store(-1)

			h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{
				SigCh:    sigCh,
				ExitFunc: func(code int) { exitCode.Store(int32(code)) },
				NowFunc:  clock(t0, t0.Add(tt.second)),
				Stderr:   &stderr,
				Notice:   "notice",
			})
			defer h.Stop()

			sigCh <- os.Interrupt
			waitDone(t, ctx)
			sigCh <- os.Interrupt

			if tt.wantAbort {
				waitExit(t, &exitCode)
				if got := exitCode.Load(); got != interrupt.ExitInterrupt {
					t.Errorf("exit code = %d, want %d", got, interrupt.ExitInterrupt)
				}
				if !strings.Contains(stderr.String(), "Aborted.") {
					t.Errorf("stderr = %q, want Aborted.", stderr.String())
				}
				if !h.Aborted() {
					t.Error("Aborted should be true")
				}
				return
			}

			time.Sleep(50 * time.Millisecond)
			if exitCode.Load() != -1 {
				t.Error("exitFunc should not be called outside the window")
			}
			if got := strings.Count(stderr.String(), "notice"); got != 2 {
				t.Errorf("notice printed %d times, want 2", got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHandler_Stop - Prevents further signal processing
// ---------------------------------------------------------------------------

func TestHandler_Stop(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	h, _ := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{SigCh: sigCh})

	h.Stop()
	sigCh <- os.Interrupt
	time.Sleep(50 * time.Millisecond)

	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false after Stop")
	}
	h.Stop()
}

func TestHandler_NilSigCh(t *testing.T) {
	t.Parallel()

	h, ctx := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{})
	defer h.Stop()

	if ctx == nil {
		t.Fatal("context should not be nil")
	}
	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false with nil sigCh")
	}
}

func TestHandler_ChannelClosed(t *testing.T) {
	t.Parallel()

	sigCh := make(chan os.Signal, 2)
	h, _ := interrupt.NewHandlerWithOptions(context.Background(), interrupt.Options{SigCh: sigCh})
	defer h.Stop()

	close(sigCh)
	time.Sleep(50 * time.Millisecond)

	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false when channel closed without signal")
	}
}

func TestHandler_ParentContextCanceled(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithCancel(context.Background())
	h, ctx := interrupt.NewHandlerWithOptions(parent, interrupt.Options{SigCh: make(chan os.Signal, 1)})
	defer h.Stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
		t.Error("handler context should be canceled when parent is canceled")
	}
	if h.WasInterrupted() {
		t.Error("WasInterrupted should be false when canceled by parent")
	}
}

func TestConstants(t *testing.T) {
	t.Parallel()

	if interrupt.ExitInterrupt != 130 {
		t.Errorf("ExitInterrupt = %d, want 130", interrupt.ExitInterrupt)
	}
	if interrupt.Window != 2*time.Second {
		t.Errorf("Window = %v, want 2s", interrupt.Window)
	}
}
