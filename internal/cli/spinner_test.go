package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/crimeviz/pkg/errors"
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

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "loading records")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "loading records") {
		t.Errorf("spinner output missing message: %q", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("spinner should clear its line on stop: %q", got)
	}
}

func TestSpinnerCancelledByContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := newSpinnerTo(ctx, &syncBuffer{}, "waiting")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	if !s.Cancelled() {
		t.Error("spinner should be cancelled after the context times out")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinnerTo(context.Background(), &syncBuffer{}, "stop")
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerWithoutTerminal(t *testing.T) {
	var out syncBuffer
	s := newSpinnerTo(context.Background(), &out, "quiet")
	s.animate = false
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	if out.String() != "" {
		t.Errorf("non-terminal spinner wrote %q", out.String())
	}
}

func TestSpin(t *testing.T) {
	n, err := spin(context.Background(), "work", func() (int, error) { return 7, nil })
	if n != 7 || err != nil {
		t.Errorf("spin() = %d, %v", n, err)
	}
	_, err = spin(context.Background(), "work", func() (int, error) {
		return 0, errors.New(errors.ErrCodeTimeout, "slow")
	})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("spin() should pass the error through, got %v", err)
	}
}
