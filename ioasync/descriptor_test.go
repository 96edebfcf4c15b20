//go:build unix

package ioasync

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-coro/api"
	"github.com/momentics/hioload-coro/corogo"
)

// fakePoller treats every requested fd as immediately readable/writable;
// good enough to exercise the Read/Write suspend-and-retry loop without a
// real reactor backend registered.
type fakePoller struct{}

func (fakePoller) Poll(ps corogo.PollSet, now time.Time) ([]corogo.PollOutcome, bool, error) {
	var out []corogo.PollOutcome
	for _, fd := range ps.Reads {
		out = append(out, corogo.PollOutcome{Fd: fd, Ready: api.ReadinessRead})
	}
	for _, fd := range ps.Writes {
		out = append(out, corogo.PollOutcome{Fd: fd, Ready: api.ReadinessWrite})
	}
	return out, false, nil
}

func testRuntime() *corogo.Runtime {
	return &corogo.Runtime{Poller: fakePoller{}, Clock: api.SystemClock{}}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	a := NewDescriptor(fds[0])
	b := NewDescriptor(fds[1])
	defer a.Close()
	defer b.Close()

	payload := []byte("hello coroutine")

	fut := corogo.Go(func(y *corogo.Yielder) (int, error) {
		return a.Write(y, payload, api.Eager)
	})
	n, err := fut.GetWith(testRuntime())
	if err != nil || n != len(payload) {
		t.Fatalf("Write = %d, %v; want %d, nil", n, err, len(payload))
	}

	readFut := corogo.Go(func(y *corogo.Yielder) ([]byte, error) {
		buf := make([]byte, len(payload))
		n, err := b.Read(y, buf, api.Eager)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	})
	got, err := readFut.GetWith(testRuntime())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("Read = %q, want %q", got, payload)
	}
}

func TestSendVectoredWritesWholeBuffersThenPartialFront(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	a := NewDescriptor(fds[0])
	b := NewDescriptor(fds[1])
	defer a.Close()
	defer b.Close()

	bufs := [][]byte{[]byte("hello "), []byte("vectored "), []byte("send")}
	want := "hello vectored send"

	fut := corogo.Go(func(y *corogo.Yielder) (int, error) {
		return a.Send(y, bufs, api.Eager)
	})
	n, err := fut.GetWith(testRuntime())
	if err != nil || n != len(want) {
		t.Fatalf("Send = %d, %v; want %d, nil", n, err, len(want))
	}

	readBuf := make([]byte, 64)
	got := 0
	for got < len(want) {
		m, err := b.ReadSome(readBuf[got:])
		if err != nil {
			t.Fatalf("ReadSome: %v", err)
		}
		got += m
	}
	if string(readBuf[:got]) != want {
		t.Fatalf("read %q, want %q", readBuf[:got], want)
	}
}

func TestReadLoopsUntilBufferFullAcrossShortReads(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	a := NewDescriptor(fds[0])
	b := NewDescriptor(fds[1])
	defer a.Close()
	defer b.Close()

	first := []byte("hello ")
	second := []byte("world!")
	full := append(append([]byte{}, first...), second...)

	if _, err := a.WriteSome(first); err != nil {
		t.Fatalf("WriteSome(first): %v", err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		if _, err := a.WriteSome(second); err != nil {
			t.Errorf("WriteSome(second): %v", err)
		}
	}()

	readFut := corogo.Go(func(y *corogo.Yielder) ([]byte, error) {
		buf := make([]byte, len(full))
		n, err := b.Read(y, buf, api.Eager)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	})
	got, err := readFut.GetWith(testRuntime())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(full) {
		t.Fatalf("Read across two short writes = %q, want %q", got, full)
	}
}

func TestReadShortReturnsOnEOF(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	a := NewDescriptor(fds[0])
	b := NewDescriptor(fds[1])
	defer b.Close()

	payload := []byte("partial")
	if _, err := a.WriteSome(payload); err != nil {
		t.Fatalf("WriteSome: %v", err)
	}
	a.Close()

	readFut := corogo.Go(func(y *corogo.Yielder) ([]byte, error) {
		buf := make([]byte, len(payload)+16)
		n, err := b.Read(y, buf, api.Eager)
		if err != nil {
			return nil, err
		}
		return buf[:n], nil
	})
	got, err := readFut.GetWith(testRuntime())
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("Read = %q, want short return %q", got, payload)
	}
}

func TestEagerAndLazyReadProduceIdenticalContents(t *testing.T) {
	payload := []byte("identical across eager and lazy paths")

	run := func(mode api.IOMode) []byte {
		fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
		if err != nil {
			t.Fatalf("Socketpair: %v", err)
		}
		a := NewDescriptor(fds[0])
		b := NewDescriptor(fds[1])
		defer a.Close()
		defer b.Close()

		if _, err := a.WriteSome(payload); err != nil {
			t.Fatalf("WriteSome: %v", err)
		}

		readFut := corogo.Go(func(y *corogo.Yielder) ([]byte, error) {
			buf := make([]byte, len(payload))
			n, err := b.Read(y, buf, mode)
			if err != nil {
				return nil, err
			}
			return buf[:n], nil
		})
		got, err := readFut.GetWith(testRuntime())
		if err != nil {
			t.Fatalf("Read (mode=%v): %v", mode, err)
		}
		return got
	}

	eager := run(api.Eager)
	lazy := run(api.Lazy)
	if string(eager) != string(payload) {
		t.Fatalf("eager read = %q, want %q", eager, payload)
	}
	if string(lazy) != string(payload) {
		t.Fatalf("lazy read = %q, want %q", lazy, payload)
	}
	if string(eager) != string(lazy) {
		t.Fatalf("eager and lazy reads diverged: %q vs %q", eager, lazy)
	}
}

func TestReadSomeWouldBlockOnEmptySocket(t *testing.T) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	a := NewDescriptor(fds[0])
	defer a.Close()
	defer NewDescriptor(fds[1]).Close()

	buf := make([]byte, 16)
	_, err = a.ReadSome(buf)
	if !api.IsWouldBlock(err) {
		t.Fatalf("ReadSome on empty socket = %v, want a WouldBlock error", err)
	}
}
