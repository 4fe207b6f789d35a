package sim

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FrameSink hands out one writer per rendered frame.
type FrameSink interface {
	Frame(iter int) (io.WriteCloser, error)
}

// aborter is implemented by frame writers that can drop a partial frame.
type aborter interface {
	Abort() error
}

type discardSink struct{}

// DiscardSink renders every frame and throws the bytes away.
var DiscardSink FrameSink = discardSink{}

func (discardSink) Frame(int) (io.WriteCloser, error) {
	return nopCloser{io.Discard}, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// FileSink writes frame iter to fmt.Sprintf(Pattern, iter).
type FileSink struct {
	Pattern string
}

func (s FileSink) Path(iter int) string {
	return fmt.Sprintf(s.Pattern, iter)
}

func (s FileSink) Frame(iter int) (io.WriteCloser, error) {
	path := s.Path(iter)
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &frameFile{File: f}, nil
}

type frameFile struct {
	*os.File
}

func (f *frameFile) Abort() error {
	_ = f.File.Close()
	return os.Remove(f.File.Name())
}
