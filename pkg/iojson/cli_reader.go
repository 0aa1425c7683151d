package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// StreamReader decodes a stream of JSON values, one object after another,
// from a flag-selected file or from piped stdin. An interactive terminal
// on stdin is refused so a command is never left waiting on a keyboard.
type StreamReader[T any] struct {
	fileFlagValue string
}

// Flag returns the string flag that selects the input file. The zero value
// means stdin.
func (sr *StreamReader[T]) Flag(name, usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage,
		Destination: &sr.fileFlagValue,
	}
}

// Open resolves the input source and returns the decode stream. The caller
// owns the stream and must Close it.
func (sr *StreamReader[T]) Open() (*Stream[T], error) {
	if sr.fileFlagValue != "" {
		f, err := os.Open(sr.fileFlagValue)
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		return &Stream[T]{dec: json.NewDecoder(f), closer: f}, nil
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("no input provided (stdin is a terminal); use a file flag or pipe JSON input")
	}
	return &Stream[T]{dec: json.NewDecoder(os.Stdin)}, nil
}

// Stream yields decoded values until the input is exhausted.
type Stream[T any] struct {
	dec    *json.Decoder
	closer io.Closer
}

// Next decodes the next value, returning io.EOF when the stream ends.
func (s *Stream[T]) Next() (T, error) {
	var v T
	if err := s.dec.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// Close releases the underlying file, if any.
func (s *Stream[T]) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
