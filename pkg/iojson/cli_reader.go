package iojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Stdin is the --file value that reads from standard input.
const Stdin = "-"

// ErrNoInput is returned when stdin was requested but is a terminal.
var ErrNoInput = errors.New("no input provided (stdin is a terminal); pass a file or pipe JSON input")

// FileReader decodes a T from the file named by its --file flag.
type FileReader[T any] struct {
	// In replaces os.Stdin when the flag is Stdin.
	In io.Reader

	path string
}

// Flag returns the --file flag bound to the reader.
func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "read the request from a JSON file (- for stdin)",
		Destination: &fr.path,
	}
}

// Set reports whether --file was given.
func (fr *FileReader[T]) Set() bool {
	return fr.path != ""
}

// Read decodes the input. Unknown fields are rejected.
func (fr *FileReader[T]) Read() (T, error) {
	var out T

	r, closeFn, err := fr.open()
	if err != nil {
		return out, err
	}
	defer closeFn()

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("decode JSON: %w", err)
	}
	return out, nil
}

func (fr *FileReader[T]) open() (io.Reader, func(), error) {
	if fr.path != Stdin {
		f, err := os.Open(fr.path)
		if err != nil {
			return nil, nil, fmt.Errorf("open file: %w", err)
		}
		return f, func() { _ = f.Close() }, nil
	}

	if fr.In != nil {
		return fr.In, func() {}, nil
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, nil, ErrNoInput
	}
	return os.Stdin, func() {}, nil
}
