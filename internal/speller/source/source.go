// Package source provides the word lists a speller dictionary is loaded
// from: a text file with one word per line, a PostgreSQL column, or a fixed
// in-memory list.
package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Source yields the full word list for a dictionary load.
type Source interface {
	Name() string
	Words(ctx context.Context) ([]string, error)
}

// Static is a fixed word list.
type Static struct {
	Label string
	List  []string
}

func (s Static) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

func (s Static) Words(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.List...), nil
}

// File reads one word per line from a text file.
type File struct {
	Path string
}

func (f File) Name() string {
	return "file:" + f.Path
}

func (f File) Words(ctx context.Context) ([]string, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("opening word list %s: %w", f.Path, err)
	}
	defer fh.Close()
	words, err := ReadWords(ctx, fh)
	if err != nil {
		return nil, fmt.Errorf("reading word list %s: %w", f.Path, err)
	}
	return words, nil
}

// ReadWords reads one word per line. Trailing whitespace, including a
// carriage return, is stripped; lines left empty are skipped. Leading
// whitespace is part of the word.
func ReadWords(ctx context.Context, r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for n := 0; sc.Scan(); n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		word := strings.TrimRight(sc.Text(), " \t\r\n\v\f")
		if word == "" {
			continue
		}
		words = append(words, word)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return words, nil
}
