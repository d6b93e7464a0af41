package gamedata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// LoadError names the data file that failed to load and, when the JSON
// decoder reported an offset, the line it failed on.
type LoadError struct {
	File string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("gamedata %s line %d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("gamedata %s: %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load decodes one embedded data file (scenarios, encounter profiles or
// the palette) into T.
func Load[T any](filename string) (T, error) {
	content, err := dataFS.ReadFile(filename)
	if err != nil {
		var zero T
		return zero, &LoadError{File: filename, Err: err}
	}
	return decode[T](filename, content)
}

// MustLoad is Load for files generation cannot run without.
func MustLoad[T any](filename string) T {
	result, err := Load[T](filename)
	if err != nil {
		panic(err)
	}
	return result
}

func decode[T any](filename string, content []byte) (T, error) {
	var result T
	if err := json.Unmarshal(content, &result); err != nil {
		return result, &LoadError{File: filename, Line: errorLine(content, err), Err: err}
	}
	return result, nil
}

// errorLine maps a decoder offset onto a 1-based line, or 0 when the error
// carries no offset.
func errorLine(content []byte, err error) int {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return 0
	}
	offset = min(offset, int64(len(content)))
	return bytes.Count(content[:offset], []byte("\n")) + 1
}
