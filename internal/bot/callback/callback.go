// Package callback encodes inline button payloads as a closed set of typed actions.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	Separator  = ":"
	LimitBytes = 64
)

var (
	// ErrUnknownAction is returned for payloads whose kind is not registered.
	ErrUnknownAction = errors.New("unknown callback action")
	// ErrMalformed is returned when the payload fields do not match the kind.
	ErrMalformed = errors.New("malformed callback payload")
)

// Kind identifies an action in callback data.
type Kind string

// Action is a decoded button press. Implementations live in this package only.
type Action interface {
	Kind() Kind
	fields() []string
}

var decoders = map[Kind]func(fields []string) (Action, error){}

// Encode renders an action as callback data.
func Encode(a Action) (string, error) {
	if a == nil {
		return "", fmt.Errorf("%w: nil action", ErrUnknownAction)
	}

	parts := append([]string{string(a.Kind())}, a.fields()...)
	data := strings.Join(parts, Separator)
	if len(data) > LimitBytes {
		return "", fmt.Errorf("callback data exceeds %d byte limit: got %d", LimitBytes, len(data))
	}

	return data, nil
}

// Decode parses callback data produced by Encode.
func Decode(data string) (Action, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, errors.New("callback data is empty")
	}

	parts := strings.Split(data, Separator)
	decode, ok := decoders[Kind(parts[0])]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, parts[0])
	}

	action, err := decode(parts[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformed, data, err)
	}

	return action, nil
}

func registerSimple(a Action) {
	decoders[a.Kind()] = func(fields []string) (Action, error) {
		if len(fields) != 0 {
			return nil, fmt.Errorf("expected no fields, got %d", len(fields))
		}
		return a, nil
	}
}

func registerID(kind Kind, build func(id int64) Action) {
	decoders[kind] = func(fields []string) (Action, error) {
		ids, err := parseIDs(fields, 1)
		if err != nil {
			return nil, err
		}
		return build(ids[0]), nil
	}
}

func registerPair(kind Kind, build func(a, b int64) Action) {
	decoders[kind] = func(fields []string) (Action, error) {
		ids, err := parseIDs(fields, 2)
		if err != nil {
			return nil, err
		}
		return build(ids[0], ids[1]), nil
	}
}

func parseIDs(fields []string, n int) ([]int64, error) {
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d fields, got %d", n, len(fields))
	}

	ids := make([]int64, n)
	for i, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative value %d", v)
		}
		ids[i] = v
	}

	return ids, nil
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
