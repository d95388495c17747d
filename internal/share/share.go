// Package share encodes configurator selections into short URL-safe codes.
//
// A code is a version character followed by two characters per step: the
// option's index in the option alphabet and the color's index in the color
// alphabet. '-' stands for an empty option or color.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const (
	version   = '1'
	none      = '-'
	digits    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	queryName = "config"
)

// MaxSymbols is the largest alphabet a codec accepts.
const MaxSymbols = len(digits)

var (
	// ErrNoConfig is returned when a code is missing or malformed. Callers start
	// from defaults.
	ErrNoConfig = errors.New("no configuration")

	// ErrUnknownSymbol is returned when encoding a value outside the alphabets.
	ErrUnknownSymbol = errors.New("value not in codec alphabet")
)

// Selection is one step's choice. Color is empty when none was picked.
type Selection struct {
	Option string `json:"option"`
	Color  string `json:"color"`
}

// Codec maps selections to codes over fixed option and color alphabets.
type Codec struct {
	options []string
	colors  []string
	optIdx  map[string]int
	colIdx  map[string]int
}

// NewCodec creates a codec. Alphabet order is part of the format: appending is
// compatible, reordering is not. Duplicates and empty entries are rejected.
func NewCodec(options, colors []string) (*Codec, error) {
	c := &Codec{
		options: append([]string(nil), options...),
		colors:  append([]string(nil), colors...),
	}
	var err error
	if c.optIdx, err = index(options); err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	if c.colIdx, err = index(colors); err != nil {
		return nil, fmt.Errorf("colors: %w", err)
	}
	return c, nil
}

func index(values []string) (map[string]int, error) {
	if len(values) > MaxSymbols {
		return nil, fmt.Errorf("%d values exceed the %d symbol limit", len(values), MaxSymbols)
	}
	m := make(map[string]int, len(values))
	for i, v := range values {
		if v == "" {
			return nil, fmt.Errorf("empty value at %d", i)
		}
		if _, dup := m[v]; dup {
			return nil, fmt.Errorf("duplicate value %q", v)
		}
		m[v] = i
	}
	return m, nil
}

// Encode returns the code for selections.
func (c *Codec) Encode(selections []Selection) (string, error) {
	var b strings.Builder
	b.Grow(1 + 2*len(selections))
	b.WriteByte(version)
	for i, s := range selections {
		o, err := symbol(c.optIdx, s.Option)
		if err != nil {
			return "", fmt.Errorf("step %d option %q: %w", i, s.Option, err)
		}
		col, err := symbol(c.colIdx, s.Color)
		if err != nil {
			return "", fmt.Errorf("step %d color %q: %w", i, s.Color, err)
		}
		b.WriteByte(o)
		b.WriteByte(col)
	}
	return b.String(), nil
}

func symbol(idx map[string]int, v string) (byte, error) {
	if v == "" {
		return none, nil
	}
	i, ok := idx[v]
	if !ok {
		return 0, ErrUnknownSymbol
	}
	return digits[i], nil
}

func value(alphabet []string, sym byte) (string, bool) {
	if sym == none {
		return "", true
	}
	i := strings.IndexByte(digits, sym)
	if i < 0 || i >= len(alphabet) {
		return "", false
	}
	return alphabet[i], true
}

// Decode parses a code. Any malformed input yields ErrNoConfig and no
// partial result.
func (c *Codec) Decode(code string) ([]Selection, error) {
	if len(code) == 0 || code[0] != version || (len(code)-1)%2 != 0 {
		return nil, ErrNoConfig
	}
	body := code[1:]
	out := make([]Selection, 0, len(body)/2)
	for i := 0; i < len(body); i += 2 {
		opt, ok := value(c.options, body[i])
		if !ok {
			return nil, ErrNoConfig
		}
		col, ok := value(c.colors, body[i+1])
		if !ok {
			return nil, ErrNoConfig
		}
		out = append(out, Selection{Option: opt, Color: col})
	}
	return out, nil
}

// Link returns base with the code set as the config query parameter.
func Link(base, code string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	q := u.Query()
	q.Set(queryName, code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FromURL extracts the code from a share link.
func FromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrNoConfig
	}
	code := u.Query().Get(queryName)
	if code == "" {
		return "", ErrNoConfig
	}
	return code, nil
}
