package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tebeka/snowball"
	"golang.org/x/text/unicode/norm"
)

// CellParser turns raw cell text into tokens and integer labels.
// It is not safe for concurrent use: the snowball stemmer holds C state.
type CellParser struct {
	stemmer *snowball.Stemmer
}

// NewCellParser creates a parser. A non-empty stem language enables snowball
// stemming of whitespace-separated text cells.
func NewCellParser(stem string) (*CellParser, error) {
	p := &CellParser{}
	if stem != "" {
		s, err := snowball.New(stem)
		if err != nil {
			return nil, fmt.Errorf("dataset: stemmer %q: %w", stem, err)
		}
		p.stemmer = s
	}
	return p, nil
}

// Close releases the stemmer, if any.
func (p *CellParser) Close() {
	if p.stemmer != nil {
		p.stemmer.Close()
		p.stemmer = nil
	}
}

// Tokens parses a token cell. Accepted forms are a JSON array of strings,
// a Python list repr (['a', 'b']) and plain whitespace-separated text.
// Only plain text is stemmed; list cells are already tokenized upstream.
func (p *CellParser) Tokens(cell string) ([]string, error) {
	s := strings.TrimSpace(cell)
	if strings.HasPrefix(s, "[") {
		var items []string
		if err := json.Unmarshal([]byte(s), &items); err == nil {
			return Normalize(items), nil
		}
		items, err := parsePyList(s)
		if err != nil {
			return nil, err
		}
		return Normalize(items), nil
	}

	fields := strings.Fields(s)
	if p.stemmer != nil {
		for i, f := range fields {
			fields[i] = p.stemmer.Stem(strings.ToLower(f))
		}
	}
	return Normalize(fields), nil
}

// Normalize NFC-normalizes each token and drops empty ones. Upstream
// tokenizers mix composed and decomposed Hangul, which would otherwise split
// one word into two vocabulary entries.
func Normalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = norm.NFC.String(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Int parses an integer label cell. Integral floats ("1.0") are accepted
// because dataframe exports often write them. An empty cell is 0.
func (p *CellParser) Int(cell string) (int, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", cell)
	}
	return int(f), nil
}

var errBadList = errors.New("malformed list literal")

// parsePyList parses a Python list of string literals, e.g. ['a', "b's"].
func parsePyList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, errBadList
	}
	body := []rune(s[1 : len(s)-1])

	var items []string
	i := 0
	for i < len(body) {
		r := body[i]
		switch {
		case r == ' ' || r == ',' || r == '\t' || r == '\n':
			i++
		case r == '\'' || r == '"':
			quote := r
			var b strings.Builder
			i++
			closed := false
			for i < len(body) {
				c := body[i]
				if c == '\\' && i+1 < len(body) {
					b.WriteRune(body[i+1])
					i += 2
					continue
				}
				if c == quote {
					closed = true
					i++
					break
				}
				b.WriteRune(c)
				i++
			}
			if !closed {
				return nil, errBadList
			}
			items = append(items, b.String())
		default:
			return nil, errBadList
		}
	}
	return items, nil
}
