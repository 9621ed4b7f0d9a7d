package header

import (
	"bufio"
	"bytes"
	"strings"
)

const endMarker = "[END OF HEADER]"

// entries is the untyped key/value form of a header.
type entries struct {
	values map[string]string
	used   map[string]bool
}

func (e *entries) get(key string) (v string, ok bool) {
	v, ok = e.values[key]
	if ok {
		e.used[key] = true
	}

	return v, ok
}

// unused returns the keys that were parsed but never consumed.
func (e *entries) unused() map[string]string {
	var extra map[string]string

	for k, v := range e.values {
		if e.used[k] {
			continue
		}

		if extra == nil {
			extra = map[string]string{}
		}

		extra[k] = v
	}

	return extra
}

// parse splits the header text into tagged values. It stops at the end
// marker; anything after it (the padding) is ignored.
func parse(data []byte) (e *entries, err error) {
	e = &entries{
		values: map[string]string{},
		used:   map[string]bool{},
	}

	s := bufio.NewScanner(bytes.NewReader(data))
	s.Buffer(make([]byte, 0, 4096), len(data)+1)

	lineno := 0
	next := func() (string, bool) {
		if !s.Scan() {
			return "", false
		}
		lineno++

		return s.Text(), true
	}

	for {
		line, ok := next()
		if !ok {
			break
		}

		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue
		case trimmed == endMarker:
			return e, nil
		case strings.HasPrefix(trimmed, "#"):
			continue
		case strings.HasPrefix(trimmed, "["):
			end := strings.IndexByte(trimmed, ']')
			if end < 0 {
				return nil, Error.New("line %d: unterminated key: %q", lineno, trimmed)
			}

			key := strings.TrimSpace(trimmed[1:end])
			rest := strings.TrimSpace(trimmed[end+1:])
			if !strings.HasPrefix(rest, "=") {
				return nil, Error.New("line %d: missing '=' after [%s]", lineno, key)
			}

			e.values[key] = strings.TrimSpace(rest[1:])
		case strings.HasPrefix(trimmed, "{"):
			eq := strings.IndexByte(trimmed, '=')
			if eq < 0 {
				return nil, Error.New("line %d: missing '=' in block", lineno)
			}

			key := strings.TrimSpace(trimmed[1:eq])

			var lines []string
			if first := strings.TrimSpace(trimmed[eq+1:]); first != "" {
				lines = append(lines, first)
			}

			closed := false
			for {
				l, ok := next()
				if !ok {
					break
				}

				if strings.TrimSpace(l) == "}" {
					closed = true

					break
				}

				lines = append(lines, l)
			}

			if !closed {
				return nil, Error.New("block {%s} is not terminated", key)
			}

			e.values[key] = strings.Join(lines, "\n")
		default:
			return nil, Error.New("line %d: garbled header line: %q", lineno, trimmed)
		}
	}

	err = s.Err()
	if err != nil {
		return nil, Error.Wrap(err)
	}

	return nil, Error.New("missing %s", endMarker)
}
