package dict

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// status is one parsed server status line: a three-digit code followed by
// free-form details.
type status struct {
	code    int
	details string
}

// readStatus reads the next line from r and parses it as a status line.
func readStatus(r *bufio.Reader) (status, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return status{}, fmt.Errorf("%w: reading status line: %v", ErrProtocol, err)
	}
	line = strings.TrimRight(line, "\r\n")

	code, rest, _ := strings.Cut(line, " ")
	n, err := strconv.Atoi(code)
	if err != nil {
		return status{}, fmt.Errorf("%w: non-numeric status in %q", ErrProtocol, line)
	}

	return status{code: n, details: rest}, nil
}

// splitAtoms splits a details string into atoms, honoring double-quoted
// strings so multi-word values stay together.
func splitAtoms(details string) []string {
	var atoms []string
	var current strings.Builder
	quoted := false

	for _, r := range details {
		switch {
		case r == '"':
			quoted = !quoted
		case r == ' ' && !quoted:
			if current.Len() > 0 {
				atoms = append(atoms, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		atoms = append(atoms, current.String())
	}

	return atoms
}

// quoteAtom wraps a word in double quotes when it contains whitespace,
// so it travels as a single atom.
func quoteAtom(word string) string {
	if strings.ContainsAny(word, " \t") && !strings.HasPrefix(word, `"`) {
		return `"` + word + `"`
	}
	return word
}
