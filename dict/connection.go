package dict

import (
	"bufio"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultPort is the IANA-assigned DICT port.
const DefaultPort = 2628

// Database describes one dictionary database offered by a server.
type Database struct {
	Name        string
	Description string
}

// MatchingStrategy describes one word-matching strategy offered by a
// server (exact, prefix, soundex, ...).
type MatchingStrategy struct {
	Name        string
	Description string
}

// Definition is one definition of a word from one database.
type Definition struct {
	Word     string
	Database string
	Text     string
}

// Connection is a client connection to a DICT server. Queries are
// synchronous; the connection holds no session state between them.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to a DICT server and consumes the initial welcome
// banner, which must carry status 220.
func Dial(host string, port int) (*Connection, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing dict server %s: %w", addr, err)
	}

	c := &Connection{conn: conn, reader: bufio.NewReader(conn)}

	banner, err := readStatus(c.reader)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	if banner.code != 220 {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %d %s", ErrBadBanner, banner.code, banner.details)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Dial",
		"addr":     addr,
	}).Info("Dictionary connection established")

	return c, nil
}

// Close sends a final QUIT and closes the socket. Cleanup is
// best-effort: every error along the way is ignored.
func (c *Connection) Close() {
	_, _ = fmt.Fprintf(c.conn, "QUIT\r\n")
	_, _ = c.reader.ReadString('\n')
	_ = c.conn.Close()
}

// Databases retrieves all databases the server offers, keyed by name.
// A server with no databases (status 554) yields an empty map.
func (c *Connection) Databases() (map[string]Database, error) {
	stat, err := c.command("SHOW DB")
	if err != nil {
		return nil, err
	}
	if stat.code == 554 {
		return map[string]Database{}, nil
	}
	if stat.code != 110 {
		return nil, fmt.Errorf("%w: SHOW DB answered %d %s", ErrProtocol, stat.code, stat.details)
	}

	lines, err := c.readTextBlock()
	if err != nil {
		return nil, err
	}

	databases := make(map[string]Database, len(lines))
	for _, line := range lines {
		atoms := splitAtoms(line)
		if len(atoms) < 2 {
			return nil, fmt.Errorf("%w: bad database entry %q", ErrProtocol, line)
		}
		databases[atoms[0]] = Database{Name: atoms[0], Description: atoms[1]}
	}

	return databases, c.expectOK()
}

// Strategies retrieves all matching strategies the server supports. A
// server with none (status 555) yields an empty slice.
func (c *Connection) Strategies() ([]MatchingStrategy, error) {
	stat, err := c.command("SHOW STRAT")
	if err != nil {
		return nil, err
	}
	if stat.code == 555 {
		return []MatchingStrategy{}, nil
	}
	if stat.code != 111 {
		return nil, fmt.Errorf("%w: SHOW STRAT answered %d %s", ErrProtocol, stat.code, stat.details)
	}

	lines, err := c.readTextBlock()
	if err != nil {
		return nil, err
	}

	strategies := make([]MatchingStrategy, 0, len(lines))
	for _, line := range lines {
		atoms := splitAtoms(line)
		if len(atoms) < 2 {
			return nil, fmt.Errorf("%w: bad strategy entry %q", ErrProtocol, line)
		}
		strategies = append(strategies, MatchingStrategy{Name: atoms[0], Description: atoms[1]})
	}

	return strategies, c.expectOK()
}

// Match retrieves words matching the given pattern under the named
// strategy and database ("*" queries all databases, "!" stops at the
// first with a match). No match (status 552) yields an empty slice.
func (c *Connection) Match(word, strategy, database string) ([]string, error) {
	stat, err := c.command(fmt.Sprintf("MATCH %s %s %s", database, strategy, quoteAtom(word)))
	if err != nil {
		return nil, err
	}
	if stat.code == 552 {
		return []string{}, nil
	}
	if stat.code != 152 {
		return nil, fmt.Errorf("%w: MATCH answered %d %s", ErrProtocol, stat.code, stat.details)
	}

	lines, err := c.readTextBlock()
	if err != nil {
		return nil, err
	}

	matches := make([]string, 0, len(lines))
	for _, line := range lines {
		atoms := splitAtoms(line)
		if len(atoms) < 2 {
			return nil, fmt.Errorf("%w: bad match entry %q", ErrProtocol, line)
		}
		matches = append(matches, atoms[1])
	}

	return matches, c.expectOK()
}

// Define retrieves all definitions of the word from the named database
// ("*" queries all databases, "!" stops at the first with a
// definition). No definition (status 552) yields an empty slice.
func (c *Connection) Define(word, database string) ([]Definition, error) {
	stat, err := c.command(fmt.Sprintf("DEFINE %s %s", database, quoteAtom(word)))
	if err != nil {
		return nil, err
	}
	if stat.code == 552 {
		return []Definition{}, nil
	}
	if stat.code != 150 {
		return nil, fmt.Errorf("%w: DEFINE answered %d %s", ErrProtocol, stat.code, stat.details)
	}

	atoms := splitAtoms(stat.details)
	if len(atoms) < 1 {
		return nil, fmt.Errorf("%w: DEFINE count missing in %q", ErrProtocol, stat.details)
	}
	count, err := strconv.Atoi(atoms[0])
	if err != nil {
		return nil, fmt.Errorf("%w: bad definition count %q", ErrProtocol, atoms[0])
	}

	definitions := make([]Definition, 0, count)
	for i := 0; i < count; i++ {
		header, err := readStatus(c.reader)
		if err != nil {
			return nil, err
		}
		if header.code != 151 {
			return nil, fmt.Errorf("%w: expected definition header, got %d %s", ErrProtocol, header.code, header.details)
		}
		fields := splitAtoms(header.details)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: bad definition header %q", ErrProtocol, header.details)
		}

		lines, err := c.readTextBlock()
		if err != nil {
			return nil, err
		}

		definitions = append(definitions, Definition{
			Word:     fields[0],
			Database: fields[1],
			Text:     strings.Join(lines, "\n"),
		})
	}

	return definitions, c.expectOK()
}

// command sends one command line and reads the first status of the
// response.
func (c *Connection) command(line string) (status, error) {
	logrus.WithFields(logrus.Fields{
		"function": "command",
		"command":  line,
	}).Debug("Issuing dictionary command")

	if _, err := fmt.Fprintf(c.conn, "%s\r\n", line); err != nil {
		return status{}, fmt.Errorf("sending %q: %w", line, err)
	}
	return readStatus(c.reader)
}

// readTextBlock reads response lines until the lone period that ends a
// text block. A leading doubled period is an escaped literal one.
func (c *Connection) readTextBlock() ([]string, error) {
	var lines []string
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("%w: reading text block: %v", ErrProtocol, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "." {
			return lines, nil
		}
		if strings.HasPrefix(line, "..") {
			line = line[1:]
		}
		lines = append(lines, line)
	}
}

// expectOK consumes the final 250 status that closes a successful
// response.
func (c *Connection) expectOK() error {
	stat, err := readStatus(c.reader)
	if err != nil {
		return err
	}
	if stat.code != 250 {
		return fmt.Errorf("%w: expected completion status, got %d %s", ErrProtocol, stat.code, stat.details)
	}
	return nil
}
