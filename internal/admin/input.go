package admin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/carmodpicker/internal/shared"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	stdinFd      = func() int { return int(os.Stdin.Fd()) }
)

var errPasswordMismatch = errors.New("passwords do not match")

// readLine reads one line from r with the trailing newline trimmed. A final
// line without a newline is returned as is.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// getPassword asks for a new password. On a terminal it is read twice
// without echo; otherwise the first line of r is used so the tool can be
// scripted.
func getPassword(r *bufio.Reader, w io.Writer) (string, error) {
	fd := stdinFd()
	if !isTerminal(fd) {
		pw, err := readLine(r)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return pw, nil
	}

	fmt.Fprint(w, "Enter password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer shared.WipeByteArray(first)

	fmt.Fprint(w, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer shared.WipeByteArray(second)

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}
