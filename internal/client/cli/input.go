package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getText prints a prompt and reads one line, trimming whitespace. If EOF
// occurs after some input was read, the partial line is returned.
func getText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// getFloat reads one line and parses it as a number. An empty line yields 0.
func getFloat(reader *bufio.Reader, prompt string, w io.Writer) (float64, error) {
	s, err := getText(reader, prompt, w)
	if err != nil {
		return 0, err
	}
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// getDate reads a YYYY-MM-DD date. An empty line yields the zero time.
func getDate(reader *bufio.Reader, prompt string, w io.Writer) (time.Time, error) {
	s, err := getText(reader, prompt+" (YYYY-MM-DD)", w)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

// getPassword reads a password from the terminal without echo.
func getPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
