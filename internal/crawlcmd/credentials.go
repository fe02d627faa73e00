package crawlcmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// credentials resolves the LORIS credential from the environment, prompting
// interactively for whatever is missing. The password prompt reads from the
// terminal with echo disabled; the credential is never written anywhere.
func credentials() (string, string, error) {
	username := os.Getenv("LORIS_USERNAME")
	password := os.Getenv("LORIS_PASSWORD")

	if username == "" {
		fmt.Fprint(os.Stderr, "LORIS username: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return "", "", fmt.Errorf("no username provided (set LORIS_USERNAME)")
	}

	if password == "" {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			return "", "", fmt.Errorf("no terminal available for password prompt (set LORIS_PASSWORD)")
		}
		fmt.Fprint(os.Stderr, "LORIS password: ")
		passwordBytes, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(passwordBytes)
	}
	if password == "" {
		return "", "", fmt.Errorf("no password provided (set LORIS_PASSWORD)")
	}

	return username, password, nil
}
