package ui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// PromptLine reads one line of input with a colored prompt
func PromptLine(prompt string) (string, error) {
	fmt.Print(Cyan(prompt))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// PromptPassword reads a line without echoing it. Falls back to plain line
// input when stdin is not a terminal, such as in a pipe.
func PromptPassword(prompt string) (string, error) {
	fmt.Print(Cyan(prompt))

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	raw, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// PromptFloat reads a float with a default used on empty input
func PromptFloat(prompt string, def float64) (float64, error) {
	line, err := PromptLine(fmt.Sprintf("%s [%.1f]: ", prompt, def))
	if err != nil {
		return 0, err
	}
	if line == "" {
		return def, nil
	}

	value, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", line)
	}
	return value, nil
}

// Confirm asks a yes/no question, defaulting to no
func Confirm(prompt string) (bool, error) {
	line, err := PromptLine(prompt + " [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
