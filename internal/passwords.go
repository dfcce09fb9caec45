package internal

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DefaultPasswords are tried on every encrypted container before any
// user-supplied password.
func DefaultPasswords() []string {
	return []string{"", "password", "changeit", "keypassword"}
}

// LoadPasswordsFromFile loads passwords from a file, one per line. Blank
// lines are skipped.
func LoadPasswordsFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var passwords []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if pwd := strings.TrimSpace(scanner.Text()); pwd != "" {
			passwords = append(passwords, pwd)
		}
	}
	return passwords, scanner.Err()
}

// ProcessPasswords merges the defaults, the command line list and the
// password file, in that order, dropping duplicates.
func ProcessPasswords(passwordList []string, passwordFile string) ([]string, error) {
	passwords := append(DefaultPasswords(), passwordList...)

	if passwordFile != "" {
		filePasswords, err := LoadPasswordsFromFile(passwordFile)
		if err != nil {
			return nil, fmt.Errorf("loading passwords from file: %w", err)
		}
		passwords = append(passwords, filePasswords...)
	}

	seen := make(map[string]bool, len(passwords))
	unique := passwords[:0]
	for _, pwd := range passwords {
		if !seen[pwd] {
			seen[pwd] = true
			unique = append(unique, pwd)
		}
	}
	return unique, nil
}
