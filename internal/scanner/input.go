package scanner

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInputFile marks failures to open or read a domain list
var ErrInputFile = errors.New("input file error")

// ReadDomains reads a newline-delimited domain list. Lines are trimmed and
// blank lines are skipped.
func ReadDomains(r io.Reader) ([]string, error) {
	var domains []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		domains = append(domains, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading domains: %w", ErrInputFile, err)
	}

	return domains, nil
}

// LoadDomainFile reads the domain list at path
func LoadDomainFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputFile, err)
	}
	defer file.Close()

	return ReadDomains(file)
}
