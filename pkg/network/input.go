package network

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/asfe/pkg/domain"
)

// ReadDescriptors reads one descriptor per line. Surrounding whitespace is
// trimmed and blank lines are skipped; order is kept.
func ReadDescriptors(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read descriptors: %w", err)
	}
	if len(out) == 0 {
		return nil, domain.ErrEmptyInput
	}
	return out, nil
}

// ReadDescriptorFile is ReadDescriptors on a file.
func ReadDescriptorFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	out, err := ReadDescriptors(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}
