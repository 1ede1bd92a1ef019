//go:build !unix

package container

import (
	"fmt"
	"os"
)

// mapFile reads path into memory where memory mapping is unavailable.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read container: %w", err)
	}
	return data, func() error { return nil }, nil
}
