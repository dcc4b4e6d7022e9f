package utils

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// FileChecksum returns the SHA256 checksum of a file as "sha256:<hex>".
func FileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}
