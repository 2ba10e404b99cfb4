package env

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const (
	keyLengthLimit   = 256
	valueLengthLimit = 1 << 16
)

func validateFilePath(path string) error {
	if strings.Contains(path, "..") {
		return ErrInvalidPath
	}
	// Absolute paths and paths under the working directory are both fine.
	clean := filepath.Clean(path)
	if !filepath.IsAbs(clean) && strings.HasPrefix(clean, "..") {
		return ErrInvalidPath
	}
	return nil
}

func validateKeyValue(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if len(value) > valueLengthLimit {
		return fmt.Errorf("%w: maximum length is %d", ErrInvalidValue, valueLengthLimit)
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if len(key) > keyLengthLimit {
		return fmt.Errorf("%w: maximum length is %d", ErrInvalidKey, keyLengthLimit)
	}
	for i, char := range key {
		if i == 0 && !unicode.IsLetter(char) && char != '_' {
			return fmt.Errorf("%w: must start with letter or underscore", ErrInvalidKey)
		}
		if !unicode.IsLetter(char) && !unicode.IsNumber(char) && char != '_' {
			return fmt.Errorf("%w: invalid character %q", ErrInvalidKey, char)
		}
	}
	return nil
}
