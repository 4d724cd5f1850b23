package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
)

type ErrorDescription struct {
	ErrorFieldPath string
	ErrorTag       string
}

func AssertValidateError(t *testing.T, validationErrors validator.ValidationErrors, expectedError ErrorDescription) {
	fieldFound := false
	tagFound := false
	for _, e := range validationErrors {
		if e.Namespace() == expectedError.ErrorFieldPath {
			fieldFound = true
			if e.Tag() == expectedError.ErrorTag {
				tagFound = true
			}
		}
	}
	if !fieldFound || !tagFound {
		t.Errorf("Wanted error was not found, expected '%v' to contains an error for path=%s and tag=%s", validationErrors, expectedError.ErrorFieldPath, expectedError.ErrorTag)
	}
}

// WriteFile writes content to name inside a fresh temporary directory and returns the full path.
func WriteFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test file '%s': %v", path, err)
	}
	return path
}
