package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/supersafe-org/go-safe-apps/pkg/idl"
	"github.com/supersafe-org/go-safe-apps/pkg/uischema"
)

// LoadIDL reads a program definition fixture. Testing helpers fail the test
// on error to keep contract tests concise.
func LoadIDL(t *testing.T, path string) *idl.IDL {
	t.Helper()

	def, err := LoadIDLFromPath(path)
	if err != nil {
		t.Fatalf("load idl: %v", err)
	}
	return def
}

// LoadIDLFromPath returns a definition without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadIDLFromPath(path string) (*idl.IDL, error) {
	data, err := readFixture(path)
	if err != nil {
		return nil, err
	}
	return idl.Parse(data, path)
}

// LoadUI reads a UI schema fixture.
func LoadUI(t *testing.T, path string) []uischema.Instruction {
	t.Helper()

	data, err := readFixture(path)
	if err != nil {
		t.Fatalf("load ui: %v", err)
	}
	ixs, err := uischema.Parse(data, path)
	if err != nil {
		t.Fatalf("load ui: %v", err)
	}
	return ixs
}

// ParseUI decodes an inline UI schema.
func ParseUI(t *testing.T, raw string) []uischema.Instruction {
	t.Helper()

	ixs, err := uischema.Parse([]byte(raw), "inline")
	if err != nil {
		t.Fatalf("parse ui: %v", err)
	}
	return ixs
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

func readFixture(path string) ([]byte, error) {
	if path == "" {
		return nil, errors.New("testsupport: fixture path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	return data, nil
}
