package main

import (
	"context"
	"fmt"
	"os"

	"github.com/anthonyraymond/stompauth/pkg/logs"
	"github.com/pkg/errors"
)

const (
	exitMismatch  = 1
	exitLoadError = 2
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	defer func() { _ = logs.GetLogger().Sync() }()

	err := NewRootCommand().ExecuteContext(context.Background())
	if err == nil {
		return
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.code)
	}
	os.Exit(1)
}
