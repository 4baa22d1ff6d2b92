package main

import "errors"

const (
	exitFailure = 1
	exitConfig  = 2
)

type exitError struct {
	code int
	err  error
}

func (e exitError) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e exitError) Unwrap() error {
	return e.err
}

func withExitCode(err error, code int) error {
	if err == nil {
		return nil
	}
	return exitError{code: code, err: err}
}

func exitCodeForError(err error) int {
	if err == nil {
		return 0
	}
	var coded exitError
	if errors.As(err, &coded) && coded.code != 0 {
		return coded.code
	}
	return exitFailure
}
