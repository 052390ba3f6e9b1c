// Copyright (c) 2026, The Framepipe Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors provides context-wrapped error handling helpers
// built on the standard library errors package and log/slog.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// New returns a new error with the given text.
// It is a direct wrapper of [errors.New].
func New(text string) error {
	return errors.New(text)
}

// Errorf returns a new error with the given format and arguments.
// It is a direct wrapper of [fmt.Errorf], so %w wrapping works.
func Errorf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Is is a direct wrapper of [errors.Is].
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a direct wrapper of [errors.As].
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Join is a direct wrapper of [errors.Join].
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Log takes the given error and logs it with the caller's location
// if it is non-nil. It returns the error unchanged, so the intended
// usage is:
//
//	errors.Log(MyFunc(v))
//	// or
//	return errors.Log(MyFunc(v))
func Log(err error) error {
	if err != nil {
		slog.Error(err.Error(), "caller", callerInfo())
	}
	return err
}

// Log1 takes the given value and error and returns the value,
// logging the error with the caller's location if it is non-nil.
// The intended usage is:
//
//	a := errors.Log1(MyFunc(v))
func Log1[T any](v T, err error) T {
	if err != nil {
		slog.Error(err.Error(), "caller", callerInfo())
	}
	return v
}

// Ignore1 ignores an error return value from a two-return function,
// returning only the value. Use only where the error is genuinely
// irrelevant.
func Ignore1[T any](v T, _ error) T {
	return v
}

// Must panics if the given error is non-nil. It is reserved for
// initialization paths where an error indicates a programming bug.
func Must(err error) {
	if err != nil {
		panic(err)
	}
}

// callerInfo returns the file:line of the caller two frames up,
// skipping the helper in this package.
func callerInfo() string {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%s:%d", file, line)
}
