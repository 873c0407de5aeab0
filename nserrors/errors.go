// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package nserrors defines the error-kind taxonomy shared by every layer of
// the decode engine: model loading, quantization, graph construction, and
// the decode controller all fail through the same *Error type so a caller
// can discriminate kinds with errors.Is regardless of which layer raised it.
package nserrors

import (
	"errors"
	"fmt"
)

// Kind discriminates the reason an operation failed.
type Kind int

const (
	// Internal indicates a violated invariant inside this engine, e.g. a
	// reduction dimension not divisible by the block size.
	Internal Kind = iota
	// MalformedModel indicates a structurally broken model file: header
	// magic mismatch, truncated tensor payload, unknown dtype tag, or tensor
	// dimensions inconsistent with the declared architecture.
	MalformedModel
	// InvalidConfiguration indicates a caller-supplied parameter this engine
	// will not run with: an unsupported quantization triple, a ctx_size
	// exceeding the model's trained maximum, or a non-positive thread count.
	InvalidConfiguration
	// ResourceExhausted indicates the host could not supply a resource this
	// operation needed: mmap failed, or the KV cache could not be allocated.
	ResourceExhausted
	// NumericFault indicates NaN or Inf was observed in logits while the
	// debug numeric guard was enabled.
	NumericFault
	// Cancelled indicates the caller released the session mid-step.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case MalformedModel:
		return "malformed_model"
	case InvalidConfiguration:
		return "invalid_configuration"
	case ResourceExhausted:
		return "resource_exhausted"
	case NumericFault:
		return "numeric_fault"
	case Cancelled:
		return "cancelled"
	case Internal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is the engine's wrapped-error type. Kind carries the taxonomy above;
// Op names the operation that failed (e.g. "modelfile.Load",
// "decode.Session.Step"); Err, when non-nil, is the underlying cause and
// participates in errors.Is/errors.As via Unwrap.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers can
// write errors.Is(err, nserrors.New(nserrors.InvalidConfiguration, "", nil))
// or, more idiomatically, compare against the Kind sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error. err may be nil when there is no underlying cause
// to wrap (e.g. a straightforward parameter validation failure).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Wrap is shorthand for New when the caller already has an error to attach.
func Wrap(kind Kind, op string, err error) *Error {
	return New(kind, op, err)
}

// Newf constructs an *Error whose cause carries an additional formatted
// message, for call sites that want to attach context (e.g. a file path or
// tensor name) without defining a new Kind.
func Newf(kind Kind, op string, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		return New(kind, op, fmt.Errorf("%s: %w", msg, err))
	}
	return New(kind, op, errors.New(msg))
}

// Kind-tagged sentinels for errors.Is(err, nserrors.ErrMalformedModel) style
// checks against a specific kind without constructing a full *Error.
var (
	ErrMalformedModel       = &Error{Kind: MalformedModel, Op: "sentinel"}
	ErrInvalidConfiguration = &Error{Kind: InvalidConfiguration, Op: "sentinel"}
	ErrResourceExhausted    = &Error{Kind: ResourceExhausted, Op: "sentinel"}
	ErrNumericFault         = &Error{Kind: NumericFault, Op: "sentinel"}
	ErrCancelled            = &Error{Kind: Cancelled, Op: "sentinel"}
	ErrInternal             = &Error{Kind: Internal, Op: "sentinel"}
)

// KindOf returns the Kind of err if it is (or wraps) an *Error, and false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return Internal, false
}
