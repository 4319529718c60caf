// Copyright (c) 2025 The kukad developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import "fmt"

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific RuleError.
const (
	// ErrUnfit indicates the block could not be processed in the chain's
	// current state, typically because it is already known or its parent
	// has not been seen yet.  Unfit blocks may become processable later.
	ErrUnfit ErrorCode = iota

	// ErrDifficultyTooLow indicates the header's claimed difficulty is
	// below the minimum the retarget schedule allows at its height.
	ErrDifficultyTooLow

	// ErrWrongTotalDifficulty indicates the header's claimed cumulative
	// difficulty does not match the parent's total extended by the
	// parent's own hash.
	ErrWrongTotalDifficulty

	// ErrWrongCuckooSize indicates the header commits to a cuckoo graph
	// size other than the one the retarget schedule prescribes.
	ErrWrongCuckooSize

	// ErrInvalidPow indicates the header's proof is not a valid cycle or
	// does not attain the claimed difficulty.
	ErrInvalidPow

	// ErrInvalidBlockProof indicates the block body's commitments or
	// kernel signatures failed cryptographic verification.
	ErrInvalidBlockProof

	// ErrInvalidBlockTime indicates the header timestamp is too far in
	// the future.
	ErrInvalidBlockTime

	// ErrStore indicates the underlying chain store failed while
	// processing the block.
	ErrStore
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrUnfit:                "ErrUnfit",
	ErrDifficultyTooLow:     "ErrDifficultyTooLow",
	ErrWrongTotalDifficulty: "ErrWrongTotalDifficulty",
	ErrWrongCuckooSize:      "ErrWrongCuckooSize",
	ErrInvalidPow:           "ErrInvalidPow",
	ErrInvalidBlockProof:    "ErrInvalidBlockProof",
	ErrInvalidBlockTime:     "ErrInvalidBlockTime",
	ErrStore:                "ErrStore",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// RuleError identifies a rule violation or store failure encountered while
// processing a block.  It is used to indicate that processing the block
// failed due to one of the many validation rules.  The caller can use type
// assertions to determine if a failure was specifically due to a rule
// violation and access the ErrorCode field to determine the specific reason
// for the failure.
type RuleError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error, if any
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e RuleError) Unwrap() error {
	return e.Err
}

// ruleError creates a RuleError given a set of arguments.
func ruleError(c ErrorCode, desc string) error {
	return RuleError{ErrorCode: c, Description: desc}
}

// causeError creates a RuleError that wraps an underlying cause, used for
// proof verification and store failures.
func causeError(c ErrorCode, desc string, err error) error {
	return RuleError{ErrorCode: c, Description: desc, Err: err}
}
