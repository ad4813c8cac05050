package lex

import "errors"

// ErrNoMatch indicates that no rule accepted any prefix at the current
// position.
var ErrNoMatch = errors.New("no rule matches input")

// ErrNoProgress indicates that the longest match at the current position was
// empty, so tokenizing would never advance.
var ErrNoProgress = errors.New("longest match is empty")

// ErrMaxTokensExceeded indicates a run produced more tokens than MaxTokens
// allows.
var ErrMaxTokensExceeded = errors.New("run exceeded maximum token count")

// TokenizerError represents an error from Tokenizer operations.
//
// Offset is the input position at which the failure occurred, or -1 when the
// error is not tied to a position (configuration, checkpoint lookup).
type TokenizerError struct {
	Message string
	Code    string
	Offset  int
	Err     error
}

func (e *TokenizerError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause, so errors.Is(err, ErrNoMatch) works.
func (e *TokenizerError) Unwrap() error { return e.Err }
