package contracts

import "errors"

// Construction errors, returned wrapped with context by constructors
var (
	ErrEmptyTicker     = errors.New("ticker must not be empty")
	ErrNilProfile      = errors.New("financial profile is required")
	ErrNilSecurity     = errors.New("security is required")
	ErrInvalidCapital  = errors.New("total capital must be > 0")
	ErrInvalidRate     = errors.New("risk-free rate must be >= 0")
	ErrBlankInvestor   = errors.New("investor name must not be blank")
	ErrDuplicateTicker = errors.New("ticker already in portfolio")
	ErrNotFound        = errors.New("ticker not found")
)

// Run store errors
var (
	ErrRunNotFound      = errors.New("analysis run not found")
	ErrStoreDisabled    = errors.New("run store disabled")
	ErrQuoteNotFound    = errors.New("quote not found")
	ErrQuoteUnavailable = errors.New("quote service unavailable")
)
