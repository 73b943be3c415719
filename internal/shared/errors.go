package shared

import "errors"

var (
	// ErrNotFound indicates the requested account, product or document is absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPeriod indicates a malformed or incomplete period specification.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrShopUnconfigured indicates the shop GSTIN or state is missing.
	ErrShopUnconfigured = errors.New("shop gstin and state must be configured")
	// ErrTimeout indicates a report query exceeded its execution budget.
	ErrTimeout = errors.New("report query timed out")
)
