// =============================
// File: internal/market/errors.go
// =============================
package market

import "errors"

// Every failure below aborts the whole operation with no partial state
// change; callers observe a rejected call and may resubmit.
var (
	// ErrInvalidAmount rejects zero, negative or malformed trade inputs.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrZeroOutput rejects dust trades whose curve quote floors to zero;
	// they would mutate reserves for no economic effect.
	ErrZeroOutput = errors.New("quote rounds to zero")

	// ErrInsufficientLiquidity rejects trades whose output exceeds what the
	// pool can supply.
	ErrInsufficientLiquidity = errors.New("insufficient pool liquidity")

	// ErrInsufficientBalance rejects sells beyond the caller's holdings.
	ErrInsufficientBalance = errors.New("insufficient caller balance")

	// ErrExceedsCirculation rejects sells of more tokens than were ever
	// net-bought from the curve.
	ErrExceedsCirculation = errors.New("sell exceeds circulating tokens")

	// ErrUnauthorized rejects gated operations from non-privileged callers.
	ErrUnauthorized = errors.New("caller not authorized")

	// ErrFeeTooHigh rejects fee updates above the configured ceiling.
	ErrFeeTooHigh = errors.New("fee above configured ceiling")

	// ErrExceedsAccrued rejects treasury withdrawals beyond accrued fees.
	ErrExceedsAccrued = errors.New("withdrawal exceeds accrued fees")

	// ErrTransferFailed marks a failed external token or value movement;
	// the calling operation has been rolled back in full.
	ErrTransferFailed = errors.New("external transfer failed")

	// ErrPaused rejects trades while the market is paused.
	ErrPaused = errors.New("market paused")

	// ErrBlacklisted rejects trades while the market is blacklisted.
	ErrBlacklisted = errors.New("market blacklisted")

	// ErrAlreadyMigrated rejects operations after the one-time migration.
	ErrAlreadyMigrated = errors.New("liquidity already migrated")

	// ErrTargetNotReached rejects migration before the funding target.
	ErrTargetNotReached = errors.New("funding target not reached")

	// ErrFeatureDisabled rejects lifecycle controls the market variant was
	// configured without.
	ErrFeatureDisabled = errors.New("feature disabled for this market")

	// ErrReentrant rejects a nested call into a guarded operation.
	ErrReentrant = errors.New("reentrant call rejected")
)
