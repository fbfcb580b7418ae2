package lfg

import "errors"

// Expected steady-state outcomes of posting, claiming and cancelling.
// Handlers report these inline to the caller; none of them is logged as a failure.
var (
	// ErrValidation indicates a rejected ad field (empty game, over-length field).
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates the requester lacks the capability for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrAdNotFound indicates the ad id does not exist.
	ErrAdNotFound = errors.New("ad not found")

	// ErrAdNotOpen indicates the ad reached a terminal state other than claimed
	// (cancelled or expired) before the caller's action committed.
	ErrAdNotOpen = errors.New("ad is no longer open")

	// ErrAlreadyClaimed indicates another claimant committed first.
	ErrAlreadyClaimed = errors.New("ad already claimed")

	// ErrSelfClaim indicates an author tried to claim their own ad.
	ErrSelfClaim = errors.New("cannot claim your own ad")
)
