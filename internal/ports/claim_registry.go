package ports

import (
	"context"
	"errors"
)

// ErrClaimTaken is returned by Acquire when another owner holds the parcel.
var ErrClaimTaken = errors.New("parcel already claimed")

// Process-wide registry guaranteeing that a parcel has at most one owner.
type ClaimRegistry interface {
	Acquire(ctx context.Context, parcelID, ownerID string) error
	// Release drops the claim if it is held by ownerID.
	Release(ctx context.Context, parcelID, ownerID string) error
	// Owner returns the current owner, or "" when unclaimed.
	Owner(ctx context.Context, parcelID string) (string, error)
}
