package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"pdp-route-service/internal/comm"
	"pdp-route-service/internal/domain"
	"pdp-route-service/internal/metrics"
	"pdp-route-service/internal/ports"
)

// ErrNoBidder is returned by Award when no participant has room for a parcel.
var ErrNoBidder = errors.New("no participant can take the parcel")

// Participant is an agent taking part in an auction.
type Participant struct {
	Bidder   *comm.Bidder
	Position domain.Point
	// Capacity bounds the demand the agent may hold claims for; 0 is unbounded.
	Capacity int
}

func (p Participant) committed() int {
	total := 0
	for _, c := range p.Bidder.Claimed() {
		total += c.Demand
	}
	return total
}

// Auction hands every new parcel to exactly one agent.
//
// The parcel is offered to all participants; the lowest bid wins and ties go
// to the earliest participant, so results are deterministic. The winner must
// acquire the parcel in the claim registry before claiming it, losers forget
// the parcel.
type Auction struct {
	registry ports.ClaimRegistry
	// Scope namespaces registry keys, typically a simulation run id.
	scope string
}

func NewAuction(registry ports.ClaimRegistry, scope string) *Auction {
	return &Auction{registry: registry, scope: scope}
}

// ClaimKey is the registry key of a parcel in this auction's scope.
func (a *Auction) ClaimKey(parcelID string) string {
	if a.scope == "" {
		return parcelID
	}
	return a.scope + "/" + parcelID
}

// Award runs a single auction and returns the winning agent id.
func (a *Auction) Award(ctx context.Context, p *domain.Parcel, participants []Participant) (string, error) {
	if len(participants) == 0 {
		return "", errors.New("award parcel: participant list must not be empty")
	}

	for _, part := range participants {
		if part.Bidder.IsClaimed(p.ID) {
			return "", fmt.Errorf("award parcel %s: agent %s already holds it: %w", p.ID, part.Bidder.AgentID(), comm.ErrPrecondition)
		}
	}

	winner := -1
	best := math.Inf(1)
	for i, part := range participants {
		part.Bidder.Receive(p)

		// A full agent cannot commit to more work.
		if part.Capacity > 0 && part.committed()+p.Demand > part.Capacity {
			continue
		}
		if bid := part.Bidder.Bid(part.Position, p); bid < best {
			best = bid
			winner = i
		}
	}

	if winner < 0 {
		if err := a.forget(p, participants, -1); err != nil {
			return "", err
		}
		return "", fmt.Errorf("award parcel %s: %w", p.ID, ErrNoBidder)
	}

	w := participants[winner].Bidder
	if err := a.registry.Acquire(ctx, a.ClaimKey(p.ID), w.AgentID()); err != nil {
		if errors.Is(err, ports.ErrClaimTaken) {
			metrics.AuctionAwards.WithLabelValues("taken").Inc()
		}
		if ferr := a.forget(p, participants, -1); ferr != nil {
			return "", ferr
		}
		return "", fmt.Errorf("award parcel %s: %w", p.ID, err)
	}

	if err := w.Claim(p); err != nil {
		if rerr := a.registry.Release(ctx, a.ClaimKey(p.ID), w.AgentID()); rerr != nil {
			err = errors.Join(err, rerr)
		}
		if ferr := a.forget(p, participants, -1); ferr != nil {
			err = errors.Join(err, ferr)
		}
		return "", fmt.Errorf("award parcel %s: %w", p.ID, err)
	}
	if err := a.forget(p, participants, winner); err != nil {
		return "", err
	}

	metrics.AuctionAwards.WithLabelValues("awarded").Inc()
	return w.AgentID(), nil
}

// Release gives a delivered parcel's registry claim back.
func (a *Auction) Release(ctx context.Context, parcelID, agentID string) error {
	if err := a.registry.Release(ctx, a.ClaimKey(parcelID), agentID); err != nil {
		return fmt.Errorf("release parcel %s: %w", parcelID, err)
	}
	return nil
}

func (a *Auction) forget(p *domain.Parcel, participants []Participant, keep int) error {
	for i, part := range participants {
		if i == keep {
			continue
		}
		if err := part.Bidder.Remove(p); err != nil {
			return fmt.Errorf("award parcel %s: %w", p.ID, err)
		}
	}
	return nil
}
