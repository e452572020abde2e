package comm

import (
	"errors"
	"fmt"
	"pdp-route-service/internal/domain"
	"slices"
)

// ErrPrecondition is returned when a parcel is not in the ledger state an
// operation requires. It always signals a caller bug.
var ErrPrecondition = errors.New("claim precondition violated")

type claimState int

const (
	visible claimState = iota
	claimed
)

// Bidder is the claim ledger of a single agent.
//
// Every parcel the agent received is either visible-unclaimed or claimed by
// the agent. Parcels are reported in the order they were received. A Bidder
// is owned by one agent and is not safe for concurrent use.
type Bidder struct {
	agentID string
	order   []string
	parcels map[string]*domain.Parcel
	states  map[string]claimState
}

func NewBidder(agentID string) *Bidder {
	return &Bidder{
		agentID: agentID,
		parcels: map[string]*domain.Parcel{},
		states:  map[string]claimState{},
	}
}

func (b *Bidder) AgentID() string { return b.agentID }

// Receive registers p as visible. Already tracked parcels are left untouched.
func (b *Bidder) Receive(p *domain.Parcel) {
	if _, ok := b.states[p.ID]; ok {
		return
	}
	b.order = append(b.order, p.ID)
	b.parcels[p.ID] = p
	b.states[p.ID] = visible
}

// Claim commits the agent to serve a visible parcel.
func (b *Bidder) Claim(p *domain.Parcel) error {
	st, ok := b.states[p.ID]
	if !ok || st != visible {
		return fmt.Errorf("claim: agent %s: parcel %s is not visible and unclaimed: %w", b.agentID, p.ID, ErrPrecondition)
	}
	b.states[p.ID] = claimed
	return nil
}

// Unclaim makes a claimed parcel visible again.
func (b *Bidder) Unclaim(p *domain.Parcel) error {
	if st, ok := b.states[p.ID]; !ok || st != claimed {
		return fmt.Errorf("unclaim: agent %s: parcel %s is not claimed: %w", b.agentID, p.ID, ErrPrecondition)
	}
	b.states[p.ID] = visible
	return nil
}

// Remove forgets a parcel that left the agent's visibility. Claimed parcels
// stay until they are unclaimed or done.
func (b *Bidder) Remove(p *domain.Parcel) error {
	st, ok := b.states[p.ID]
	if !ok {
		return nil
	}
	if st == claimed {
		return fmt.Errorf("remove: agent %s: parcel %s is claimed: %w", b.agentID, p.ID, ErrPrecondition)
	}
	b.forget(p.ID)
	return nil
}

// Done forgets a claimed parcel once it has been delivered.
func (b *Bidder) Done(p *domain.Parcel) error {
	if st, ok := b.states[p.ID]; !ok || st != claimed {
		return fmt.Errorf("done: agent %s: parcel %s is not claimed: %w", b.agentID, p.ID, ErrPrecondition)
	}
	b.forget(p.ID)
	return nil
}

func (b *Bidder) forget(id string) {
	b.order = slices.DeleteFunc(b.order, func(o string) bool { return o == id })
	delete(b.parcels, id)
	delete(b.states, id)
}

// Parcels returns the visible, unclaimed parcels.
func (b *Bidder) Parcels() []*domain.Parcel { return b.collect(visible) }

// Claimed returns the parcels claimed by the agent.
func (b *Bidder) Claimed() []*domain.Parcel { return b.collect(claimed) }

// IsClaimed reports whether the agent holds a claim on the parcel.
func (b *Bidder) IsClaimed(parcelID string) bool {
	st, ok := b.states[parcelID]
	return ok && st == claimed
}

func (b *Bidder) collect(want claimState) []*domain.Parcel {
	out := []*domain.Parcel{}
	for _, id := range b.order {
		if b.states[id] == want {
			out = append(out, b.parcels[id])
		}
	}
	return out
}

// Bid estimates what serving p costs an agent standing at pos: the drive
// to its pickup plus the pickup-to-delivery legs of the parcels it already
// claimed. Lower bids win.
func (b *Bidder) Bid(pos domain.Point, p *domain.Parcel) float64 {
	bid := domain.Distance(pos, p.PickupLocation)
	for _, c := range b.Claimed() {
		bid += domain.Distance(c.PickupLocation, c.DeliveryLocation)
	}
	return bid
}
