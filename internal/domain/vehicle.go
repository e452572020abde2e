package domain

import (
	"fmt"
	"slices"
)

// Static description of a vehicle in the fleet.
// Speed is expressed in distance units per millisecond of simulation time.
type Vehicle struct {
	ID            string
	StartPosition Point
	Capacity      int
	Speed         float64
}

// TravelTime returns the number of milliseconds needed to cover d.
func (v Vehicle) TravelTime(d float64) int64 {
	if v.Speed <= 0 {
		return 0
	}
	return int64(d / v.Speed)
}

// Cargo holds the parcels currently on board of a single vehicle.
type Cargo struct {
	Capacity int
	Parcels  []*Parcel
}

func NewCargo(capacity int) *Cargo {
	return &Cargo{Capacity: capacity}
}

// Size returns the capacity currently in use.
func (c *Cargo) Size() int {
	total := 0
	for _, p := range c.Parcels {
		total += p.Demand
	}
	return total
}

// Load a single parcel into the cargo hold.
func (c *Cargo) Load(p *Parcel) error {
	if c.Capacity > 0 && c.Size()+p.Demand > c.Capacity {
		return fmt.Errorf("load cargo: parcel %s does not fit (used=%d demand=%d capacity=%d)",
			p.ID, c.Size(), p.Demand, c.Capacity)
	}
	c.Parcels = append(c.Parcels, p)
	return nil
}

// Unload removes the parcel with the given ID and returns it.
func (c *Cargo) Unload(parcelID string) (*Parcel, error) {
	i := slices.IndexFunc(c.Parcels, func(p *Parcel) bool { return p.ID == parcelID })
	if i < 0 {
		return nil, fmt.Errorf("unload cargo: parcel %s is not on board", parcelID)
	}
	p := c.Parcels[i]
	c.Parcels = slices.Delete(c.Parcels, i, i+1)
	return p, nil
}

// Contains reports whether the parcel is on board.
func (c *Cargo) Contains(parcelID string) bool {
	return slices.ContainsFunc(c.Parcels, func(p *Parcel) bool { return p.ID == parcelID })
}
