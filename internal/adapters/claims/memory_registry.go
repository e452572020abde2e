package claims

import (
	"context"
	"fmt"
	"pdp-route-service/internal/ports"
	"sync"
)

var _ ports.ClaimRegistry = (*MemoryRegistry)(nil)

// MemoryRegistry is a process-local ClaimRegistry.
type MemoryRegistry struct {
	mu     sync.Mutex
	owners map[string]string
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{owners: map[string]string{}}
}

func (m *MemoryRegistry) Acquire(_ context.Context, parcelID, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, ok := m.owners[parcelID]; ok && owner != ownerID {
		return fmt.Errorf("acquire claim: parcel %s held by %s: %w", parcelID, owner, ports.ErrClaimTaken)
	}
	m.owners[parcelID] = ownerID
	return nil
}

func (m *MemoryRegistry) Release(_ context.Context, parcelID, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.owners[parcelID]
	if !ok {
		return nil
	}
	if owner != ownerID {
		return fmt.Errorf("release claim: parcel %s is held by another owner: %w", parcelID, ports.ErrClaimTaken)
	}
	delete(m.owners, parcelID)
	return nil
}

func (m *MemoryRegistry) Owner(_ context.Context, parcelID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.owners[parcelID], nil
}
