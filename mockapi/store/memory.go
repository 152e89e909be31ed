package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pointr-qa/facility-contract-tests/servicedef"
)

// MemoryStore keeps everything in maps. Lists come back in insertion order.
type MemoryStore struct {
	sites         map[string]servicedef.Site
	buildings     map[string]servicedef.Building
	levels        map[string]servicedef.Level
	siteOrder     []string
	buildingOrder []string
	levelOrder    []string
	lock          sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sites:     map[string]servicedef.Site{},
		buildings: map[string]servicedef.Building{},
		levels:    map[string]servicedef.Level{},
	}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (m *MemoryStore) CreateSite(_ context.Context, site servicedef.Site) (servicedef.Site, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if site.ID == "" {
		site.ID = uuid.NewString()
	}
	site.CreatedAt = timestamp()
	site.UpdatedAt = site.CreatedAt
	if _, exists := m.sites[site.ID]; !exists {
		m.siteOrder = append(m.siteOrder, site.ID)
	}
	m.sites[site.ID] = site
	return site, nil
}

func (m *MemoryStore) GetSite(_ context.Context, id string) (servicedef.Site, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	site, ok := m.sites[id]
	if !ok {
		return servicedef.Site{}, ErrNotFound
	}
	return site, nil
}

func (m *MemoryStore) UpdateSite(_ context.Context, site servicedef.Site) (servicedef.Site, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	existing, ok := m.sites[site.ID]
	if !ok {
		return servicedef.Site{}, ErrNotFound
	}
	if site.Name != "" {
		existing.Name = site.Name
	}
	if site.Location != "" {
		existing.Location = site.Location
	}
	existing.UpdatedAt = timestamp()
	m.sites[site.ID] = existing
	return existing, nil
}

func (m *MemoryStore) DeleteSite(_ context.Context, id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.sites[id]; !ok {
		return ErrNotFound
	}
	delete(m.sites, id)
	m.siteOrder = without(m.siteOrder, id)
	return nil
}

func (m *MemoryStore) ListSites(_ context.Context) ([]servicedef.Site, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	out := make([]servicedef.Site, 0, len(m.siteOrder))
	for _, id := range m.siteOrder {
		out = append(out, m.sites[id])
	}
	return out, nil
}

func (m *MemoryStore) CreateBuilding(_ context.Context, building servicedef.Building) (servicedef.Building, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.sites[building.SiteID]; !ok {
		return servicedef.Building{}, ErrInvalidReference
	}
	if building.ID == "" {
		building.ID = uuid.NewString()
	}
	if _, exists := m.buildings[building.ID]; !exists {
		m.buildingOrder = append(m.buildingOrder, building.ID)
	}
	m.buildings[building.ID] = building
	return building, nil
}

func (m *MemoryStore) GetBuilding(_ context.Context, id string) (servicedef.Building, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	building, ok := m.buildings[id]
	if !ok {
		return servicedef.Building{}, ErrNotFound
	}
	return building, nil
}

func (m *MemoryStore) DeleteBuilding(_ context.Context, id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if _, ok := m.buildings[id]; !ok {
		return ErrNotFound
	}
	delete(m.buildings, id)
	m.buildingOrder = without(m.buildingOrder, id)
	return nil
}

func (m *MemoryStore) ListBuildings(_ context.Context, siteID string) ([]servicedef.Building, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	out := []servicedef.Building{}
	for _, id := range m.buildingOrder {
		if b := m.buildings[id]; siteID == "" || b.SiteID == siteID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateLevels(_ context.Context, levels []servicedef.Level) ([]servicedef.Level, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	out := make([]servicedef.Level, len(levels))
	for i, level := range levels {
		if _, ok := m.buildings[level.BuildingID]; !ok {
			return nil, ErrInvalidReference
		}
		if level.ID == "" {
			level.ID = uuid.NewString()
		}
		out[i] = level
	}
	for _, level := range out {
		if _, exists := m.levels[level.ID]; !exists {
			m.levelOrder = append(m.levelOrder, level.ID)
		}
		m.levels[level.ID] = level
	}
	return out, nil
}

func (m *MemoryStore) GetLevel(_ context.Context, id string) (servicedef.Level, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	level, ok := m.levels[id]
	if !ok {
		return servicedef.Level{}, ErrNotFound
	}
	return level, nil
}

func (m *MemoryStore) ListLevels(_ context.Context, buildingID string) ([]servicedef.Level, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	out := []servicedef.Level{}
	for _, id := range m.levelOrder {
		if l := m.levels[id]; buildingID == "" || l.BuildingID == buildingID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *MemoryStore) Counts(_ context.Context) (servicedef.EntityCounts, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return servicedef.EntityCounts{
		Sites:     len(m.sites),
		Buildings: len(m.buildings),
		Levels:    len(m.levels),
	}, nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func without(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
