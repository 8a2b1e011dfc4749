package repository

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"eco-dashboard/internal/domain"
)

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(i int64) sql.NullInt64 {
	return sql.NullInt64{Int64: i, Valid: true}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

// MemoryRepo backs the service when the DB is disabled (dev mode) and
// the unit tests. It implements every repository interface over one
// consistent in-memory dataset so cross-entity joins (device names,
// tenant chains) behave like the relational store.
type MemoryRepo struct {
	mu sync.RWMutex

	nextID        int64
	organizations map[int64]*domain.Organization
	devices       map[int64]*domain.Device
	measurements  map[int64]*domain.Measurement
	alerts        map[int64]*domain.Alert
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		nextID:        1,
		organizations: map[int64]*domain.Organization{},
		devices:       map[int64]*domain.Device{},
		measurements:  map[int64]*domain.Measurement{},
		alerts:        map[int64]*domain.Alert{},
	}
}

var (
	_ OrganizationsRepository = (*MemoryRepo)(nil)
	_ DevicesRepository       = (*MemoryRepo)(nil)
	_ MeasurementsRepository  = (*MemoryRepo)(nil)
	_ AlertsRepository        = (*memoryAlerts)(nil)
)

// AlertsRepo exposes the alerts facet; its method set would otherwise
// collide with the measurements one on this shared-dataset type.
func (r *MemoryRepo) AlertsRepo() AlertsRepository {
	return &memoryAlerts{r: r}
}

type memoryAlerts struct {
	r *MemoryRepo
}

func (r *MemoryRepo) allocID() int64 {
	id := r.nextID
	r.nextID++
	return id
}

func stamp(b *domain.Base) {
	now := time.Now()
	if b.Status == "" {
		b.Status = domain.StatusActive
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// --- organizations ---

func (r *MemoryRepo) GetByEmail(_ context.Context, email string) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, org := range r.organizations {
		if org.Email == email && !org.Deleted() {
			cp := *org
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryRepo) GetByID(_ context.Context, id int64) (*domain.Organization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.organizations[id]
	if !ok || org.Deleted() {
		return nil, domain.ErrNotFound
	}
	cp := *org
	return &cp, nil
}

func (r *MemoryRepo) Create(_ context.Context, org *domain.Organization) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.organizations {
		if existing.Email == org.Email || existing.Name == org.Name {
			return 0, domain.ErrDuplicateEntity
		}
	}
	cp := *org
	cp.ID = r.allocID()
	stamp(&cp.Base)
	r.organizations[cp.ID] = &cp
	return cp.ID, nil
}

// --- devices ---

// AddDevice seeds a device (dev mode / tests).
func (r *MemoryRepo) AddDevice(d domain.Device) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == 0 {
		d.ID = r.allocID()
	}
	stamp(&d.Base)
	r.devices[d.ID] = &d
	return d.ID
}

func (r *MemoryRepo) tenantDevices(organizationID int64) []*domain.Device {
	var out []*domain.Device
	for _, d := range r.devices {
		if d.OwnedBy(organizationID) && !d.Deleted() {
			out = append(out, d)
		}
	}
	return out
}

func (r *MemoryRepo) CountByCategory(_ context.Context, organizationID int64) ([]CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[string]int{}
	for _, d := range r.tenantDevices(organizationID) {
		var label string
		if d.CategoryLabel.Valid {
			label = d.CategoryLabel.String
		}
		counts[label]++
	}
	return toCategoryCounts(counts), nil
}

func (r *MemoryRepo) CountByZone(_ context.Context, organizationID int64) ([]CategoryCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[string]int{}
	for _, d := range r.tenantDevices(organizationID) {
		var label string
		if d.ZoneLabel.Valid {
			label = d.ZoneLabel.String
		}
		counts[label]++
	}
	return toCategoryCounts(counts), nil
}

func toCategoryCounts(counts map[string]int) []CategoryCount {
	out := make([]CategoryCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, CategoryCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

func (r *MemoryRepo) List(_ context.Context, organizationID int64, categoryFilter string) ([]*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*domain.Device{}
	for _, d := range r.tenantDevices(organizationID) {
		if categoryFilter != "" && (!d.CategoryLabel.Valid || d.CategoryLabel.String != categoryFilter) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) DistinctCategoryLabels(_ context.Context, organizationID int64) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := map[string]bool{}
	labels := []string{}
	for _, d := range r.tenantDevices(organizationID) {
		if !d.CategoryLabel.Valid || d.CategoryLabel.String == "" {
			continue
		}
		if !seen[d.CategoryLabel.String] {
			seen[d.CategoryLabel.String] = true
			labels = append(labels, d.CategoryLabel.String)
		}
	}
	sort.Strings(labels)
	return labels, nil
}

func (r *MemoryRepo) Get(_ context.Context, organizationID, deviceID int64) (*domain.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.devices[deviceID]
	// Cross-tenant lookups are indistinguishable from absent ids.
	if !ok || d.Deleted() || !d.OwnedBy(organizationID) {
		return nil, domain.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// --- measurements ---

// AddMeasurement seeds a measurement; the device name is joined in from
// the devices map.
func (r *MemoryRepo) AddMeasurement(m domain.Measurement) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.allocID()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	stamp(&m.Base)
	if d, ok := r.devices[m.DeviceID]; ok {
		m.DeviceName = d.Name
	}
	r.measurements[m.ID] = &m
	return m.ID
}

func (r *MemoryRepo) tenantMeasurements(organizationID int64) []*domain.Measurement {
	var out []*domain.Measurement
	for _, m := range r.measurements {
		if m.Deleted() {
			continue
		}
		d, ok := r.devices[m.DeviceID]
		if !ok || !d.OwnedBy(organizationID) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (r *MemoryRepo) ListByTenant(_ context.Context, organizationID int64, limit, offset int) ([]*domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sliceMeasurements(r.tenantMeasurements(organizationID), limit, offset), nil
}

func (r *MemoryRepo) CountByTenant(_ context.Context, organizationID int64) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tenantMeasurements(organizationID)), nil
}

func (r *MemoryRepo) Recent(_ context.Context, organizationID int64, limit int) ([]*domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sliceMeasurements(r.tenantMeasurements(organizationID), limit, 0), nil
}

func (r *MemoryRepo) ListByDevice(_ context.Context, deviceID int64) ([]*domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Measurement
	for _, m := range r.measurements {
		if m.DeviceID == deviceID && !m.Deleted() {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func sliceMeasurements(all []*domain.Measurement, limit, offset int) []*domain.Measurement {
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]*domain.Measurement, 0, end-offset)
	for _, m := range all[offset:end] {
		cp := *m
		out = append(out, &cp)
	}
	return out
}

// --- alerts ---

// AddAlert seeds an alert; the device name is joined in.
func (r *MemoryRepo) AddAlert(a domain.Alert) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == 0 {
		a.ID = r.allocID()
	}
	stamp(&a.Base)
	if d, ok := r.devices[a.DeviceID]; ok {
		a.DeviceName = d.Name
	}
	r.alerts[a.ID] = &a
	return a.ID
}

func (r *MemoryRepo) tenantAlerts(organizationID int64) []*domain.Alert {
	var out []*domain.Alert
	for _, a := range r.alerts {
		if a.Deleted() {
			continue
		}
		d, ok := r.devices[a.DeviceID]
		if !ok || !d.OwnedBy(organizationID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memoryAlerts) ListByTenant(_ context.Context, organizationID int64, limit, offset int) ([]*domain.Alert, error) {
	m.r.mu.RLock()
	defer m.r.mu.RUnlock()
	return sliceAlerts(m.r.tenantAlerts(organizationID), limit, offset), nil
}

func (m *memoryAlerts) CountByTenant(_ context.Context, organizationID int64) (int, error) {
	m.r.mu.RLock()
	defer m.r.mu.RUnlock()
	return len(m.r.tenantAlerts(organizationID)), nil
}

func (m *memoryAlerts) Recent(_ context.Context, organizationID int64, limit int) ([]*domain.Alert, error) {
	m.r.mu.RLock()
	defer m.r.mu.RUnlock()
	return sliceAlerts(m.r.tenantAlerts(organizationID), limit, 0), nil
}

func (m *memoryAlerts) CountBySeverity(_ context.Context, organizationID int64) ([]SeverityCount, error) {
	m.r.mu.RLock()
	defer m.r.mu.RUnlock()
	counts := map[string]int{}
	for _, a := range m.r.tenantAlerts(organizationID) {
		counts[a.NormalizedType()]++
	}
	out := make([]SeverityCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, SeverityCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (m *memoryAlerts) ListByDevice(_ context.Context, deviceID int64) ([]*domain.Alert, error) {
	m.r.mu.RLock()
	defer m.r.mu.RUnlock()
	var out []*domain.Alert
	for _, a := range m.r.alerts {
		if a.DeviceID == deviceID && !a.Deleted() {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func sliceAlerts(all []*domain.Alert, limit, offset int) []*domain.Alert {
	if offset > len(all) {
		offset = len(all)
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]*domain.Alert, 0, end-offset)
	for _, a := range all[offset:end] {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

// SeedDemo loads a small demo dataset for DB-less development.
func (r *MemoryRepo) SeedDemo(orgID int64) {
	hvac := nullString("HVAC")
	lighting := nullString("Iluminación")
	planta := nullString("Planta 1")

	d1 := r.AddDevice(domain.Device{Name: "Chiller A", MaxConsumption: 120.5, OrganizationID: nullInt64(orgID), CategoryLabel: hvac, ZoneLabel: planta})
	d2 := r.AddDevice(domain.Device{Name: "Luminaria Hall", MaxConsumption: 8.2, OrganizationID: nullInt64(orgID), CategoryLabel: lighting, ZoneLabel: planta})

	r.AddMeasurement(domain.Measurement{DeviceID: d1, Value: nullFloat(118.3)})
	r.AddMeasurement(domain.Measurement{DeviceID: d2, Value: nullFloat(7.9)})
	r.AddAlert(domain.Alert{DeviceID: d1, AlertType: nullString(domain.AlertHighConsumption), Message: "Consumo por encima del máximo"})
}
