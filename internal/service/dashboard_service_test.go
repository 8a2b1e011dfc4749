package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func nullF(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: true}
}

func nullID(i int64) sql.NullInt64 {
	return sql.NullInt64{Int64: i, Valid: true}
}

func newDashboard(mem *repository.MemoryRepo) DashboardService {
	return NewDashboardService(mem, mem, mem, mem.AlertsRepo(), zap.NewNop())
}

func registerOrg(t *testing.T, mem *repository.MemoryRepo, name, email string) int64 {
	t.Helper()
	id, err := mem.Create(context.Background(), &domain.Organization{
		Name: name, Email: email, PasswordHash: "x",
	})
	require.NoError(t, err)
	return id
}

func TestDeviceCountsByCategorySumsToTenantTotal(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")

	mem.AddDevice(domain.Device{Name: "d1", OrganizationID: nullID(org), CategoryLabel: nullStr("HVAC")})
	mem.AddDevice(domain.Device{Name: "d2", OrganizationID: nullID(org), CategoryLabel: nullStr("HVAC")})
	mem.AddDevice(domain.Device{Name: "d3", OrganizationID: nullID(org), CategoryLabel: nullStr("Iluminación")})
	// No category label: grouped under the sentinel.
	mem.AddDevice(domain.Device{Name: "d4", OrganizationID: nullID(org)})
	// Unassigned device: excluded from every tenant view.
	mem.AddDevice(domain.Device{Name: "orphan"})

	counts, err := newDashboard(mem).DeviceCountsByCategory(context.Background(), org)
	require.NoError(t, err)

	total := 0
	for _, c := range counts {
		total += c
	}
	require.Equal(t, 4, total)
	require.Equal(t, 2, counts["HVAC"])
	require.Equal(t, 1, counts["Iluminación"])
	require.Equal(t, 1, counts[domain.LabelNoCategory])
}

func TestDeviceCountsAreTenantIsolated(t *testing.T) {
	mem := repository.NewMemoryRepo()
	orgA := registerOrg(t, mem, "A", "a@eco.local")
	orgB := registerOrg(t, mem, "B", "b@eco.local")

	mem.AddDevice(domain.Device{Name: "D1", OrganizationID: nullID(orgA), CategoryLabel: nullStr("HVAC")})
	mem.AddDevice(domain.Device{Name: "D2", OrganizationID: nullID(orgB), CategoryLabel: nullStr("HVAC")})

	counts, err := newDashboard(mem).DeviceCountsByCategory(context.Background(), orgA)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"HVAC": 1}, counts)
}

func TestDeviceCountsByZoneSentinel(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")

	mem.AddDevice(domain.Device{Name: "d1", OrganizationID: nullID(org), ZoneLabel: nullStr("Planta 1")})
	mem.AddDevice(domain.Device{Name: "d2", OrganizationID: nullID(org)})

	counts, err := newDashboard(mem).DeviceCountsByZone(context.Background(), org)
	require.NoError(t, err)
	require.Equal(t, 1, counts["Planta 1"])
	require.Equal(t, 1, counts[domain.LabelNoZone])
}

func TestAlertCountsBySeverityNormalizesCase(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")
	dev := mem.AddDevice(domain.Device{Name: "d1", OrganizationID: nullID(org)})

	mem.AddAlert(domain.Alert{DeviceID: dev, AlertType: nullStr("critical"), Message: "m"})
	mem.AddAlert(domain.Alert{DeviceID: dev, AlertType: nullStr("CRITICAL"), Message: "m"})
	mem.AddAlert(domain.Alert{DeviceID: dev, AlertType: nullStr("Alto"), Message: "m"})
	// Legacy rows keep the type in the severity column.
	mem.AddAlert(domain.Alert{DeviceID: dev, LegacySeverity: nullStr("mediano"), Message: "m"})

	counts, err := newDashboard(mem).AlertCountsBySeverity(context.Background(), org)
	require.NoError(t, err)

	total := 0
	for _, c := range counts.Buckets {
		total += c
	}
	require.Equal(t, 4, total)
	require.Equal(t, 2, counts.Buckets["CRITICAL"])
	require.Equal(t, 2, counts.Grave)
	// Spanish aliases feed the same cards.
	require.Equal(t, 1, counts.Alto)
	require.Equal(t, 1, counts.Mediano)
}

func TestAlertCountsRollupsDefaultToZero(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")
	dev := mem.AddDevice(domain.Device{Name: "d1", OrganizationID: nullID(org)})
	mem.AddAlert(domain.Alert{DeviceID: dev, AlertType: nullStr(domain.AlertMaintenance), Message: "m"})

	counts, err := newDashboard(mem).AlertCountsBySeverity(context.Background(), org)
	require.NoError(t, err)
	require.Equal(t, 0, counts.Grave)
	require.Equal(t, 0, counts.Alto)
	require.Equal(t, 0, counts.Mediano)
	require.Equal(t, 1, counts.Buckets["MAINTENANCE"])
}

func TestRecentAlertsNewestFirstCapped(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")
	dev := mem.AddDevice(domain.Device{Name: "d1", OrganizationID: nullID(org)})

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 15; i++ {
		mem.AddAlert(domain.Alert{
			DeviceID:  dev,
			AlertType: nullStr(domain.AlertHighConsumption),
			Message:   fmt.Sprintf("alert %d", i),
			Base:      domain.Base{CreatedAt: base.Add(time.Duration(i) * time.Minute)},
		})
	}

	alerts, err := newDashboard(mem).RecentAlerts(context.Background(), org)
	require.NoError(t, err)
	require.Len(t, alerts, 10)
	require.Equal(t, "alert 14", alerts[0].Message)
	for i := 1; i < len(alerts); i++ {
		require.False(t, alerts[i].CreatedAt.After(alerts[i-1].CreatedAt))
	}
}

func TestRecentMeasurementsLegacyReadingStillYieldsValor(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")
	dev := mem.AddDevice(domain.Device{Name: "Chiller A", OrganizationID: nullID(org)})

	ts := time.Date(2026, 8, 30, 12, 30, 0, 0, time.UTC)
	mem.AddMeasurement(domain.Measurement{DeviceID: dev, Reading: nullF(42.5), Timestamp: ts})

	views, err := newDashboard(mem).RecentMeasurements(context.Background(), org)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "42.5", views[0].Valor)
	require.Equal(t, "2026-08-30 12:30:00", views[0].FechaHora)
	require.Equal(t, "Chiller A", views[0].Dispositivo)
	require.Equal(t, dev, views[0].DeviceID)
}

func TestRecentMeasurementsAbsentValueIsEmptyNotError(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")
	dev := mem.AddDevice(domain.Device{Name: "d1", OrganizationID: nullID(org)})
	mem.AddMeasurement(domain.Measurement{DeviceID: dev})

	views, err := newDashboard(mem).RecentMeasurements(context.Background(), org)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, "", views[0].Valor)
}

func TestDashboardFailsClosedOnUnresolvedTenant(t *testing.T) {
	mem := repository.NewMemoryRepo()
	svc := newDashboard(mem)
	ctx := context.Background()

	_, err := svc.DeviceCountsByCategory(ctx, 0)
	require.True(t, errors.Is(err, domain.ErrInvalidSession))
	_, err = svc.AlertCountsBySeverity(ctx, -1)
	require.True(t, errors.Is(err, domain.ErrInvalidSession))
	_, err = svc.Overview(ctx, 0, "x")
	require.True(t, errors.Is(err, domain.ErrInvalidSession))
}

func TestOverviewBundlesAllSections(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")
	mem.SeedDemo(org)

	overview, err := newDashboard(mem).Overview(context.Background(), org, "Acme")
	require.NoError(t, err)
	require.Equal(t, "Acme", overview.OrganizationName)
	require.NotEmpty(t, overview.DevicesByCategory)
	require.NotEmpty(t, overview.DevicesByZone)
	require.NotEmpty(t, overview.RecentAlerts)
	require.NotEmpty(t, overview.RecentMeasurements)
}

func TestOverviewNameFallsBackToStoredThenGlobal(t *testing.T) {
	mem := repository.NewMemoryRepo()
	org := registerOrg(t, mem, "Acme", "acme@eco.local")
	svc := newDashboard(mem)
	ctx := context.Background()

	// Session without a name: the stored organization name serves.
	overview, err := svc.Overview(ctx, org, "")
	require.NoError(t, err)
	require.Equal(t, "Acme", overview.OrganizationName)

	// No name and no stored organization either: the global label.
	overview, err = svc.Overview(ctx, org+100, "")
	require.NoError(t, err)
	require.Equal(t, "Global", overview.OrganizationName)
}
