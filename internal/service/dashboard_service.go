package service

import (
	"context"
	"fmt"
	"strings"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/repository"

	"go.uber.org/zap"
)

const recentLimit = 10

// SeverityCounts holds the alert roll-up: per-bucket counts keyed by the
// uppercased alert type, plus the three dashboard cards. Each card
// checks the English bucket first, then the Spanish one, defaulting to 0.
type SeverityCounts struct {
	Buckets map[string]int `json:"buckets"`
	Grave   int            `json:"conteo_grave"`
	Alto    int            `json:"conteo_alto"`
	Mediano int            `json:"conteo_mediano"`
}

// Overview is the full dashboard view-model for one tenant.
type Overview struct {
	OrganizationName   string                   `json:"organization_name"`
	DevicesByCategory  map[string]int           `json:"dispositivos_por_categoria"`
	DevicesByZone      map[string]int           `json:"dispositivos_por_zona"`
	AlertsBySeverity   SeverityCounts           `json:"alertas_por_severidad"`
	RecentAlerts       []map[string]any         `json:"alertas_recientes"`
	RecentMeasurements []domain.MeasurementView `json:"ultimas_mediciones"`
}

// DashboardService computes the tenant-scoped aggregations. Every
// operation fails closed: an unresolved tenant id never reaches the
// repositories.
type DashboardService interface {
	DeviceCountsByCategory(ctx context.Context, organizationID int64) (map[string]int, error)
	DeviceCountsByZone(ctx context.Context, organizationID int64) (map[string]int, error)
	AlertCountsBySeverity(ctx context.Context, organizationID int64) (SeverityCounts, error)
	RecentAlerts(ctx context.Context, organizationID int64) ([]*domain.Alert, error)
	RecentMeasurements(ctx context.Context, organizationID int64) ([]domain.MeasurementView, error)
	Overview(ctx context.Context, organizationID int64, organizationName string) (*Overview, error)
}

type dashboardService struct {
	orgs         repository.OrganizationsRepository
	devices      repository.DevicesRepository
	measurements repository.MeasurementsRepository
	alerts       repository.AlertsRepository
	logger       *zap.Logger
}

func NewDashboardService(
	orgs repository.OrganizationsRepository,
	devices repository.DevicesRepository,
	measurements repository.MeasurementsRepository,
	alerts repository.AlertsRepository,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		orgs:         orgs,
		devices:      devices,
		measurements: measurements,
		alerts:       alerts,
		logger:       logger,
	}
}

func requireTenant(organizationID int64) error {
	if organizationID <= 0 {
		return domain.ErrInvalidSession
	}
	return nil
}

func (s *dashboardService) DeviceCountsByCategory(ctx context.Context, organizationID int64) (map[string]int, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	rows, err := s.devices.CountByCategory(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("device counts by category: %w", err)
	}
	return labelCounts(rows, domain.LabelNoCategory), nil
}

func (s *dashboardService) DeviceCountsByZone(ctx context.Context, organizationID int64) (map[string]int, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	rows, err := s.devices.CountByZone(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("device counts by zone: %w", err)
	}
	return labelCounts(rows, domain.LabelNoZone), nil
}

// labelCounts folds grouped rows into a map, collecting unlabelled rows
// under the sentinel.
func labelCounts(rows []repository.CategoryCount, sentinel string) map[string]int {
	out := map[string]int{}
	for _, row := range rows {
		label := row.Label
		if label == "" {
			label = sentinel
		}
		out[label] += row.Count
	}
	return out
}

func (s *dashboardService) AlertCountsBySeverity(ctx context.Context, organizationID int64) (SeverityCounts, error) {
	if err := requireTenant(organizationID); err != nil {
		return SeverityCounts{}, err
	}
	rows, err := s.alerts.CountBySeverity(ctx, organizationID)
	if err != nil {
		return SeverityCounts{}, fmt.Errorf("alert counts by severity: %w", err)
	}

	buckets := map[string]int{}
	for _, row := range rows {
		buckets[strings.ToUpper(row.Label)] += row.Count
	}

	return SeverityCounts{
		Buckets: buckets,
		Grave:   pick(buckets, "CRITICAL", "GRAVE"),
		Alto:    pick(buckets, "HIGH", "ALTO"),
		Mediano: pick(buckets, "MEDIUM", "MEDIANO"),
	}, nil
}

// pick returns the first non-zero bucket among the label aliases.
func pick(buckets map[string]int, labels ...string) int {
	for _, label := range labels {
		if v := buckets[label]; v != 0 {
			return v
		}
	}
	return 0
}

func (s *dashboardService) RecentAlerts(ctx context.Context, organizationID int64) ([]*domain.Alert, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	alerts, err := s.alerts.Recent(ctx, organizationID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent alerts: %w", err)
	}
	return alerts, nil
}

func (s *dashboardService) RecentMeasurements(ctx context.Context, organizationID int64) ([]domain.MeasurementView, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	measurements, err := s.measurements.Recent(ctx, organizationID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("recent measurements: %w", err)
	}
	views := make([]domain.MeasurementView, 0, len(measurements))
	for _, m := range measurements {
		views = append(views, m.View())
	}
	return views, nil
}

// resolveName falls back from the session-provided name to the stored
// organization name, then to the global label.
func (s *dashboardService) resolveName(ctx context.Context, organizationID int64, name string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	if org, err := s.orgs.GetByID(ctx, organizationID); err == nil && org.Name != "" {
		return org.Name
	}
	return "Global"
}

func (s *dashboardService) Overview(ctx context.Context, organizationID int64, organizationName string) (*Overview, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}

	byCategory, err := s.DeviceCountsByCategory(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	byZone, err := s.DeviceCountsByZone(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	severity, err := s.AlertCountsBySeverity(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	alerts, err := s.RecentAlerts(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	measurements, err := s.RecentMeasurements(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	alertViews := make([]map[string]any, 0, len(alerts))
	for _, a := range alerts {
		alertViews = append(alertViews, a.ToJSON())
	}

	return &Overview{
		OrganizationName:   s.resolveName(ctx, organizationID, organizationName),
		DevicesByCategory:  byCategory,
		DevicesByZone:      byZone,
		AlertsBySeverity:   severity,
		RecentAlerts:       alertViews,
		RecentMeasurements: measurements,
	}, nil
}
