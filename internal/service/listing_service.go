package service

import (
	"context"
	"fmt"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/models"
	"eco-dashboard/internal/repository"

	"go.uber.org/zap"
)

const (
	alertsPageSize       = 20
	measurementsPageSize = 50
	measurementsPreview  = 50
)

// MeasurementsPage bundles the paginated measurement views with the
// separately capped preview list the dashboard templates consume.
type MeasurementsPage struct {
	Page    models.Page[domain.MeasurementView] `json:"page"`
	Preview []domain.MeasurementView            `json:"ultimas_mediciones"`
}

// DeviceListing is the devices page view-model.
type DeviceListing struct {
	Devices        []map[string]any `json:"dispositivos"`
	Categories     []string         `json:"categorias"`
	SelectedFilter string           `json:"categoria_seleccionada"`
}

// DeviceDetail bundles one device with its history, newest-first.
type DeviceDetail struct {
	Device       map[string]any           `json:"dispositivo"`
	Measurements []domain.MeasurementView `json:"mediciones"`
	Alerts       []map[string]any         `json:"alertas"`
}

// ListingService serves the tenant-scoped list and detail views. Page
// numbers are 1-indexed; out-of-range requests clamp to page 1, never
// an error.
type ListingService interface {
	ListAlerts(ctx context.Context, organizationID int64, page int) (*models.Page[map[string]any], error)
	ListMeasurements(ctx context.Context, organizationID int64, page int) (*MeasurementsPage, error)
	ListDevices(ctx context.Context, organizationID int64, categoryFilter string) (*DeviceListing, error)
	GetDeviceDetail(ctx context.Context, organizationID, deviceID int64) (*DeviceDetail, error)
}

type listingService struct {
	devices      repository.DevicesRepository
	measurements repository.MeasurementsRepository
	alerts       repository.AlertsRepository
	logger       *zap.Logger
}

func NewListingService(
	devices repository.DevicesRepository,
	measurements repository.MeasurementsRepository,
	alerts repository.AlertsRepository,
	logger *zap.Logger,
) ListingService {
	return &listingService{
		devices:      devices,
		measurements: measurements,
		alerts:       alerts,
		logger:       logger,
	}
}

func (s *listingService) ListAlerts(ctx context.Context, organizationID int64, page int) (*models.Page[map[string]any], error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	count, err := s.alerts.CountByTenant(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("count alerts: %w", err)
	}
	page = models.ClampPage(page, count, alertsPageSize)

	alerts, err := s.alerts.ListByTenant(ctx, organizationID, alertsPageSize, (page-1)*alertsPageSize)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}

	items := make([]map[string]any, 0, len(alerts))
	for _, a := range alerts {
		items = append(items, a.ToJSON())
	}
	return &models.Page[map[string]any]{
		Items: items,
		Pagination: models.Pagination{
			Size:  alertsPageSize,
			Page:  page,
			Count: count,
			Pages: models.TotalPages(count, alertsPageSize),
		},
	}, nil
}

func (s *listingService) ListMeasurements(ctx context.Context, organizationID int64, page int) (*MeasurementsPage, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	count, err := s.measurements.CountByTenant(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("count measurements: %w", err)
	}
	page = models.ClampPage(page, count, measurementsPageSize)

	rows, err := s.measurements.ListByTenant(ctx, organizationID, measurementsPageSize, (page-1)*measurementsPageSize)
	if err != nil {
		return nil, fmt.Errorf("list measurements: %w", err)
	}
	items := make([]domain.MeasurementView, 0, len(rows))
	for _, m := range rows {
		items = append(items, m.View())
	}

	// The preview list is independent of pagination: always the newest
	// rows, capped separately.
	previewRows, err := s.measurements.Recent(ctx, organizationID, measurementsPreview)
	if err != nil {
		return nil, fmt.Errorf("measurement preview: %w", err)
	}
	preview := make([]domain.MeasurementView, 0, len(previewRows))
	for _, m := range previewRows {
		preview = append(preview, m.View())
	}

	return &MeasurementsPage{
		Page: models.Page[domain.MeasurementView]{
			Items: items,
			Pagination: models.Pagination{
				Size:  measurementsPageSize,
				Page:  page,
				Count: count,
				Pages: models.TotalPages(count, measurementsPageSize),
			},
		},
		Preview: preview,
	}, nil
}

func (s *listingService) ListDevices(ctx context.Context, organizationID int64, categoryFilter string) (*DeviceListing, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	devices, err := s.devices.List(ctx, organizationID, categoryFilter)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	labels, err := s.devices.DistinctCategoryLabels(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("category labels: %w", err)
	}

	items := make([]map[string]any, 0, len(devices))
	for _, d := range devices {
		items = append(items, d.ToJSON())
	}
	return &DeviceListing{
		Devices:        items,
		Categories:     labels,
		SelectedFilter: categoryFilter,
	}, nil
}

func (s *listingService) GetDeviceDetail(ctx context.Context, organizationID, deviceID int64) (*DeviceDetail, error) {
	if err := requireTenant(organizationID); err != nil {
		return nil, err
	}
	// The repository already folds cross-tenant ids into ErrNotFound.
	device, err := s.devices.Get(ctx, organizationID, deviceID)
	if err != nil {
		return nil, err
	}

	measurements, err := s.measurements.ListByDevice(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("device measurements: %w", err)
	}
	alerts, err := s.alerts.ListByDevice(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("device alerts: %w", err)
	}

	mViews := make([]domain.MeasurementView, 0, len(measurements))
	for _, m := range measurements {
		if m.DeviceName == "" {
			m.DeviceName = device.Name
		}
		mViews = append(mViews, m.View())
	}
	aViews := make([]map[string]any, 0, len(alerts))
	for _, a := range alerts {
		if a.DeviceName == "" {
			a.DeviceName = device.Name
		}
		aViews = append(aViews, a.ToJSON())
	}

	return &DeviceDetail{
		Device:       device.ToJSON(),
		Measurements: mViews,
		Alerts:       aViews,
	}, nil
}
