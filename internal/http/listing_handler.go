package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"eco-dashboard/internal/domain"
	"eco-dashboard/internal/service"

	"go.uber.org/zap"
)

const msgDeviceNotFound = "Dispositivo no encontrado"

type ListingHandler struct {
	listing service.ListingService
	logger  *zap.Logger
}

func NewListingHandler(listing service.ListingService, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{listing: listing, logger: logger}
}

// Alerts serves the paginated alert listing. ?page= parses leniently:
// anything non-numeric or out of range lands on page 1.
func (h *ListingHandler) Alerts(w http.ResponseWriter, r *http.Request, tc TenantContext) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	result, err := h.listing.ListAlerts(r.Context(), tc.OrganizationID, page)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

func (h *ListingHandler) Measurements(w http.ResponseWriter, r *http.Request, tc TenantContext) {
	page := parseInt(r.URL.Query().Get("page"), 1)
	result, err := h.listing.ListMeasurements(r.Context(), tc.OrganizationID, page)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// MeasurementsExport streams the tenant's recent measurements as an
// Excel attachment.
func (h *ListingHandler) MeasurementsExport(w http.ResponseWriter, r *http.Request, tc TenantContext) {
	result, err := h.listing.ListMeasurements(r.Context(), tc.OrganizationID, 1)
	if err != nil {
		h.fail(w, err)
		return
	}
	data, err := GenerateMeasurementsExport(result.Preview)
	if err != nil {
		h.fail(w, fmt.Errorf("generate export: %w", err))
		return
	}

	filename := fmt.Sprintf("mediciones_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// Devices serves the device listing with the optional exact-match
// ?category= filter; an unmatched filter yields an empty list.
func (h *ListingHandler) Devices(w http.ResponseWriter, r *http.Request, tc TenantContext) {
	category := r.URL.Query().Get("category")
	result, err := h.listing.ListDevices(r.Context(), tc.OrganizationID, category)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(result))
}

// DeviceDetail serves one device with its measurement and alert
// history. A malformed id, an absent id and a cross-tenant id all
// produce the same not-found response.
func (h *ListingHandler) DeviceDetail(w http.ResponseWriter, r *http.Request, tc TenantContext, rawID string) {
	deviceID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, Fail(msgDeviceNotFound))
		return
	}

	detail, err := h.listing.GetDeviceDetail(r.Context(), tc.OrganizationID, deviceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, Fail(msgDeviceNotFound))
			return
		}
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(detail))
}

func (h *ListingHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("Listing query failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail("error interno"))
}
