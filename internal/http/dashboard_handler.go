package httpapi

import (
	"net/http"

	"eco-dashboard/internal/service"

	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboard service.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Overview serves the combined dashboard payload: device counts by
// category and zone, the severity roll-up, and the two recent lists.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request, tc TenantContext) {
	overview, err := h.dashboard.Overview(r.Context(), tc.OrganizationID, tc.OrganizationName)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(overview))
}

func (h *DashboardHandler) DevicesByCategory(w http.ResponseWriter, r *http.Request, tc TenantContext) {
	counts, err := h.dashboard.DeviceCountsByCategory(r.Context(), tc.OrganizationID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"dispositivos_por_categoria": counts}))
}

func (h *DashboardHandler) DevicesByZone(w http.ResponseWriter, r *http.Request, tc TenantContext) {
	counts, err := h.dashboard.DeviceCountsByZone(r.Context(), tc.OrganizationID)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"dispositivos_por_zona": counts}))
}

func (h *DashboardHandler) fail(w http.ResponseWriter, err error) {
	h.logger.Error("Dashboard query failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail("error interno"))
}
