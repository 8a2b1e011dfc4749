package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux (no third-party
// router dependency needed at this route count).
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterAuthRoutes wires login/logout/registration.
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.Handle("/api/v1/auth/login", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Login(w, req)
	})
	r.Handle("/api/v1/auth/logout", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Logout(w, req)
	})
	r.Handle("/api/v1/auth/register", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Register(w, req)
	})
}

// RegisterDashboardRoutes wires the aggregation views behind the guard.
func (r *Router) RegisterDashboardRoutes(g *Guard, h *DashboardHandler) {
	r.Handle("/api/v1/dashboard", g.RequireTenant(http.MethodGet, h.Overview))
	r.Handle("/api/v1/dashboard/devices-by-category", g.RequireTenant(http.MethodGet, h.DevicesByCategory))
	r.Handle("/api/v1/dashboard/devices-by-zone", g.RequireTenant(http.MethodGet, h.DevicesByZone))
}

// RegisterListingRoutes wires the paginated listings and the device
// detail view behind the guard.
func (r *Router) RegisterListingRoutes(g *Guard, h *ListingHandler) {
	r.Handle("/api/v1/alerts", g.RequireTenant(http.MethodGet, h.Alerts))
	r.Handle("/api/v1/measurements", g.RequireTenant(http.MethodGet, h.Measurements))
	r.Handle("/api/v1/measurements/export", g.RequireTenant(http.MethodGet, h.MeasurementsExport))
	r.Handle("/api/v1/devices", g.RequireTenant(http.MethodGet, h.Devices))
	r.Handle("/api/v1/devices/", g.RequireTenant(http.MethodGet, func(w http.ResponseWriter, req *http.Request, tc TenantContext) {
		id := strings.TrimPrefix(req.URL.Path, "/api/v1/devices/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.DeviceDetail(w, req, tc, id)
	}))
}
