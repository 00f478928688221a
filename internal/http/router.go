package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux; no third-party routing.
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

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterRoutes wires every API surface. Auth endpoints and static uploads
// stay open; everything else sits behind the token middleware.
func (r *Router) RegisterRoutes(
	auth *AuthHandler,
	visits *VisitHandler,
	outlets *OutletHandler,
	assignees *AssigneeHandler,
	mdSchedules, salesSchedules *ScheduleHandler,
	dashboard *DashboardHandler,
	sync *SyncHandler,
	uploadDir string,
) {
	r.Handle("/api/auth/login", auth.Login)
	r.Handle("/api/auth/register", auth.Register)
	r.Handle("/api/auth/logout", auth.RequireAuth(auth.Logout))
	r.Handle("/api/auth/users", auth.RequireAuth(auth.Users))
	r.Handle("/api/auth/users/", auth.RequireAuth(auth.Users))
	r.Handle("/api/auth/sessions", auth.RequireAuth(auth.Sessions))

	// The schedule collections live under /api/visits/{md,sales}; longer
	// patterns win over the /api/visits/ state-machine prefix.
	r.Handle("/api/visits/", auth.RequireAuth(visits.ServeHTTP))
	r.Handle("/api/visits/md", auth.RequireAuth(mdSchedules.ServeHTTP))
	r.Handle("/api/visits/md/", auth.RequireAuth(mdSchedules.ServeHTTP))
	r.Handle("/api/visits/sales", auth.RequireAuth(salesSchedules.ServeHTTP))
	r.Handle("/api/visits/sales/", auth.RequireAuth(salesSchedules.ServeHTTP))
	r.Handle("/api/outlets", auth.RequireAuth(outlets.ServeHTTP))
	r.Handle("/api/outlets/", auth.RequireAuth(outlets.ServeHTTP))
	r.Handle("/api/assignees", auth.RequireAuth(assignees.ServeHTTP))
	r.Handle("/api/assignees/", auth.RequireAuth(assignees.ServeHTTP))
	r.Handle("/api/dashboard/stats", auth.RequireAuth(dashboard.Stats))
	r.Handle("/api/reports/visit-actions/export", auth.RequireAuth(dashboard.ExportVisitActions))
	r.Handle("/api/sync/trigger", auth.RequireAuth(sync.Trigger))
	r.Handle("/api/sync/logs", auth.RequireAuth(sync.Logs))

	// Stored photos are served back to the dashboard as plain files.
	r.HandleHandler("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
}
