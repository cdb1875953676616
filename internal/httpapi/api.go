package httpapi

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"staffhub.org/internal/audit"
	"staffhub.org/internal/auth"
	"staffhub.org/internal/obs"
	"staffhub.org/internal/staff"
)

// ReadyProbe reports readiness, pinging the database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer. Authorization runs per operation against the policy
// registry; operations outside the registry are served unguarded.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	codec    *auth.Codec
	guard    *auth.Guard
	authsvc  *auth.Service
	policies *auth.Registry
	staff    *staff.Service
	recorder *audit.Recorder

	rateBurst  int
	ratePerSec int
	maxBody    int64
}

// New wires the API. The policy table and the monitored-operation set are
// fixed here at startup; both are read-only afterwards.
func New(rp ReadyProbe, version string, codec *auth.Codec, users auth.UserStore, staffStore staff.Store, auditStore audit.Store) (*API, error) {
	if codec == nil {
		return nil, errors.New("token codec is required")
	}
	guard, err := auth.NewGuard(codec)
	if err != nil {
		return nil, err
	}
	authsvc, err := auth.NewService(users, codec)
	if err != nil {
		return nil, err
	}
	staffSvc, err := staff.NewService(staffStore)
	if err != nil {
		return nil, err
	}

	recorder := audit.NewRecorder(auditStore, users)
	recorder.Monitor(
		"employees.create",
		"employees.update",
		"employees.delete",
		"users.create",
	)

	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		codec:      codec,
		guard:      guard,
		authsvc:    authsvc,
		policies:   defaultPolicies(),
		staff:      staffSvc,
		recorder:   recorder,
		rateBurst:  20,
		ratePerSec: 10,
		maxBody:    1 << 20,
	}

	a.mux.HandleFunc("/healthz", a.healthz)
	a.mux.HandleFunc("/readyz", a.readyz)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/auth/login", a.handleLogin)
	a.mux.HandleFunc("/v1/users", a.handleUsers)
	a.mux.HandleFunc("/v1/employees", a.handleEmployees)
	a.mux.HandleFunc("/v1/employees/", a.handleEmployeeScoped)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a, nil
}

// defaultPolicies mirrors the guarded surface: creating employees needs
// admin or hr, updating additionally admits managers, deleting needs both
// admin and hr, and user management is admin-only at the group level.
// Read operations are unguarded.
func defaultPolicies() *auth.Registry {
	reg := auth.NewRegistry()
	reg.Guard("employees.create", auth.RequireAny(auth.RoleAdmin, auth.RoleHR))
	reg.Guard("employees.update", auth.RequireAny(auth.RoleAdmin, auth.RoleHR, auth.RoleManager))
	reg.Guard("employees.delete",
		auth.RequireAll(auth.RoleAdmin, auth.RoleHR).
			WithMessage("admin and hr roles are required to delete employees"))
	reg.GuardGroup("users", auth.RequireAny(auth.RoleAdmin))
	return reg
}

// Handler returns the server handler with the full middleware chain applied.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, a.maxBody)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// authorize resolves the operation's policy and evaluates it. It writes the
// denial response itself and reports whether the handler may proceed.
func (a *API) authorize(w http.ResponseWriter, r *http.Request, operation string) bool {
	policy, ok := a.policies.Lookup(operation)
	if !ok {
		return true
	}
	decision := a.guard.Authorize(r.Context(), policy)
	if decision.Allowed {
		return true
	}
	obs.IncAuthDenied(decision.Reason.String())
	switch decision.Reason {
	case auth.DenyUnauthenticated:
		writeError(w, r, http.StatusUnauthorized, decision.Message)
	case auth.DenyForbidden:
		writeError(w, r, http.StatusForbidden, decision.Message)
	default:
		writeError(w, r, http.StatusInternalServerError, decision.Message)
	}
	return false
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "staffhub-api",
		"version": a.version,
	})
}

func (a *API) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.readyProbe.Check(ctx); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}
