package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitpot/splitpot/internal/middleware"
)

// NewRouter builds the full route tree: public auth routes, the
// authenticated ledger API, and operational endpoints. gatherer serves
// /metrics; pass prometheus.DefaultGatherer in production.
func NewRouter(h *Handler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", h.SignUp)
		r.Post("/auth/login", h.LogIn)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.JWT))

			r.Post("/register", h.Register)
			r.Get("/users/{account}", h.GetUser)
			r.Get("/me/groups", h.GetMyGroups)

			r.Post("/groups", h.CreateGroup)
			r.Get("/groups/count", h.GetGroupCount)
			r.Route("/groups/{id}", func(r chi.Router) {
				r.Get("/", h.GetGroup)
				r.Delete("/", h.DeleteGroup)
				r.Get("/balances", h.GetGroupWithBalances)
				r.Get("/members/{account}/balance", h.GetBalance)
				r.Post("/members", h.AddMember)
				r.Post("/expenses", h.AddExpense)
				r.Get("/expenses", h.GetExpenses)
				r.Post("/settlements", h.SettleDebt)
				r.Get("/settlements", h.GetSettlements)
				r.Get("/activities", h.GetActivities)
			})
		})
	})

	return r
}
