package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	auth "github.com/mind-engage/ipa-grading/internal/auth/middleware"
	"github.com/mind-engage/ipa-grading/internal/evaluation"
	"github.com/mind-engage/ipa-grading/internal/grading"
	"github.com/mind-engage/ipa-grading/internal/metrics"
	"github.com/mind-engage/ipa-grading/internal/rbac"
	"github.com/mind-engage/ipa-grading/internal/storage"
	syncx "github.com/mind-engage/ipa-grading/internal/sync"
)

// Deps is everything the router needs. Rubric is shared read-only.
type Deps struct {
	Rubric  *grading.Rubric
	Store   evaluation.Store
	Events  *syncx.EventRepo
	Auth    *auth.AuthService
	Metrics *metrics.Metrics

	// Blobs and RubricPrefix enable the /rubrics artifact routes.
	Blobs        storage.BlobStore
	RubricPrefix string

	EnableRegistration bool
	CORSOrigins        []string

	// Ready backs /readyz; nil means always ready.
	Ready func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				http.Error(w, "not ready: "+err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())

	r.Post("/auth/login", LoginHandler(d.Store, d.Auth, d.Metrics))
	if d.EnableRegistration {
		r.Post("/auth/register", RegisterHandler(d.Store))
	}
	r.Get("/criteria", CriteriaHandler(d.Rubric))

	// Protected API (JWT -> subject and role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.Route("/evaluations", func(er chi.Router) {
			er.Use(rbac.Require(rbac.PermEvaluationOwn))
			er.Get("/", ListEvaluationsHandler(d.Rubric, d.Store))
			er.Get("/calculate", CalculateHandler(d.Rubric, d.Store, d.Metrics))
			er.With(rbac.Require(rbac.PermEvaluationExport)).
				Get("/export", ExportHandler(d.Store))
			er.Post("/import", ImportHandler(d.Rubric, d.Store))
			er.Post("/{criteriaID}", SaveEvaluationHandler(d.Rubric, d.Store, d.Metrics))
		})

		pr.With(rbac.Require(rbac.PermProfileOwn)).Get("/users/profile", GetProfileHandler(d.Store))
		pr.With(rbac.Require(rbac.PermProfileOwn)).Put("/users/profile", UpdateProfileHandler(d.Store))
		pr.With(rbac.Require(rbac.PermProfileOwn)).
			Post("/users/change-password", ChangePasswordHandler(d.Store))

		pr.With(rbac.Require(rbac.PermUsersList)).Get("/users", ListUsersHandler(d.Store))
		pr.With(rbac.Require(rbac.PermUsersCreate)).Post("/users", CreateUserHandler(d.Store))

		if d.Events != nil {
			pr.With(rbac.Require(rbac.PermEventsView)).Get("/events", EventsHandler(d.Events))
		}

		if d.Blobs != nil {
			pr.Route("/rubrics", func(rr chi.Router) {
				rr.Use(rbac.Require(rbac.PermRubricsManage))
				MountRubrics(rr, d.Blobs, d.RubricPrefix)
			})
		}
	})

	return r
}
