package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Teja2142/Hyrind-Backend/api/controllers"
	billingcontrollers "github.com/Teja2142/Hyrind-Backend/api/controllers/billing"
	plancontrollers "github.com/Teja2142/Hyrind-Backend/api/controllers/plans"
	subscriptioncontrollers "github.com/Teja2142/Hyrind-Backend/api/controllers/subscriptions"
	webhookcontrollers "github.com/Teja2142/Hyrind-Backend/api/controllers/webhooks"
	"github.com/Teja2142/Hyrind-Backend/api/middleware"
	"github.com/Teja2142/Hyrind-Backend/internal/billing"
	"github.com/Teja2142/Hyrind-Backend/internal/plans"
	subscriptionsvc "github.com/Teja2142/Hyrind-Backend/internal/subscriptions"
	"github.com/Teja2142/Hyrind-Backend/pkg/config"
	"github.com/Teja2142/Hyrind-Backend/pkg/db"
	"github.com/Teja2142/Hyrind-Backend/pkg/enums"
	"github.com/Teja2142/Hyrind-Backend/pkg/logger"
	"github.com/Teja2142/Hyrind-Backend/pkg/redis"
)

// RedisDependency is the slice of the redis client the HTTP layer needs.
type RedisDependency interface {
	redis.IdempotencyStore
	redis.Pinger
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient RedisDependency,
	planService plans.Service,
	subscriptionsService subscriptionsvc.Service,
	billingService billing.Service,
	paymentWebhookService webhookcontrollers.PaymentWebhookService,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redisClient,
		}))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/subscriptions", func(r chi.Router) {
		r.Route("/plans", func(r chi.Router) {
			r.Get("/", plancontrollers.List(planService, logg))
			r.Get("/base_plan/", plancontrollers.BasePlan(planService, logg))
			r.Get("/addons/", plancontrollers.Addons(planService, logg))
			r.Get("/{id}/", plancontrollers.Get(planService, logg))
		})

		r.Post("/webhook/payment/", webhookcontrollers.PaymentWebhook(paymentWebhookService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(redisClient, logg))

			r.Route("/my-subscriptions", func(r chi.Router) {
				r.Get("/", subscriptioncontrollers.List(subscriptionsService, logg))
				r.Post("/", subscriptioncontrollers.Create(subscriptionsService, logg))
				r.Get("/summary/", subscriptioncontrollers.Summary(subscriptionsService, logg))
				r.Get("/{id}/", subscriptioncontrollers.Get(subscriptionsService, logg))
				r.Post("/{id}/activate/", subscriptioncontrollers.Activate(subscriptionsService, logg))
				r.Post("/{id}/cancel/", subscriptioncontrollers.Cancel(subscriptionsService, logg))
			})

			r.Route("/billing-history", func(r chi.Router) {
				r.Get("/", billingcontrollers.History(billingService, logg))
				r.Get("/statistics/", billingcontrollers.Statistics(billingService, logg))
				r.Get("/{id}/", billingcontrollers.Entry(billingService, logg))
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.MemberRoleAdmin, logg))
				r.Get("/subscriptions/", subscriptioncontrollers.AdminList(subscriptionsService, logg))
				r.Patch("/subscriptions/{id}/", subscriptioncontrollers.AdminUpdate(subscriptionsService, logg))
				r.Post("/plans/", plancontrollers.AdminCreate(planService, logg))
				r.Patch("/plans/{id}/", plancontrollers.AdminUpdate(planService, logg))
				r.Post("/plans/{id}/deactivate/", plancontrollers.AdminDeactivate(planService, logg))
			})
		})
	})

	return r
}
