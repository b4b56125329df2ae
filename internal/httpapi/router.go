package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"trainingdesk/internal/accident"
	"trainingdesk/internal/api"
	"trainingdesk/internal/auth"
	"trainingdesk/internal/booking"
	"trainingdesk/internal/coursetype"
	"trainingdesk/pkg/config"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool
	Log *zap.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	bookingsRepo := booking.NewRepository(deps.DB)
	courseTypesRepo := coursetype.NewRepository(deps.DB)
	accidentsRepo := accident.NewRepository(deps.DB)

	authHandlers := auth.Handlers{Cfg: deps.Cfg}
	bookingHandlers := booking.Handlers{
		DB:          deps.DB,
		Bookings:    bookingsRepo,
		CourseTypes: courseTypesRepo,
		Log:         deps.Log,
	}
	courseTypeHandlers := coursetype.Handlers{Repo: courseTypesRepo, Log: deps.Log}
	accidentHandlers := accident.Handlers{Repo: accidentsRepo, Log: deps.Log}

	// v1
	r.Route("/v1", func(r chi.Router) {
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AdminAllowedOrigins,
		}))

		r.Post("/auth/token", authHandlers.Token)

		// Staff admin APIs
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Cfg))

			r.Get("/bookings", bookingHandlers.List)
			r.Post("/bookings", bookingHandlers.Create)
			r.Get("/bookings/{id}", bookingHandlers.Get)
			r.Get("/bookings/{id}/events", bookingHandlers.Events)
			r.Post("/bookings/{id}/cancel", bookingHandlers.Cancel)
			r.Patch("/bookings/{id}/days/{dayId}", bookingHandlers.SetDayEnd)

			r.Get("/course-types", courseTypeHandlers.List)
			r.Post("/course-types", courseTypeHandlers.Create)

			r.Get("/accident-reports", accidentHandlers.List)
			r.Post("/accident-reports", accidentHandlers.Create)
		})
	})

	return r
}
