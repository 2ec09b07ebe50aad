package controllers

import (
	"event-registration/catalog"
	"event-registration/ratelimit"
	"event-registration/services"
	"event-registration/session"
	"event-registration/store"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
)

type Limits struct {
	Default  string
	Register string
	Approve  string
}

type Deps struct {
	Store        *store.Store
	Catalog      *catalog.Catalog
	Registration *services.RegistrationService
	Payments     *services.PaymentService
	Admin        *services.AdminService
	Sessions     *session.Manager
	LimitStore   limiter.Store
	Limits       Limits
	Gatherer     prometheus.Gatherer
	Log          logrus.FieldLogger
}

// NewRouter wires every route of the service.
func NewRouter(d Deps) (*mux.Router, error) {
	defaultLimit, err := ratelimit.Middleware(d.LimitStore, "default", d.Limits.Default, d.Log)
	if err != nil {
		return nil, err
	}
	registerLimit, err := ratelimit.Middleware(d.LimitStore, "register", d.Limits.Register, d.Log)
	if err != nil {
		return nil, err
	}
	approveLimit, err := ratelimit.Middleware(d.LimitStore, "approve", d.Limits.Approve, d.Log)
	if err != nil {
		return nil, err
	}

	home := HomeController{}
	team := TeamController{}
	payment := PaymentController{}
	admin := AdminController{}

	router := mux.NewRouter()
	router.Use(LogRequests(d.Log), defaultLimit)

	router.HandleFunc("/", home.Home(d.Store)).Methods("GET")
	router.HandleFunc("/healthz", home.Health()).Methods("GET")
	router.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods("GET")

	router.HandleFunc("/team", team.Form(d.Catalog, d.Store)).Methods("GET")
	router.Handle("/team", registerLimit(team.Register(d.Registration))).Methods("POST")

	router.HandleFunc("/payment/{team_id}", payment.Info(d.Payments)).Methods("GET")
	router.HandleFunc("/payment/{team_id}", payment.Submit(d.Payments)).Methods("POST")

	router.HandleFunc("/admin/login", admin.LoginForm(d.Sessions)).Methods("GET")
	router.HandleFunc("/admin/login", admin.Login(d.Admin, d.Sessions)).Methods("POST")
	router.HandleFunc("/admin/dashboard", admin.RequireAdmin(d.Sessions, admin.Dashboard(d.Admin))).Methods("GET")
	router.Handle("/approve/{team_id}", approveLimit(admin.RequireAdmin(d.Sessions, admin.Approve(d.Admin)))).Methods("GET")
	router.HandleFunc("/admin/logout", admin.Logout(d.Admin, d.Sessions)).Methods("GET")

	return router, nil
}

