package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OpeningHoursRoutes are the HTTP endpoints of the service.
type OpeningHoursRoutes interface {
	Ping(w http.ResponseWriter, r *http.Request)
	GetOverview(w http.ResponseWriter, r *http.Request)
	GetEvents(w http.ResponseWriter, r *http.Request)
	GetStatus(w http.ResponseWriter, r *http.Request)
	GetVisibility(w http.ResponseWriter, r *http.Request)
	ToggleVisibility(w http.ResponseWriter, r *http.Request)
	SetEditMode(w http.ResponseWriter, r *http.Request)
	CreateSlot(w http.ResponseWriter, r *http.Request)
	UpdateSlot(w http.ResponseWriter, r *http.Request)
	DeleteSlot(w http.ResponseWriter, r *http.Request)
	GetICS(w http.ResponseWriter, r *http.Request)
	GetChart(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	handler OpeningHoursRoutes
	router  *mux.Router
}

// NewRouter creates a router with the app’s routes.
func NewRouter(
	handler OpeningHoursRoutes,
	router *mux.Router) *Router {
	return &Router{
		handler: handler,
		router:  router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.Use(metricsMiddleware)

	r.router.HandleFunc("/ping", r.handler.Ping).Methods("GET")

	r.router.HandleFunc("/v1/opening-hours", r.handler.GetOverview).Methods("GET")
	r.router.HandleFunc("/v1/opening-hours/events", r.handler.GetEvents).Methods("GET")
	r.router.HandleFunc("/v1/opening-hours/status", r.handler.GetStatus).Methods("GET")
	r.router.HandleFunc("/v1/opening-hours/visibility", r.handler.GetVisibility).Methods("GET")
	r.router.HandleFunc("/v1/opening-hours/visibility/toggle", r.handler.ToggleVisibility).Methods("POST")

	// expects {"start": "HH:mm", "end": "HH:mm"}
	r.router.HandleFunc("/v1/opening-hours/days/{day:[0-9]+}/slots", r.handler.CreateSlot).Methods("POST")
	r.router.HandleFunc("/v1/opening-hours/slots/{id}", r.handler.UpdateSlot).Methods("PUT")
	r.router.HandleFunc("/v1/opening-hours/slots/{id}", r.handler.DeleteSlot).Methods("DELETE")

	// expects {"active": bool}
	r.router.HandleFunc("/v1/edit-mode", r.handler.SetEditMode).Methods("PUT")

	r.router.HandleFunc("/v1/opening-hours.ics", r.handler.GetICS).Methods("GET")
	r.router.HandleFunc("/v1/opening-hours/chart", r.handler.GetChart).Methods("GET")

	r.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}
