package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.loggingMw, s.maxBytesMw)

	r.HandleFunc("/healthz", s.healthz()).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/login", s.adminLogin()).Methods(http.MethodPost)

	adminAPI := api.PathPrefix("/admin").Subrouter()
	adminAPI.Use(s.authMw)
	adminAPI.HandleFunc("/controllers", s.controllersList()).Methods(http.MethodGet)
	adminAPI.HandleFunc("/controllers/{mac}/history", s.controllerHistory()).Methods(http.MethodGet)
	adminAPI.HandleFunc("/evaluate", s.evaluateNow()).Methods(http.MethodPost)
	adminAPI.PathPrefix("").Handler(http.NotFoundHandler())

	return r
}
