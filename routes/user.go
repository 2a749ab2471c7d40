package routes

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"masterboxer.com/project-newsfeed/auth"
	"masterboxer.com/project-newsfeed/handlers"
)

func CreateUserRoutes(accounts handlers.Accounts, issuer *auth.Issuer, router *mux.Router) *mux.Router {
	router.HandleFunc("/users", handlers.CreateUser(accounts)).Methods("POST")
	router.HandleFunc("/login", handlers.Login(accounts, issuer)).Methods("POST")

	return router
}

func CreateSystemRoutes(router *mux.Router) *mux.Router {
	router.HandleFunc("/health", handlers.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}
