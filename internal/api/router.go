package api

import (
	"net/http"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/api/handlers"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(planner *services.Planner) http.Handler {
	mux := http.NewServeMux()

	routing := &handlers.RoutingHandler{
		Planner:   planner,
		Validator: handlers.NewValidator(),
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/startday/", routing.StartDay)
	mux.HandleFunc("/addorder/", routing.AddOrder)
	mux.HandleFunc("/delorder/", routing.DelOrder)

	return requestIDMiddleware(loggingMiddleware(mux))
}
