package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Inter-iit-tech/order-allocation-microservice/internal/api/dto"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/domain"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/ports"
	"github.com/Inter-iit-tech/order-allocation-microservice/internal/services"
)

// RoutingHandler exposes the three planning endpoints. It translates wire
// shapes to planner inputs and maps the planner's error taxonomy onto HTTP
// statuses; all routing decisions live in the services layer.
type RoutingHandler struct {
	Planner   *services.Planner
	Validator *Validator
}

// StartDay computes a fresh multi-trip plan for the whole fleet.
func (h *RoutingHandler) StartDay(w http.ResponseWriter, r *http.Request) {
	var req dto.StartDayRequest
	if !h.accept(w, r, &req) {
		return
	}

	in := services.StartDayInput{
		Depot:   toDepot(req.Depot),
		Orders:  toOrders(req.Orders),
		Riders:  toRiders(req.Riders),
		Runtime: time.Duration(req.Runtime) * time.Second,
	}

	plan, err := h.Planner.StartDay(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res := dto.StartDayResponse{Riders: make([]dto.RiderTours, 0, len(plan.Riders))}
	for _, rp := range plan.Riders {
		res.Riders = append(res.Riders, dto.RiderTours{
			ID:    rp.RiderID,
			Tours: fromTours(rp.Tours),
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// AddOrder works new pickups into the submitted plan-in-progress.
func (h *RoutingHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.AddOrderRequest
	if !h.accept(w, r, &req) {
		return
	}

	newOrders := req.NewOrders
	if req.NewOrder != nil {
		newOrders = append(append([]dto.Order(nil), newOrders...), *req.NewOrder)
	}

	in := services.AddPickupsInput{
		Depot:       toDepot(req.Depot),
		Orders:      toOrders(req.Orders),
		NewOrders:   toOrders(newOrders),
		Riders:      toRiderStates(req.Riders),
		CurrentTime: req.CurrentTime,
	}

	plan, err := h.Planner.AddPickups(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, updateResponse(plan))
}

// DelOrder removes a not-yet-reached pickup from the submitted plan.
func (h *RoutingHandler) DelOrder(w http.ResponseWriter, r *http.Request) {
	var req dto.DelOrderRequest
	if !h.accept(w, r, &req) {
		return
	}

	in := services.DeletePickupInput{
		Depot:       toDepot(req.Depot),
		Orders:      toOrders(req.Orders),
		Riders:      toRiderStates(req.Riders),
		DelOrderID:  req.DelOrderID,
		CurrentTime: req.CurrentTime,
	}

	plan, err := h.Planner.DeletePickup(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, updateResponse(plan))
}

// accept enforces POST, decodes the body and runs struct validation. It
// writes the error response itself when the request is rejected.
func (h *RoutingHandler) accept(w http.ResponseWriter, r *http.Request, req any) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}

	if !decodeBody(w, r, req) {
		return false
	}

	if details := h.Validator.Check(req); details != nil {
		writeValidationError(w, r, details)
		return false
	}

	return true
}

func (h *RoutingHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ports.ErrUpstream):
		writeError(w, r, http.StatusBadGateway, "travel time provider unavailable")
	default:
		log.Printf("plan request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toDepot(d dto.Depot) domain.Depot {
	return domain.Depot{
		ID:    d.ID,
		Point: domain.Point{Longitude: d.Point.Longitude, Latitude: d.Point.Latitude},
	}
}

func toOrders(orders []dto.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	for i, o := range orders {
		out[i] = domain.Order{
			ID:           o.ID,
			Kind:         domain.OrderKind(o.OrderType),
			Point:        domain.Point{Longitude: o.Point.Longitude, Latitude: o.Point.Latitude},
			ExpectedTime: o.ExpectedTime,
			Volume:       o.Package.Volume,
			ServiceTime:  o.ServiceTime,
		}
	}
	return out
}

func toRiders(riders []dto.Rider) []domain.Rider {
	out := make([]domain.Rider, len(riders))
	for i, r := range riders {
		out[i] = domain.Rider{ID: r.ID, Capacity: r.Vehicle.Capacity, StartTime: r.StartTime}
	}
	return out
}

func toRiderStates(riders []dto.Rider) []services.RiderState {
	out := make([]services.RiderState, len(riders))
	for i, r := range riders {
		tours := make([][]domain.TourStop, len(r.Tours))
		for t, tour := range r.Tours {
			tours[t] = make([]domain.TourStop, len(tour))
			for s, stop := range tour {
				tours[t][s] = domain.TourStop{OrderID: stop.OrderID, Timing: stop.Timing}
			}
		}
		out[i] = services.RiderState{
			Rider:     domain.Rider{ID: r.ID, Capacity: r.Vehicle.Capacity, StartTime: r.StartTime},
			Tours:     tours,
			HeadingTo: r.HeadingTo,
		}
	}
	return out
}

func fromTours(tours [][]domain.TourStop) [][]dto.TourStop {
	out := make([][]dto.TourStop, len(tours))
	for t, tour := range tours {
		out[t] = make([]dto.TourStop, len(tour))
		for s, stop := range tour {
			out[t][s] = dto.TourStop{OrderID: stop.OrderID, Timing: stop.Timing}
		}
	}
	return out
}

func updateResponse(plan domain.Plan) dto.UpdateResponse {
	res := dto.UpdateResponse{Riders: make([]dto.RiderUpdate, 0, len(plan.Riders))}
	for _, rp := range plan.Riders {
		res.Riders = append(res.Riders, dto.RiderUpdate{
			ID:                 rp.RiderID,
			Tours:              fromTours(rp.Tours),
			UpdatedCurrentTour: rp.UpdatedCurrentTour,
		})
	}
	return res
}
