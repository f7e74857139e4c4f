package router

import (
	"fmt"
	"net/http"

	"eventers-ticketing/auth"
	"eventers-ticketing/handler"
	"eventers-ticketing/metrics"
	"eventers-ticketing/middleware"
	"eventers-ticketing/payment"
	"eventers-ticketing/response"

	"github.com/gorilla/mux"
)

// Services are the collaborators the HTTP surface is built on.
type Services struct {
	Purchases handler.Purchaser
	Scans     handler.Validator
	Tickets   handler.TicketReader
	Payments  payment.Gateway
	Gate      *auth.Gate
	Health    map[string]handler.Check
}

// Router returns the router for all the API handlers.
func Router(s Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.SetCorrelationIDHeader)
	r.Use(middleware.PanicHandler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.ResourceNotFound(fmt.Sprintf("The requested resource was not found: path: %s, method: %s", req.URL.Path, req.Method), "The requested resource was not found!").Send(req.Context(), w)
	})

	r.Use(middleware.ResponseTimeLogging)
	r.Use(middleware.RequestLogging)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(middleware.SetContentTypeHeader)
	api.HandleFunc("/healthcheck", handler.Healthcheck(s.Health)).Methods(http.MethodGet)

	baseRouter := api.PathPrefix("/v1").Subrouter()
	baseRouter.HandleFunc("/purchase", handler.Purchase(s.Purchases)).Methods(http.MethodPost)
	baseRouter.HandleFunc("/ticket/{ticketID}", handler.GetTicket(s.Tickets)).Methods(http.MethodGet)
	baseRouter.HandleFunc("/event/{eventID}/revenue", handler.GetEventRevenue(s.Tickets)).Methods(http.MethodGet)
	baseRouter.HandleFunc("/payment/methods", handler.PaymentMethods(s.Payments)).Methods(http.MethodGet)

	gateRouter := baseRouter.PathPrefix("/validate").Subrouter()
	gateRouter.Use(middleware.GateAuth(s.Gate))
	gateRouter.HandleFunc("", handler.Validate(s.Scans)).Methods(http.MethodPost)
	gateRouter.HandleFunc("/batch", handler.ValidateBatch(s.Scans)).Methods(http.MethodPost)

	return r
}
