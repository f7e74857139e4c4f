package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"eventers-ticketing/response"
	"eventers-ticketing/store"

	"github.com/gorilla/mux"
)

type TicketReader interface {
	Ticket(ctx context.Context, ticketID string) (*model.Ticket, error)
	EventRevenue(ctx context.Context, eventID string) (*model.RevenueRecord, error)
}

func GetTicket(s TicketReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ticketID := mux.Vars(r)["ticketID"]

		t, err := s.Ticket(ctx, ticketID)
		if errors.Is(err, store.ErrTicketNotFound) {
			response.ResourceNotFound(fmt.Sprintf("No ticket %s", ticketID), "").Send(ctx, w)
			return
		}
		if err != nil {
			logger.Errorf(ctx, "getTicket: unable to get ticket %s: %+v", ticketID, err)
			response.SomethingWrong().Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Ticket: t},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

func GetEventRevenue(s TicketReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		eventID := mux.Vars(r)["eventID"]

		rec, err := s.EventRevenue(ctx, eventID)
		if err != nil {
			logger.Errorf(ctx, "getEventRevenue: unable to get revenue for %s: %+v", eventID, err)
			response.SomethingWrong().Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Revenue: rec},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}
