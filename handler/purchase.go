package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"eventers-ticketing/model"
	"eventers-ticketing/purchase"
	"eventers-ticketing/response"
)

type Purchaser interface {
	Purchase(ctx context.Context, req model.Purchase) (*purchase.Result, error)
}

func Purchase(service Purchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req model.PurchaseRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			response.BadRequest("invalid request body", fmt.Sprintf("purchase: error unmarshalling request body: %+v", err)).Send(ctx, w)
			return
		}
		if req.Data.Purchase == nil {
			response.InvalidData("purchase: missing purchase").Send(ctx, w)
			return
		}

		res, err := service.Purchase(ctx, *req.Data.Purchase)
		if err != nil {
			purchaseError(err).Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Data: &response.Data{
				Purchase: &model.PurchaseResponse{
					OrderID:       res.OrderID,
					Tickets:       res.Tickets,
					TransactionID: res.TransactionID,
					Warnings:      res.Warnings,
				},
			},
			StatusCode: http.StatusCreated,
		}.Send(w)
	}
}

func purchaseError(err error) response.ErrorResponse {
	var pe *purchase.Error
	if !errors.As(err, &pe) {
		return response.SomethingWrong()
	}

	switch pe.Reason {
	case purchase.ReasonInvalidInput:
		return response.InvalidData(pe.Message)
	case purchase.ReasonInvalidPhone:
		return response.InvalidPhone(pe.Message)
	case purchase.ReasonPaymentDeclined:
		return response.PaymentDeclined(pe.Message)
	case purchase.ReasonCancelled:
		return response.RequestCancelled()
	case purchase.ReasonUnavailable:
		return response.ServiceUnavailable()
	case purchase.ReasonIssuanceFailed, purchase.ReasonPersistError:
		return response.IssuanceFailed(pe.TransactionID)
	}
	return response.SomethingWrong()
}
