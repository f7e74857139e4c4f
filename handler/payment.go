package handler

import (
	"net/http"

	"eventers-ticketing/logger"
	"eventers-ticketing/payment"
	"eventers-ticketing/response"
)

func PaymentMethods(gateway payment.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		methods, err := gateway.ListMethods(ctx)
		if err != nil {
			logger.Errorf(ctx, "paymentMethods: unable to list methods: %+v", err)
			response.ServiceUnavailable().Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Methods: methods},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}
