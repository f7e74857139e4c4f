package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	c "eventers-ticketing/context"
	"eventers-ticketing/logger"
	"eventers-ticketing/model"
	"eventers-ticketing/response"
	"eventers-ticketing/validation"
)

const maxBatchSize = 200

type Validator interface {
	Validate(ctx context.Context, payload, expectedEventID string) (validation.Decision, error)
	ValidateBatch(ctx context.Context, payloads []string, expectedEventID string) []validation.BatchItem
}

// Validate decides a single scan. The gated event comes from the gate token, never the body.
func Validate(service Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, eventID, ok := decodeScan(ctx, w, r)
		if !ok {
			return
		}
		if req.Data.Payload == "" {
			response.InvalidData("validate: missing payload").Send(ctx, w)
			return
		}

		d, err := service.Validate(ctx, req.Data.Payload, eventID)
		if err != nil {
			logger.Errorf(ctx, "validate: unable to decide scan: %+v", err)
			response.ServiceUnavailable().Send(ctx, w)
			return
		}

		scan := d.Result()
		response.SuccessResponse{
			Data:       &response.Data{Scan: &scan},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

func ValidateBatch(service Validator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req, eventID, ok := decodeScan(ctx, w, r)
		if !ok {
			return
		}
		n := len(req.Data.Payloads)
		if n == 0 || n > maxBatchSize {
			response.InvalidData(fmt.Sprintf("validateBatch: between 1 and %d payloads required, got %d", maxBatchSize, n)).Send(ctx, w)
			return
		}

		items := service.ValidateBatch(ctx, req.Data.Payloads, eventID)
		scans := make([]model.ScanResult, len(items))
		for i, item := range items {
			if item.Err != nil {
				logger.Errorf(ctx, "validateBatch: payload %d: %+v", i, item.Err)
				scans[i] = model.ScanResult{Outcome: "error", Reason: "unavailable"}
				continue
			}
			scans[i] = item.Decision.Result()
		}

		response.SuccessResponse{
			Data:       &response.Data{Scans: scans},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

func decodeScan(ctx context.Context, w http.ResponseWriter, r *http.Request) (model.ValidateRequest, string, bool) {
	var req model.ValidateRequest
	eventID := c.GetContextValue(ctx, c.ContextKeyEventID)
	if eventID == "" {
		response.Unauthorized().Send(ctx, w)
		return req, "", false
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest("invalid request body", fmt.Sprintf("validate: error unmarshalling request body: %+v", err)).Send(ctx, w)
		return req, "", false
	}
	return req, eventID, true
}
