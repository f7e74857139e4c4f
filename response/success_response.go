package response

import (
	"encoding/json"
	"net/http"

	"eventers-ticketing/model"
	"eventers-ticketing/payment"
)

type SuccessResponse struct {
	Data       *Data `json:"data"`
	StatusCode int   `json:"-"`
}

type Data struct {
	Purchase *model.PurchaseResponse `json:"purchase,omitempty"`
	Ticket   *model.Ticket           `json:"ticket,omitempty"`
	Scan     *model.ScanResult       `json:"scan,omitempty"`
	Scans    []model.ScanResult      `json:"scans,omitempty"`
	Revenue  *model.RevenueRecord    `json:"revenue,omitempty"`
	Methods  []payment.Method        `json:"methods,omitempty"`
	Status   string                  `json:"status,omitempty"`
}

func (r SuccessResponse) Send(w http.ResponseWriter) {
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}
