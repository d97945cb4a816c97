// Package transport defines the wire format of the lead intake endpoint.
package transport

import (
	"encoding/json"

	"spartan_estimator/internal/leads/domain"
)

// SubmitLeadRequest is the POST /api/leads body.
type SubmitLeadRequest struct {
	Name           string                 `json:"name" validate:"trimmin=2"`
	Phone          string                 `json:"phone" validate:"phonedigits"`
	Address        string                 `json:"address" validate:"trimmin=5"`
	Estimate       domain.EstimateDetails `json:"estimate"`
	EstimatedTotal domain.EstimatedTotal  `json:"estimatedTotal"`
}

// UnmarshalJSON decodes leniently. A contact field of the wrong type decodes
// as empty so it fails validation with its own message, and a malformed
// estimate or total decodes as the zero value. Only invalid JSON is an error.
func (r *SubmitLeadRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name           any             `json:"name"`
		Phone          any             `json:"phone"`
		Address        any             `json:"address"`
		Estimate       json.RawMessage `json:"estimate"`
		EstimatedTotal json.RawMessage `json:"estimatedTotal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = SubmitLeadRequest{
		Name:    asString(raw.Name),
		Phone:   asString(raw.Phone),
		Address: asString(raw.Address),
	}
	if len(raw.Estimate) > 0 {
		var details domain.EstimateDetails
		if err := json.Unmarshal(raw.Estimate, &details); err == nil {
			r.Estimate = details
		}
	}
	if len(raw.EstimatedTotal) > 0 {
		var total domain.EstimatedTotal
		if err := json.Unmarshal(raw.EstimatedTotal, &total); err == nil {
			r.EstimatedTotal = total
		}
	}
	return nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// SubmitLeadResponse is returned with 201 Created.
type SubmitLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}
