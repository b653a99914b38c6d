package dto

import "time"

// SettingResponse represents a system configuration entry.
type SettingResponse struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Type      string    `json:"type"`
	Category  string    `json:"category,omitempty"`
	Min       *float64  `json:"min_value,omitempty"`
	Max       *float64  `json:"max_value,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy *int64    `json:"updated_by,omitempty"`
}

// UpdateSettingRequest carries the new raw value of an entry.
type UpdateSettingRequest struct {
	Value *string `json:"value"`
}

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status string `json:"status"`
}
