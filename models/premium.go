package models

// PremiumRequest is the caller-supplied lookup payload.
type PremiumRequest struct {
	StrikePrice float64 `json:"strikePrice"`
	OptionType  string  `json:"optionType"`
	Side        string  `json:"side"`
	ExpiryDate  string  `json:"expiryDate"` // Format: "2024-06-27"
}

// ResolvedPremium is the normalized success response. ExpiryDate carries the
// upstream expiry label, not the caller's ISO date. Side is echoed back
// unchanged.
type ResolvedPremium struct {
	StrikePrice float64 `json:"strikePrice"`
	OptionType  string  `json:"optionType"`
	Side        string  `json:"side"`
	ExpiryDate  string  `json:"expiryDate"`
	LastPrice   float64 `json:"lastPrice"`
}

// ErrorResponse is the failure body for every error class.
type ErrorResponse struct {
	Error             string   `json:"error"`
	AvailableExpiries []string `json:"availableExpiries,omitempty"`
}
