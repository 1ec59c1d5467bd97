package dto

type AuthResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type BalanceResponse struct {
	Balance string `json:"balance"`
}

type DistributionResponse struct {
	Outcome      string `json:"outcome"`
	NetBudget    string `json:"net_budget"`
	PayoutCount  int    `json:"payout_count"`
	RefundAmount string `json:"refund_amount"`
	FailedChecks any    `json:"failed_checks,omitempty"`
}
