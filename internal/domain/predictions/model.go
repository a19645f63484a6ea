// Package predictions proxies the prediction service's risk models.
package predictions

// NoShowRequest carries the features of the no-show model.
type NoShowRequest struct {
	Age             int     `json:"age"`
	Distance        float64 `json:"distance"`
	LeadTime        int     `json:"lead_time"`
	PreviousNoShows int     `json:"previous_no_shows"`
}

// NoShowResponse is the no-show model's verdict.
type NoShowResponse struct {
	NoShowProbability float64 `json:"noShowProbability"`
	RiskLevel         string  `json:"riskLevel"`
}
