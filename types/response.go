package types

type DataResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

// ProcessingStatus is streamed over the websocket while a lead moves
// through the pipeline.
type ProcessingStatus struct {
	LeadID     string     `json:"lead_id"`
	Stage      string     `json:"stage"` // classifying, generating, done, failed
	Intent     LeadIntent `json:"intent,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	MessageID  string     `json:"message_id,omitempty"`
	Error      string     `json:"error,omitempty"`
}
