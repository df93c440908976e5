package models

// AnalyseRequest is the body accepted by the submit endpoint.
// A nil Text is treated as empty input.
type AnalyseRequest struct {
	Text *string `json:"text"`
}

// AnalyseResponse is returned after a submission has been classified and stored.
type AnalyseResponse struct {
	ID             int64  `json:"id"`
	Counts         Counts `json:"counts"`
	TotalLines     int    `json:"total_lines"`
	MalformedLines int    `json:"malformed_lines"`
}

// NewAnalyseResponse builds the submit response for a stored analysis.
func NewAnalyseResponse(a *Analysis) AnalyseResponse {
	return AnalyseResponse{
		ID:             a.ID,
		Counts:         a.Counts,
		TotalLines:     a.TotalLines,
		MalformedLines: a.MalformedLines,
	}
}

// StatusResponse is the static payload of liveness probes.
type StatusResponse struct {
	Status string `json:"status"`
}

// MessageResponse carries a plain message.
type MessageResponse struct {
	Message string `json:"message"`
}
