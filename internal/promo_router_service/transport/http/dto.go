package http

// TestSendQuery holds the query parameters of GET /test-send.
type TestSendQuery struct {
	To string `validate:"required,numeric,min=6,max=20"`
}

// TestSendResponse mirrors the send outcome back to the operator.
type TestSendResponse struct {
	Code int    `json:"code"`
	Resp string `json:"resp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
