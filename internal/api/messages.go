// Package api is the wire contract between the gate server and the reader
// client: message types, the gRPC service descriptor and a client stub.
// Messages travel as JSON under the "json" gRPC content subtype.
package api

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type DescribeRequest struct {
	Category string `json:"category,omitempty"`
	Article  string `json:"article,omitempty"`
}

// DescribeResponse tells the client which resource governs a request and
// whether it is gated. Available is false when the server could not load
// the configuration needed to verify.
type DescribeResponse struct {
	Protected bool   `json:"protected"`
	Available bool   `json:"available"`
	Kind      string `json:"kind"`
	ID        string `json:"id"`
}

type VerifyRequest struct {
	Category string `json:"category,omitempty"`
	Article  string `json:"article,omitempty"`
	ClientID string `json:"client_id"`
	Secret   []byte `json:"secret"`
}

type VerifyResponse struct {
	Allowed     bool   `json:"allowed"`
	Reason      string `json:"reason,omitempty"`
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	UnlockToken string `json:"unlock_token,omitempty"`
}

type GetArticleRequest struct {
	Category string `json:"category,omitempty"`
	Article  string `json:"article"`
	ClientID string `json:"client_id,omitempty"`
}

type GetArticleResponse struct {
	Body []byte `json:"body"`
}
