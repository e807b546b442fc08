package rtc

// Envelope types exchanged with the room server. Text frames carry one JSON
// envelope; binary frames carry raw audio and have no envelope.
const (
	msgWelcome     = "welcome"
	msgJoin        = "join"
	msgLeave       = "leave"
	msgRPCRequest  = "rpc_request"
	msgRPCResponse = "rpc_response"
)

// envelope is the wire shape of every text frame. Fields are populated per
// Type: welcome carries Identities (the current roster), join/leave carry
// Identity, rpc_request carries ID/From/To/Method/Payload, and rpc_response
// carries ID plus either Payload or Error.
type envelope struct {
	Type       string   `json:"type"`
	Identity   string   `json:"identity,omitempty"`
	Identities []string `json:"identities,omitempty"`
	ID         string   `json:"id,omitempty"`
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Method     string   `json:"method,omitempty"`
	Payload    string   `json:"payload,omitempty"`
	Error      string   `json:"error,omitempty"`
}
