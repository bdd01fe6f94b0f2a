package access

type Reason string

const (
	ReasonNone            Reason = ""
	ReasonNeverSubscribed Reason = "never_subscribed"
	ReasonLapsed          Reason = "lapsed"
)

// Decision is the gate's answer for one request. Reason is for UI
// messaging only and is empty when Allowed.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  Reason `json:"reason,omitempty"`
}
