package billing

type Result string

const (
	ResultApplied     Result = "applied"
	ResultNoop        Result = "noop"
	ResultUserMissing Result = "user_missing"
	ResultRace        Result = "race"
	ResultConflict    Result = "conflict"
	ResultMissingData Result = "missing_data"
	ResultFault       Result = "fault"
)

// Outcome describes what Apply did. Every result other than ResultFault is
// acknowledged to the provider.
type Outcome struct {
	Action Action
	Result Result
	UserID string
}
