// internal/service/purchase/domain/state.go
package domain

// State models the purchase lifecycle. RESERVED means every line item holds
// stock and a settlement request is on the bus; the SETTLED states are
// terminal.
type State string

const (
	StateCreated        State = "CREATED"
	StateReserved       State = "RESERVED"
	StateRejected       State = "REJECTED"
	StateSettledSuccess State = "SETTLED_SUCCESS"
	StateSettledFailure State = "SETTLED_FAILURE"
)
