package order

import "fmt"

// Status is an order lifecycle state. The values are the wire-level status
// codes the storefront has always exposed.
type Status string

const (
	// StatusCreated: checkout completed, stock reserved, awaiting back-office
	// validation.
	StatusCreated Status = "CREE"
	// StatusValidated: approved by an administrator, payable by the owner.
	StatusValidated Status = "VALIDEE"
	// StatusPaid: charged and invoiced.
	StatusPaid Status = "PAYEE"
	// StatusShipped: handed to a carrier, delivery record created.
	StatusShipped Status = "EXPEDIEE"
	// StatusDelivered: received by the shopper. Terminal.
	StatusDelivered Status = "LIVREE"
	// StatusCancelled: cancelled before payment, stock released. Terminal.
	StatusCancelled Status = "ANNULEE"
	// StatusRefunded: refunded after payment, stock released. Terminal.
	StatusRefunded Status = "REMBOURSEE"
)

// transitions holds the complete one-way state graph. Anything not listed
// here is rejected.
var transitions = map[Status][]Status{
	StatusCreated:   {StatusValidated, StatusCancelled},
	StatusValidated: {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusShipped, StatusRefunded},
	StatusShipped:   {StatusDelivered, StatusRefunded},
	StatusDelivered: {StatusRefunded},
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
// LIVREE still permits refund and is therefore not terminal here.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// InvalidTransitionError reports a lifecycle operation that is not legal
// from the order's current state. The order is left unchanged.
type InvalidTransitionError struct {
	From      Status
	Attempted Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: order is %s, cannot move to %s", e.From, e.Attempted)
}
