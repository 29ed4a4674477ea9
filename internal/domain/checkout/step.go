// internal/domain/checkout/step.go
package checkout

import "fmt"

// Step is a checkout stage. Placing the order is an action, not a step.
type Step string

const (
	StepContact  Step = "contact"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
)

var stepOrder = map[Step]int{
	StepContact:  0,
	StepShipping: 1,
	StepPayment:  2,
}

// transitions lists every allowed move. Forward moves advance one step;
// backward moves may return to any earlier step.
var transitions = map[Step][]Step{
	StepContact:  {StepShipping},
	StepShipping: {StepPayment, StepContact},
	StepPayment:  {StepContact, StepShipping},
}

// ParseStep validates a step name
func ParseStep(s string) (Step, error) {
	step := Step(s)
	if _, ok := stepOrder[step]; !ok {
		return "", fmt.Errorf("unknown checkout step %q", s)
	}
	return step, nil
}

// CanTransitionTo reports whether from -> to is allowed
func CanTransitionTo(from, to Step) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Before reports whether s comes earlier in the checkout than other
func (s Step) Before(other Step) bool {
	return stepOrder[s] < stepOrder[other]
}

func (s Step) String() string {
	return string(s)
}
