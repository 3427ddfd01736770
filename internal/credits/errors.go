package credits

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientCredit = errors.New("insufficient credit")
	ErrInvalidAmount      = errors.New("invalid credit amount")
	ErrUnknownPlan        = errors.New("unknown plan")
)

// InsufficientCreditError carries the numbers shown to the caller on rejection.
type InsufficientCreditError struct {
	Available int
	Required  int
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("Not enough credits. Available: %d, Required: %d", e.Available, e.Required)
}

// Is lets errors.Is(err, ErrInsufficientCredit) match.
func (e *InsufficientCreditError) Is(target error) bool {
	return target == ErrInsufficientCredit
}
