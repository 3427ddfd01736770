package credits

// Built-in plans.
var (
	PlanSignup  = Plan{Name: "signup", Credits: 100, ValidityDays: 30}
	PlanPremium = Plan{Name: "premium", Credits: 100, ValidityDays: 365}
	PlanPack250 = Plan{Name: "pack250", Credits: 250, ValidityDays: 365}
)

var plans = map[string]Plan{
	PlanSignup.Name:  PlanSignup,
	PlanPremium.Name: PlanPremium,
	PlanPack250.Name: PlanPack250,
}

// LookupPlan returns the plan registered under name.
func LookupPlan(name string) (Plan, error) {
	p, ok := plans[name]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}
