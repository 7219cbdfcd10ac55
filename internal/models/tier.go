// Package models defines data structures and domain types.
package models

import "fmt"

// Plan identifies a quota plan from the closed set the monitor understands.
type Plan int

const (
	// PlanPro is the base subscription plan.
	PlanPro Plan = iota
	// PlanMax5 is the 5x subscription plan.
	PlanMax5
	// PlanMax20 is the 20x subscription plan.
	PlanMax20
	// PlanAuto asks the tier controller to detect the ceiling from history.
	PlanAuto
)

// Unit ceilings for the named plans, per session block.
const (
	CeilingPro   = 7000
	CeilingMax5  = 35000
	CeilingMax20 = 140000
)

// String returns the configuration name of the plan.
func (p Plan) String() string {
	switch p {
	case PlanPro:
		return "pro"
	case PlanMax5:
		return "max5"
	case PlanMax20:
		return "max20"
	case PlanAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// Ceiling returns the static unit ceiling for a named plan, or 0 for PlanAuto.
func (p Plan) Ceiling() int {
	switch p {
	case PlanPro:
		return CeilingPro
	case PlanMax5:
		return CeilingMax5
	case PlanMax20:
		return CeilingMax20
	default:
		return 0
	}
}

// ParsePlan maps a configuration value onto a Plan. "custom_max" is an
// accepted alias for auto.
func ParsePlan(s string) (Plan, error) {
	switch s {
	case "pro", "":
		return PlanPro, nil
	case "max5":
		return PlanMax5, nil
	case "max20":
		return PlanMax20, nil
	case "auto", "custom_max":
		return PlanAuto, nil
	default:
		return PlanPro, fmt.Errorf("unknown plan %q (want pro, max5, max20 or auto)", s)
	}
}

// NearestNamedPlan returns the named plan whose ceiling an auto-detected
// ceiling most resembles, for display only.
func NearestNamedPlan(ceiling int) Plan {
	switch {
	case ceiling > CeilingMax5:
		return PlanMax20
	case ceiling > CeilingPro:
		return PlanMax5
	default:
		return PlanPro
	}
}

// QuotaTier is the effective quota ceiling for the active session. Owned by
// the tier controller; once auto-detection raises the ceiling it never
// lowers within a process lifetime.
type QuotaTier struct {
	Plan         Plan
	Ceiling      int
	AutoDetected bool
}

// Name returns the display name for the tier.
func (t QuotaTier) Name() string {
	if t.AutoDetected {
		return fmt.Sprintf("auto (~%s)", NearestNamedPlan(t.Ceiling))
	}
	return t.Plan.String()
}
