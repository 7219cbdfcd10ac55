// Package tier tracks the subscription plan ceiling and detects when usage
// outgrows the configured plan.
package tier

import (
	"github.com/j-veylop/claude-quota-tui/internal/models"
	"github.com/j-veylop/claude-quota-tui/internal/services/session"
)

// Controller owns tier state for a run. A static plan keeps its named
// ceiling until an active block exceeds it, at which point the controller
// switches to auto-detection permanently. Auto-detected ceilings only grow.
//
// The controller is not safe for concurrent use. The tick loop is its single
// writer; everything else sees tier state through report snapshots.
type Controller struct {
	tier models.QuotaTier
}

// New returns a controller for the configured plan. PlanAuto starts with a
// zero ceiling and learns it from observed blocks.
func New(plan models.Plan) *Controller {
	if plan == models.PlanAuto {
		return &Controller{tier: models.QuotaTier{Plan: plan, AutoDetected: true}}
	}
	return &Controller{tier: models.QuotaTier{Plan: plan, Ceiling: plan.Ceiling()}}
}

// Tier returns the current tier without observing new data.
func (c *Controller) Tier() models.QuotaTier {
	return c.tier
}

// Observe folds one snapshot into the tier state and reports whether this
// call switched a static plan to auto-detection. The switch is reported on
// exactly one call; ceiling growth after it stays silent.
func (c *Controller) Observe(active *models.UsageBlock, all []models.UsageBlock) (models.QuotaTier, bool) {
	maxSeen := session.MaxUnits(all)

	if !c.tier.AutoDetected {
		if active == nil || active.IsGap || active.TotalUnits <= c.tier.Ceiling {
			return c.tier, false
		}
		ceiling := c.tier.Ceiling
		if maxSeen > ceiling {
			ceiling = maxSeen
		}
		c.tier = models.QuotaTier{Plan: c.tier.Plan, Ceiling: ceiling, AutoDetected: true}
		return c.tier, true
	}

	if maxSeen > c.tier.Ceiling {
		c.tier.Ceiling = maxSeen
	}
	return c.tier, false
}
