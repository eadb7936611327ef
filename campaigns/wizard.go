package campaigns

// Step is a page of the create-campaign wizard
type Step int

const (
	StepPlatform Step = iota + 1
	StepDetails
)

// Wizard tracks where the user is in campaign creation
type Wizard struct {
	Step     Step
	Platform string
}

// NewWizard starts at platform selection
func NewWizard() Wizard {
	return Wizard{Step: StepPlatform}
}

// Select marks a platform on the first step
func (w Wizard) Select(platform string) Wizard {
	if w.Step == StepPlatform {
		w.Platform = platform
	}
	return w
}

// CanAdvance reports whether Next would move on from the current step
func (w Wizard) CanAdvance(c *Catalogue) bool {
	if w.Step != StepPlatform {
		return false
	}
	_, ok := c.Lookup(w.Platform)
	return ok
}

// Next moves from platform selection to the details form once a known
// platform is selected. On the details step the form is submitted instead.
func (w Wizard) Next(c *Catalogue) Wizard {
	if w.CanAdvance(c) {
		w.Step = StepDetails
	}
	return w
}

// Back returns to platform selection. exit is true on the first step, where
// back leaves the wizard for the campaign list.
func (w Wizard) Back() (prev Wizard, exit bool) {
	if w.Step == StepDetails {
		w.Step = StepPlatform
		return w, false
	}
	return w, true
}
