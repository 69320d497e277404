package model

// Capability tags recognised by the step registry. The actor identity and
// its tag set come from an external authentication collaborator; the core
// only asks "does actor hold tag T".
const (
	CapStartOnboarding    = "can_start_onboarding"
	CapApproveOnboarding  = "can_approve_onboarding"
	CapCompleteOnboarding = "can_complete_onboarding"
	CapCancelOnboarding   = "can_cancel_onboarding"
)

// Actor is the caller of a transition.
type Actor struct {
	ID           string   `json:"id"`
	Capabilities []string `json:"capabilities,omitempty"`

	// system marks the internal actor used for engine auto-chaining and
	// validated callback resumption; it passes every capability check.
	system bool
}

// System is the internal actor used when the engine chains steps or when the
// callback resolver resumes a suspended step after correlation validation.
var System = Actor{ID: "system", system: true}

// HasCapability reports whether the actor holds the given tag.
func (a Actor) HasCapability(tag string) bool {
	if a.system {
		return true
	}
	for _, c := range a.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}
