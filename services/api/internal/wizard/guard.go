package wizard

// NavigationGuardDecision tells the caller whether leaving needs an
// explicit confirmation, and where to go instead when RedirectPath is set.
type NavigationGuardDecision struct {
	ShouldBlock  bool   `json:"shouldBlock"`
	RedirectPath string `json:"redirectPath,omitempty"`
}

type leaveInput struct {
	mode     Mode
	offerID  string
	closed   bool
	dirty    bool
	nextPath string
}

func decideLeave(in leaveInput) NavigationGuardDecision {
	if in.closed {
		return NavigationGuardDecision{}
	}
	if loc, ok := ParseStepPath(in.nextPath); ok {
		// The offer-less creation URL of a saved draft points back at the
		// draft itself.
		if loc.OfferID == "" && in.offerID != "" && !in.mode.IsEdition() {
			return NavigationGuardDecision{RedirectPath: StepPath(in.offerID, in.mode, loc.Step)}
		}
		if loc.OfferID == in.offerID {
			return NavigationGuardDecision{}
		}
	}
	return NavigationGuardDecision{ShouldBlock: in.dirty}
}
