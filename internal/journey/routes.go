package journey

// StepURLs names the destinations a successful step submission can route to.
type StepURLs struct {
	// Next is the fixed next step in the journey's linear sequence.
	Next string

	// CheckAnswers is the journey's review page.
	CheckAnswers string

	// Dependent is the step that collects a field invalidated by this step's
	// change. Empty when the step has no downstream dependents.
	Dependent string
}

// NextURL is the check-answers routing rule. Outside checking-answers mode
// the journey is strictly linear. In checking-answers mode a no-op edit goes
// straight back to the review page; a real change goes there too unless it
// invalidated a dependent field, in which case the dependent step comes
// first and its own submission re-runs this rule.
func NextURL(isCheckingAnswers, changed, hasDependent bool, urls StepURLs) string {
	if !isCheckingAnswers {
		return urls.Next
	}
	if !changed {
		return urls.CheckAnswers
	}
	if hasDependent && urls.Dependent != "" {
		return urls.Dependent
	}
	return urls.CheckAnswers
}
