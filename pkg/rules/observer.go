package rules

// Observer receives loader events. Implementations must not retain the
// document, which belongs to the caller.
type Observer interface {
	// DocumentLoaded is called for every document, before filtering.
	DocumentLoaded(doc *RuleDocument)

	// ReferenceDropped is called for every rule or exclusion that did not resolve.
	ReferenceDropped(ref DroppedReference)

	// RuleSetBuilt is called once with the merged result.
	RuleSetBuilt(rs *RuleSet)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) DocumentLoaded(*RuleDocument) {}
func (NopObserver) ReferenceDropped(DroppedReference) {}
func (NopObserver) RuleSetBuilt(*RuleSet) {}

// MultiObserver fans events out to several observers in order.
type MultiObserver []Observer

func (m MultiObserver) DocumentLoaded(doc *RuleDocument) {
	for _, o := range m {
		o.DocumentLoaded(doc)
	}
}

func (m MultiObserver) ReferenceDropped(ref DroppedReference) {
	for _, o := range m {
		o.ReferenceDropped(ref)
	}
}

func (m MultiObserver) RuleSetBuilt(rs *RuleSet) {
	for _, o := range m {
		o.RuleSetBuilt(rs)
	}
}
