package recycle

import (
	"context"
	"fmt"

	"fastrecycle-hq/salvage/pkg/aggregate"
	"fastrecycle-hq/salvage/pkg/rules"
)

// Applier performs the removals and additions of one aggregation result.
type Applier struct {
	container Container
	resolver  rules.Resolver
}

// NewApplier creates an applier mutating container. Yield identifiers are
// resolved through resolver.
func NewApplier(container Container, resolver rules.Resolver) *Applier {
	return &Applier{container: container, resolver: resolver}
}

// Apply removes every consumed item kind, then adds every yield in identifier
// order. Everything is checked before the first mutation: a repeated consumed
// identity, a non-positive quantity or a yield that no longer resolves is an
// error and nothing is changed. Zero yields are skipped.
func (a *Applier) Apply(ctx context.Context, consumed []aggregate.Consumption, yields aggregate.YieldMap) error {
	seen := make(map[string]struct{}, len(consumed))
	for _, c := range consumed {
		if _, dup := seen[c.ItemID]; dup {
			return fmt.Errorf("item %q consumed twice", c.ItemID)
		}
		if c.Quantity <= 0 {
			return fmt.Errorf("item %q consumed with quantity %d", c.ItemID, c.Quantity)
		}
		seen[c.ItemID] = struct{}{}
	}

	type addition struct {
		handle   rules.Handle
		quantity int64
	}
	additions := make([]addition, 0, len(yields))
	for _, target := range yields.Targets() {
		n := yields[target]
		if n <= 0 {
			continue
		}
		h, ok := a.resolver.Resolve(target)
		if !ok || h == nil {
			return fmt.Errorf("output %q no longer resolves", target)
		}
		additions = append(additions, addition{handle: h, quantity: n})
	}

	for _, c := range consumed {
		if err := a.container.Remove(ctx, c.ItemID, c.Quantity); err != nil {
			return fmt.Errorf("remove %q: %w", c.ItemID, err)
		}
	}
	for _, add := range additions {
		if err := a.container.Add(ctx, add.handle, add.quantity); err != nil {
			return fmt.Errorf("add %q: %w", add.handle.EntityID(), err)
		}
	}
	return nil
}
