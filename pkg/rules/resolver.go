package rules

// Handle is a live reference to an entity the environment knows about.
type Handle interface {
	// EntityID returns the canonical identifier of the entity.
	EntityID() string

	// DisplayName returns a human-readable name, or "" when unknown.
	DisplayName() string
}

// Resolver maps an identifier to a live entity.
// Resolve must be deterministic for the duration of one Load call.
type Resolver interface {
	Resolve(id string) (Handle, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(id string) (Handle, bool)

// Resolve calls f(id).
func (f ResolverFunc) Resolve(id string) (Handle, bool) {
	return f(id)
}

// Entity is a plain Handle.
type Entity struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

// EntityID implements Handle.
func (e Entity) EntityID() string { return e.ID }

// DisplayName implements Handle.
func (e Entity) DisplayName() string { return e.Name }

// resolveCache memoizes lookups so every identifier resolves exactly once per load.
type resolveCache struct {
	resolver Resolver
	seen     map[string]resolved
}

type resolved struct {
	handle Handle
	ok     bool
}

func newResolveCache(r Resolver) *resolveCache {
	return &resolveCache{resolver: r, seen: make(map[string]resolved)}
}

func (c *resolveCache) resolve(id string) (Handle, bool) {
	if r, ok := c.seen[id]; ok {
		return r.handle, r.ok
	}
	h, ok := c.resolver.Resolve(id)
	if ok && h == nil {
		ok = false
	}
	c.seen[id] = resolved{handle: h, ok: ok}
	return h, ok
}
