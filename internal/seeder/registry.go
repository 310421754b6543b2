package seeder

import "sort"

// Factory builds a fresh unit for one run.
type Factory func(Deps) Unit

type registration struct {
	factory Factory
	schema  string
}

type Registry struct {
	entries map[string]registration
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// DefaultRegistry knows the converters for every built-in service.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("user-service", "", NewUsers)
	r.Register("product-service", "", NewProducts)
	r.Register("inventory-service", inventorySchema, NewInventory)
	r.Register("order-service", ordersSchema, NewOrders)
	r.Register("review-service", reviewsSchema, NewReviews)
	return r
}

// Register binds f to service. schema is the bootstrap DDL of a relational
// service, so it can be cleared before it has ever been seeded.
func (r *Registry) Register(service, schema string, f Factory) {
	r.entries[service] = registration{factory: f, schema: schema}
}

func (r *Registry) Lookup(service string) (Factory, bool) {
	e, ok := r.entries[service]
	return e.factory, ok
}

func (r *Registry) Schema(service string) string {
	return r.entries[service].schema
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
