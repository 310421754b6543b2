package seeder

import (
	"fmt"
	"sort"

	"github.com/xshopai/seeder/internal/config"
)

// DependencyGraph links each service to the services it reads identities
// from.
type DependencyGraph struct {
	deps map[string][]string
}

func NewDependencyGraph(services []config.Service) *DependencyGraph {
	g := &DependencyGraph{deps: make(map[string][]string, len(services))}
	for _, s := range services {
		g.deps[s.Name] = s.DependsOn
	}
	return g
}

// Order returns every service after all of its dependencies, or an error
// naming the first unknown dependency or cycle found.
func (g *DependencyGraph) Order() ([]string, error) {
	visited := make(map[string]bool)
	temp := make(map[string]bool)
	var order []string

	var visit func(string) error
	visit = func(name string) error {
		if temp[name] {
			return fmt.Errorf("circular dependency detected involving service: %s", name)
		}
		if visited[name] {
			return nil
		}

		deps, ok := g.deps[name]
		if !ok {
			return fmt.Errorf("unknown service in dependency graph: %s", name)
		}
		temp[name] = true
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		temp[name] = false
		visited[name] = true
		order = append(order, name)
		return nil
	}

	names := make([]string, 0, len(g.deps))
	for name := range g.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return order, nil
}
