// Package compute maintains the derived fields of a session through a static
// dependency table. Each update declares the fields it depends on and is run
// whenever one of them changes in a write cycle. Inverse rules for writable
// derived fields are applied explicitly by the caller before recomputation,
// and the forward update of a directly-written field is skipped for that
// cycle so a write never oscillates between a field and its inverse.
package compute

import (
	"github.com/openacademy/openacademy/internal/app/models"
)

// Field identifies a session field participating in recomputation.
type Field string

// Session fields tracked by the dependency table.
const (
	FieldStartDate Field = "start_date"
	FieldDuration  Field = "duration"
	FieldSeats     Field = "seats"
	FieldAttendees Field = "attendee_ids"
	FieldEndDate   Field = "end_date"
	FieldHours     Field = "hours"
)

// Update is a named recomputation with its declared dependencies.
type Update struct {
	Name      string
	DependsOn []Field
	Apply     func(*models.Session)
}

// Graph is an ordered registry of updates. Registration order is execution
// order; updates never feed each other's dependencies, so a single pass per
// write cycle is sufficient.
type Graph struct {
	updates []Update
}

// NewGraph creates an empty dependency graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Register adds an update to the graph.
func (g *Graph) Register(name string, dependsOn []Field, apply func(*models.Session)) {
	g.updates = append(g.updates, Update{
		Name:      name,
		DependsOn: dependsOn,
		Apply:     apply,
	})
}

// Recompute runs every registered update that depends on at least one of the
// changed fields, except updates named in skip. Skipping is how a write to a
// derived field suppresses the forward rule of its own compute/inverse pair.
func (g *Graph) Recompute(s *models.Session, changed []Field, skip ...string) {
	if len(changed) == 0 {
		return
	}

	changedSet := make(map[Field]bool, len(changed))
	for _, f := range changed {
		changedSet[f] = true
	}

	skipSet := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipSet[name] = true
	}

	for _, u := range g.updates {
		if skipSet[u.Name] {
			continue
		}
		for _, dep := range u.DependsOn {
			if changedSet[dep] {
				u.Apply(s)
				break
			}
		}
	}
}

// RecomputeAll runs every registered update unconditionally.
func (g *Graph) RecomputeAll(s *models.Session) {
	for _, u := range g.updates {
		u.Apply(s)
	}
}
