// Package workflow holds the allowed status edges for reviewable records. The backend is the
// final authority; these tables let the gateway reject obviously illegal requests early.
package workflow

import (
	"fmt"
	"sort"
	"strings"

	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

// Machine is an allowed-edge table over upper-case status names.
type Machine struct {
	name    string
	initial string
	edges   map[string][]string
}

// NewMachine builds a machine. States without outgoing edges are terminal.
func NewMachine(name, initial string, edges map[string][]string) Machine {
	normalised := make(map[string][]string, len(edges))
	for from, targets := range edges {
		list := make([]string, 0, len(targets))
		for _, to := range targets {
			list = append(list, Normalize(to))
		}
		normalised[Normalize(from)] = list
	}
	return Machine{name: name, initial: Normalize(initial), edges: normalised}
}

// Leave: PENDING → APPROVED | REJECTED.
var Leave = NewMachine("leave", "PENDING", map[string][]string{
	"PENDING": {"APPROVED", "REJECTED"},
})

// Complaint: ACTIVE → RESOLVED | CLOSED.
var Complaint = NewMachine("complaint", "ACTIVE", map[string][]string{
	"ACTIVE": {"RESOLVED", "CLOSED"},
})

// Normalize upper-cases and trims a status.
func Normalize(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}

// Initial returns the state new records start in.
func (m Machine) Initial() string { return m.initial }

// States lists every known state, sorted.
func (m Machine) States() []string {
	seen := map[string]struct{}{m.initial: {}}
	for from, targets := range m.edges {
		seen[from] = struct{}{}
		for _, to := range targets {
			seen[to] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Known reports whether status names a state of this machine.
func (m Machine) Known(status string) bool {
	status = Normalize(status)
	for _, s := range m.States() {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether to is reachable from from in one step.
func (m Machine) CanTransition(from, to string) bool {
	for _, target := range m.edges[Normalize(from)] {
		if target == Normalize(to) {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status has no outgoing edges.
func (m Machine) IsTerminal(status string) bool {
	return len(m.edges[Normalize(status)]) == 0
}

// Validate checks a requested move. An unknown target is a validation error; a legal target
// from the wrong state, including any move out of a terminal state, is a conflict. When the
// current state is unknown the move is allowed and left to the backend.
func (m Machine) Validate(from, to string) error {
	if !m.Known(to) || Normalize(to) == m.initial {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s status %q", m.name, to))
	}
	if !m.Known(from) || m.CanTransition(from, to) {
		return nil
	}
	if m.IsTerminal(from) {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s already %s", m.name, strings.ToLower(Normalize(from))))
	}
	return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s cannot move from %s to %s", m.name, Normalize(from), Normalize(to)))
}
