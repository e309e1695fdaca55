// Package scope computes the filter predicate applied before any list
// fetch, restricting results to what the actor is entitled to see. The
// policy table lives here and nowhere else; pages call ForResource instead
// of re-deriving role conditionals.
package scope

import (
	"github.com/meridian-edu/meridian-edu/internal/identity"
)

// ResourceType names a scoped record type.
type ResourceType string

const (
	ResourceAnnouncements ResourceType = "announcements"
	ResourceClasses       ResourceType = "classes"
	ResourceAttendance    ResourceType = "attendance"
	ResourceSalaries      ResourceType = "salaries"
	ResourceAdvances      ResourceType = "salary_advances"
	ResourcePayments      ResourceType = "payments"
	ResourceGallery       ResourceType = "gallery"
	ResourceWiFi          ResourceType = "wifi_networks"
	ResourceMaterials     ResourceType = "material_transactions"
)

// Operator is a clause comparison operator.
type Operator string

const (
	OpEq       Operator = "eq"
	OpIn       Operator = "in"
	OpIs       Operator = "is"
	OpContains Operator = "contains"
)

// Clause is a single {field, operator, value} constraint.
type Clause struct {
	Field string
	Op    Operator
	Value any
}

// Predicate is a declarative filter: All clauses are ANDed, and the Any
// group (when present) is ORed internally and ANDed with the rest.
type Predicate struct {
	All  []Clause
	Any  []Clause
	deny bool
}

// DenyAll is the predicate matching no rows.
var DenyAll = Predicate{deny: true}

// Unrestricted reports whether the predicate imposes no filter.
func (p Predicate) Unrestricted() bool {
	return !p.deny && len(p.All) == 0 && len(p.Any) == 0
}

// Denied reports whether the predicate matches no rows.
func (p Predicate) Denied() bool {
	return p.deny
}

// ForResource derives the scope predicate for an actor and resource type.
// It is pure: the same actor and resource type always yield the same
// predicate. With multiple roles the least restrictive applicable rule
// wins (union of permissions). Unknown resource types deny everything.
func ForResource(rt ResourceType, actor identity.Actor) Predicate {
	switch rt {
	case ResourceAnnouncements:
		return announcementsScope(actor)
	case ResourceClasses:
		return classesScope(actor)
	case ResourceAttendance:
		return attendanceScope(actor)
	case ResourceSalaries, ResourceAdvances:
		return payrollScope(actor)
	case ResourcePayments:
		return paymentsScope(actor)
	case ResourceGallery, ResourceWiFi, ResourceMaterials:
		// Admin-only pages: non-admins are denied the view entirely via
		// ViewAllowed; the predicate mirrors that for defence in depth.
		if actor.HasRole(identity.RoleAdmin) {
			return Predicate{}
		}
		return DenyAll
	}
	return DenyAll
}

// ViewAllowed reports whether the actor may open the view at all. A false
// result means 403, not an empty list.
func ViewAllowed(rt ResourceType, actor identity.Actor) bool {
	switch rt {
	case ResourceGallery, ResourceWiFi, ResourceMaterials:
		return actor.HasRole(identity.RoleAdmin)
	}
	return !ForResource(rt, actor).Denied()
}

func announcementsScope(actor identity.Actor) Predicate {
	if actor.HasAny(identity.RoleAdmin, identity.RoleSecretary, identity.RoleFinance, identity.RoleIT) {
		return Predicate{}
	}
	if actor.HasRole(identity.RoleTrainer) {
		return Predicate{Any: []Clause{
			{Field: "class_id", Op: OpIn, Value: actor.ClassIDs},
			{Field: "is_public", Op: OpIs, Value: true},
		}}
	}
	if actor.HasRole(identity.RoleStudent) {
		return Predicate{Any: []Clause{
			{Field: "is_public", Op: OpIs, Value: true},
			{Field: "target_roles", Op: OpContains, Value: string(identity.RoleStudent)},
		}}
	}
	return DenyAll
}

func classesScope(actor identity.Actor) Predicate {
	if actor.HasAny(identity.RoleAdmin, identity.RoleSecretary) {
		return Predicate{}
	}
	if actor.HasRole(identity.RoleTrainer) {
		return Predicate{All: []Clause{{Field: "trainer_id", Op: OpEq, Value: actor.ID}}}
	}
	if actor.HasRole(identity.RoleStudent) {
		return Predicate{All: []Clause{{Field: "id", Op: OpIn, Value: actor.ClassIDs}}}
	}
	return DenyAll
}

func attendanceScope(actor identity.Actor) Predicate {
	if actor.HasAny(identity.RoleAdmin, identity.RoleSecretary) {
		return Predicate{}
	}
	if actor.HasRole(identity.RoleTrainer) {
		return Predicate{All: []Clause{{Field: "trainer_id", Op: OpEq, Value: actor.ID}}}
	}
	if actor.HasRole(identity.RoleStudent) {
		return Predicate{All: []Clause{{Field: "student_id", Op: OpEq, Value: actor.StudentID}}}
	}
	return DenyAll
}

func payrollScope(actor identity.Actor) Predicate {
	if actor.HasRole(identity.RoleAdmin) {
		return Predicate{}
	}
	return Predicate{All: []Clause{{Field: "employee_id", Op: OpEq, Value: actor.ID}}}
}

func paymentsScope(actor identity.Actor) Predicate {
	if actor.HasAny(identity.RoleAdmin, identity.RoleSecretary, identity.RoleFinance) {
		return Predicate{}
	}
	if actor.HasRole(identity.RoleStudent) {
		return Predicate{All: []Clause{{Field: "student_id", Op: OpEq, Value: actor.StudentID}}}
	}
	return DenyAll
}
