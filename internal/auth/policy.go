package auth

import "strings"

// Combinator selects how a policy's required role set is evaluated.
type Combinator int

const (
	// Any requires at least one of the listed roles.
	Any Combinator = iota
	// All requires every listed role.
	All
)

// DefaultDenialMessage is used when a policy carries no custom message.
const DefaultDenialMessage = "access denied: insufficient privileges"

// Policy is a declarative role requirement attached to a guarded operation.
// It is pure data; evaluation lives in Satisfied.
type Policy struct {
	Roles      []Role
	Combinator Combinator
	Message    string
}

// RequireAny builds a policy satisfied by any one of the given roles.
func RequireAny(roles ...Role) Policy {
	return Policy{Roles: roles, Combinator: Any}
}

// RequireAll builds a policy satisfied only by all of the given roles.
func RequireAll(roles ...Role) Policy {
	return Policy{Roles: roles, Combinator: All}
}

// WithMessage attaches a custom denial message.
func (p Policy) WithMessage(msg string) Policy {
	p.Message = msg
	return p
}

// DenialMessage returns the configured denial message, or the default.
func (p Policy) DenialMessage() string {
	if strings.TrimSpace(p.Message) == "" {
		return DefaultDenialMessage
	}
	return p.Message
}

// Satisfied reports whether the caller's role set meets the requirement. An
// empty caller role set never satisfies a non-empty requirement.
func (p Policy) Satisfied(roles []Role) bool {
	if len(roles) == 0 {
		return len(p.Roles) == 0
	}
	held := make(map[Role]struct{}, len(roles))
	for _, role := range roles {
		held[role] = struct{}{}
	}
	if p.Combinator == All {
		for _, required := range p.Roles {
			if _, ok := held[required]; !ok {
				return false
			}
		}
		return true
	}
	for _, required := range p.Roles {
		if _, ok := held[required]; ok {
			return true
		}
	}
	return false
}

// Registry is the static attachment table mapping operation names to
// policies. An explicit per-operation policy wins over one attached to the
// operation's group ("employees.delete" falls back to "employees"). An
// operation registered in neither place is unguarded: this is an allow-list
// of guarded operations, not a deny-by-default perimeter.
type Registry struct {
	operations map[string]Policy
	groups     map[string]Policy
}

// NewRegistry returns an empty attachment table. Registration happens at
// startup; the table is read-only afterwards.
func NewRegistry() *Registry {
	return &Registry{
		operations: make(map[string]Policy),
		groups:     make(map[string]Policy),
	}
}

// Guard attaches a policy to a single operation.
func (r *Registry) Guard(operation string, p Policy) {
	r.operations[operation] = p
}

// GuardGroup attaches a policy to every operation in a group that has no
// explicit policy of its own.
func (r *Registry) GuardGroup(group string, p Policy) {
	r.groups[group] = p
}

// Lookup resolves the policy for an operation. ok is false for unguarded
// operations.
func (r *Registry) Lookup(operation string) (Policy, bool) {
	if p, ok := r.operations[operation]; ok {
		return p, true
	}
	group := operation
	if i := strings.IndexByte(operation, '.'); i >= 0 {
		group = operation[:i]
	}
	p, ok := r.groups[group]
	return p, ok
}
