package runtime

// ScopeChecker decides whether an identity may address a capability at all.
// The host's identity layer implements it; the runtime only consults it.
type ScopeChecker interface {
	// CheckScope returns whether the identity may call the capability and,
	// when denied, a reason
	CheckScope(identity, fullName string) (bool, string)
}

// PolicyDecision is the outcome of a policy evaluation
type PolicyDecision struct {
	Allowed       bool
	Reason        string
	MatchedRules  []string
	RiskTier      string
	RequiresAudit bool
}

// PolicyEngine evaluates one concrete invocation against the host's rules
type PolicyEngine interface {
	Evaluate(fullName string, params map[string]any, context map[string]any) PolicyDecision
}

// ExecContext carries the caller-side facts the gates consult
type ExecContext struct {
	// Identity of the caller, checked against scopes
	Identity string

	// Confirmed marks a request replayed after the caller approved a
	// confirmation-required capability
	Confirmed bool

	// Policy context passed through to the policy engine
	Policy map[string]any
}
