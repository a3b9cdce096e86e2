package entry

// Scope is the blast radius of an edit or delete request: a single occurrence,
// this-and-future occurrences, or the whole series.
type Scope string

const (
	ScopeOccurrence Scope = "occurrence"
	ScopeFuture     Scope = "future"
	ScopeEntire     Scope = "entire"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeOccurrence, ScopeFuture, ScopeEntire:
		return Scope(s), nil
	}
	return "", ValidationError{Field: "scope", Reason: "must be one of occurrence, future, entire"}
}

// RequiresDate reports whether a target date is mandatory for this scope.
func (s Scope) RequiresDate() bool {
	return s == ScopeOccurrence || s == ScopeFuture
}
