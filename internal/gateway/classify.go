package gateway

import (
	"strings"
	"sync/atomic"
)

// DefaultDegradeTokens are matched against remote error text when no
// tokens are configured.
var DefaultDegradeTokens = []string{"quota", "billing"}

// FailureKind tells a quota/billing failure apart from any other.
type FailureKind int

const (
	// KindOther is surfaced to the caller as a Failure.
	KindOther FailureKind = iota

	// KindQuotaOrBilling switches the gateway to demo mode.
	KindQuotaOrBilling
)

// String returns the string representation of the kind
func (k FailureKind) String() string {
	switch k {
	case KindQuotaOrBilling:
		return "quota_or_billing"
	default:
		return "other"
	}
}

// CapabilityError is a classified remote capability failure.
type CapabilityError struct {
	Kind  FailureKind
	Token string // matched token, empty for KindOther
	Err   error
}

// Error implements the error interface
func (e *CapabilityError) Error() string {
	if e.Err == nil {
		return "remote capability failure"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error
func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// Classifier sniffs remote error text for degrade tokens. Matching is a
// case-sensitive substring search. Tokens can be swapped at runtime.
type Classifier struct {
	tokens atomic.Pointer[[]string]
}

// NewClassifier creates a classifier for the given tokens, falling back to
// DefaultDegradeTokens when none are usable.
func NewClassifier(tokens ...string) *Classifier {
	c := &Classifier{}
	c.SetTokens(tokens)
	return c
}

// SetTokens replaces the token set. Empty strings are dropped since they
// would match every error.
func (c *Classifier) SetTokens(tokens []string) {
	clean := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		clean = append(clean, DefaultDegradeTokens...)
	}
	c.tokens.Store(&clean)
}

// Tokens returns a copy of the active token set.
func (c *Classifier) Tokens() []string {
	return append([]string(nil), *c.tokens.Load()...)
}

// Classify wraps err into a CapabilityError. A nil err returns nil.
func (c *Classifier) Classify(err error) *CapabilityError {
	if err == nil {
		return nil
	}
	desc := err.Error()
	for _, token := range *c.tokens.Load() {
		if strings.Contains(desc, token) {
			return &CapabilityError{Kind: KindQuotaOrBilling, Token: token, Err: err}
		}
	}
	return &CapabilityError{Kind: KindOther, Err: err}
}
