package pipeline

// Well-known context keys written by the executor after each successful
// step. Later steps that omit a commitment or recipient pick these up.
const (
	// KeyTotalFee accumulates the settlement fees of successful steps.
	KeyTotalFee = "total_fee"

	// KeyLastCommitment is the commitment of the most recent step that
	// produced one (typically a deposit).
	KeyLastCommitment = "last_commitment"

	// KeyLastSignature is the signature of the most recent step that
	// produced one (typically a transfer).
	KeyLastSignature = "last_signature"

	// KeyRecipient, when seeded by the caller, fills a transfer or
	// withdraw step whose own recipient is empty.
	KeyRecipient = "recipient"
)

// Context is the mutable key/value carryover threaded between the steps
// of exactly one execution. Last write wins.
//
// Ownership: a Context belongs to a single in-flight execution and is
// never shared across concurrent runs. Execute builds a fresh Context
// per call, seeding it from the builder's initial values, so two runs
// of the same pipeline can never observe each other's state.
type Context struct {
	values map[string]any
}

// newContext creates a Context seeded with a copy of initial.
func newContext(initial map[string]any) *Context {
	values := make(map[string]any, len(initial)+4)
	for k, v := range initial {
		values[k] = v
	}
	return &Context{values: values}
}

// Get returns the value for key and whether it is present.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString returns the value for key when it is a non-empty string.
func (c *Context) GetString(key string) (string, bool) {
	v, ok := c.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Set stores value under key, replacing any previous value.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// AddFee folds fee into the running total under KeyTotalFee.
func (c *Context) AddFee(fee float64) {
	total, _ := c.values[KeyTotalFee].(float64)
	c.values[KeyTotalFee] = total + fee
}

// TotalFee returns the accumulated fee over successful steps.
func (c *Context) TotalFee() float64 {
	total, _ := c.values[KeyTotalFee].(float64)
	return total
}

// Snapshot returns a shallow copy of the current values. Custom steps
// receive snapshots so a closure cannot mutate execution state.
func (c *Context) Snapshot() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
