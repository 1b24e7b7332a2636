package gateway

// Request is a single synthesis request. Voice is passed through verbatim;
// validating it against the known voice set is the caller's job.
type Request struct {
	Text  string
	Voice string
}

// Result is the outcome of Gateway.Synthesize. It is always one of
// Success, SimulatedSuccess or Failure:
//
//	switch r := res.(type) {
//	case gateway.Success:
//	case gateway.SimulatedSuccess:
//	case gateway.Failure:
//	}
type Result interface {
	isResult()
}

// Success carries the audio exactly as the remote capability returned it.
type Success struct {
	Audio    []byte
	MIMEType string
}

// SimulatedSuccess stands in for real audio while the gateway is degraded.
// It never carries audio bytes.
type SimulatedSuccess struct {
	OriginalText     string
	Voice            string
	TruncatedPreview string
	Notice           string
	MIMEType         string // always SimulatedMIMEType
}

// Failure is a remote error that did not trigger demo mode.
type Failure struct {
	Message string
	Err     error
}

func (Success) isResult()          {}
func (SimulatedSuccess) isResult() {}
func (Failure) isResult()          {}

// Error implements the error interface so a Failure can be returned where
// an error is expected.
func (f Failure) Error() string {
	return f.Message
}

// Unwrap returns the underlying remote error.
func (f Failure) Unwrap() error {
	return f.Err
}
