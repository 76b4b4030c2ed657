package model

// Locator is a symbolic reference to one or more UI elements. It is resolved
// by the externally maintained locator table and opaque to the protocol.
type Locator string

func (l Locator) String() string { return string(l) }

// StepResult classifies the result of one protocol step.
type StepResult string

const (
	// StepResultSuccess indicates the step completed.
	StepResultSuccess StepResult = "success"
	// StepResultRecoverable indicates the step failed but the failure is
	// contained to the current item, the batch may continue.
	StepResultRecoverable StepResult = "recoverable"
	// StepResultFatal indicates the page state is no longer trustworthy and
	// the batch must stop.
	StepResultFatal StepResult = "fatal"
)

// StepOutcome is the transient result of one protocol step. It is not
// persisted, it only drives the executor's continue/abort decision.
type StepOutcome struct {
	Result StepResult
	Reason string
	Cause  error
}

// StepSuccess returns a successful step outcome.
func StepSuccess() StepOutcome {
	return StepOutcome{Result: StepResultSuccess}
}

// StepRecoverable returns a recoverable step outcome.
func StepRecoverable(reason string, cause error) StepOutcome {
	return StepOutcome{Result: StepResultRecoverable, Reason: reason, Cause: cause}
}

// StepFatal returns a fatal step outcome.
func StepFatal(reason string, cause error) StepOutcome {
	return StepOutcome{Result: StepResultFatal, Reason: reason, Cause: cause}
}

// Success returns true when the step completed.
func (o StepOutcome) Success() bool { return o.Result == StepResultSuccess }

// Fatal returns true when the step outcome aborts the batch.
func (o StepOutcome) Fatal() bool { return o.Result == StepResultFatal }

// Message returns the human readable failure message of the outcome.
func (o StepOutcome) Message() string {
	if o.Success() {
		return ""
	}
	if o.Cause != nil {
		return o.Reason + ": " + o.Cause.Error()
	}
	return o.Reason
}
