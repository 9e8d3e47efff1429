package integration

// Outcome tells a caller how a fetch ended, so that "the page had no
// usable rows today" stays distinguishable from "the host was
// unreachable". Both degrade the reading to empty; neither is fatal.
type Outcome string

const (
	OutcomeOK     Outcome = "ok"     // at least one data point extracted
	OutcomeEmpty  Outcome = "empty"  // page fetched and parsed, zero usable rows
	OutcomeFailed Outcome = "failed" // transport or document-level failure
)
