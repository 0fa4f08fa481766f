package ingestdto

type Outcome string

const (
	OutcomeOrderCreated Outcome = "ORDER_CREATED"
	OutcomeDuplicate    Outcome = "DUPLICATE"
	OutcomeIgnored      Outcome = "IGNORED"
	OutcomeRejected     Outcome = "REJECTED"
)

// Result reports what a provider event delivery did. A Duplicate is a
// success-no-op: the provider retried an event that was already
// ingested.
type Result struct {
	Outcome     Outcome
	OrderID     string
	OrderNumber string
}
