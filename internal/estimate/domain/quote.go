package domain

// Quote is a non-binding price range with its itemized breakdown.
type Quote struct {
	Min       int      `json:"min"`
	Max       int      `json:"max"`
	Breakdown []string `json:"breakdown"`
}

// SubmissionResult is the settled outcome of handing a lead to the intake endpoint.
type SubmissionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
