package crawl

// LinkStatus is the outcome of visiting one discovered link.
type LinkStatus string

const (
	// LinkScanned means the link answered 200 and its text was searched.
	LinkScanned LinkStatus = "scanned"
	// LinkSkipped means a response arrived with a status other than 200.
	LinkSkipped LinkStatus = "skipped"
	// LinkFailed means no response arrived (network error, timeout, robots refusal).
	LinkFailed LinkStatus = "failed"
)

// LinkResult records what happened to one secondary link.
type LinkResult struct {
	URL        string
	Status     LinkStatus
	StatusCode int
	// NewEmails counts addresses this page added to the set.
	NewEmails int
	Err       error
}

// Report is the result of crawling one business website.
type Report struct {
	Business string
	// URL is the normalized home page URL; empty when the business has no website.
	URL string
	// Emails are validated, unique, lower-cased addresses in first-seen order.
	Emails []string
	// Pages counts pages whose text was scanned.
	Pages int
	Links []LinkResult
	// Err is set when the home page could not be fetched. Secondary link failures never set it.
	Err error
}

// Found reports whether at least one address was collected.
func (r Report) Found() bool {
	return len(r.Emails) > 0
}

// FailedLinks counts links that produced no response.
func (r Report) FailedLinks() int {
	n := 0
	for _, l := range r.Links {
		if l.Status == LinkFailed {
			n++
		}
	}
	return n
}
