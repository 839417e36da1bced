package mock

import (
	"net/url"

	"gitlab.com/visitkit/visitk"
	"gitlab.com/visitkit/visitor"
)

// SessionDelegate records what a session tells the host
type SessionDelegate struct {
	Proposed  []string
	Failures  []error
	Requests  []string
	Finished  []*visitor.Visit
	ProposeFn func(location *url.URL, action visitk.Action)
}

func (d *SessionDelegate) DidProposeVisit(location *url.URL, action visitk.Action) {
	d.Proposed = append(d.Proposed, location.String())
	if d.ProposeFn != nil {
		d.ProposeFn(location, action)
	}
}

func (d *SessionDelegate) DidStartRequest(location *url.URL) {
	d.Requests = append(d.Requests, "start "+location.String())
}

func (d *SessionDelegate) DidFinishRequest(location *url.URL) {
	d.Requests = append(d.Requests, "finish "+location.String())
}

func (d *SessionDelegate) DidFailRequest(location *url.URL, err error) {
	d.Failures = append(d.Failures, err)
}

func (d *SessionDelegate) DidFinishVisit(v *visitor.Visit) {
	d.Finished = append(d.Finished, v)
}
