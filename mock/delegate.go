package mock

import (
	"gitlab.com/visitkit/visitor"
)

// Delegate records every notification it receives in Events, in order
type Delegate struct {
	Events []string
	Errors []error

	VisitDidInitializeWebViewFn     func(v *visitor.Visit)
	VisitDidInitializeWebViewCalled bool

	VisitWillStartFn     func(v *visitor.Visit)
	VisitWillStartCalled bool

	VisitDidStartFn     func(v *visitor.Visit)
	VisitDidStartCalled bool

	VisitDidCompleteFn     func(v *visitor.Visit)
	VisitDidCompleteCalled bool

	VisitDidFailFn     func(v *visitor.Visit)
	VisitDidFailCalled bool

	VisitWillLoadResponseFn     func(v *visitor.Visit)
	VisitWillLoadResponseCalled bool

	VisitDidRenderFn     func(v *visitor.Visit)
	VisitDidRenderCalled bool

	VisitRequestDidStartFn     func(v *visitor.Visit)
	VisitRequestDidStartCalled bool

	VisitRequestDidFailWithErrorFn     func(v *visitor.Visit, err error)
	VisitRequestDidFailWithErrorCalled bool

	VisitRequestDidFinishFn     func(v *visitor.Visit)
	VisitRequestDidFinishCalled bool
}

// Count how many times event was delivered
func (d *Delegate) Count(event string) int {
	n := 0
	for _, e := range d.Events {
		if e == event {
			n++
		}
	}
	return n
}

// Index of the first delivery of event, -1 if never delivered
func (d *Delegate) Index(event string) int {
	for i, e := range d.Events {
		if e == event {
			return i
		}
	}
	return -1
}

func (d *Delegate) VisitDidInitializeWebView(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitDidInitializeWebView")
	d.VisitDidInitializeWebViewCalled = true
	if d.VisitDidInitializeWebViewFn != nil {
		d.VisitDidInitializeWebViewFn(v)
	}
}

func (d *Delegate) VisitWillStart(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitWillStart")
	d.VisitWillStartCalled = true
	if d.VisitWillStartFn != nil {
		d.VisitWillStartFn(v)
	}
}

func (d *Delegate) VisitDidStart(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitDidStart")
	d.VisitDidStartCalled = true
	if d.VisitDidStartFn != nil {
		d.VisitDidStartFn(v)
	}
}

func (d *Delegate) VisitDidComplete(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitDidComplete")
	d.VisitDidCompleteCalled = true
	if d.VisitDidCompleteFn != nil {
		d.VisitDidCompleteFn(v)
	}
}

func (d *Delegate) VisitDidFail(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitDidFail")
	d.VisitDidFailCalled = true
	if d.VisitDidFailFn != nil {
		d.VisitDidFailFn(v)
	}
}

func (d *Delegate) VisitWillLoadResponse(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitWillLoadResponse")
	d.VisitWillLoadResponseCalled = true
	if d.VisitWillLoadResponseFn != nil {
		d.VisitWillLoadResponseFn(v)
	}
}

func (d *Delegate) VisitDidRender(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitDidRender")
	d.VisitDidRenderCalled = true
	if d.VisitDidRenderFn != nil {
		d.VisitDidRenderFn(v)
	}
}

func (d *Delegate) VisitRequestDidStart(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitRequestDidStart")
	d.VisitRequestDidStartCalled = true
	if d.VisitRequestDidStartFn != nil {
		d.VisitRequestDidStartFn(v)
	}
}

func (d *Delegate) VisitRequestDidFailWithError(v *visitor.Visit, err error) {
	d.Events = append(d.Events, "VisitRequestDidFailWithError")
	d.Errors = append(d.Errors, err)
	d.VisitRequestDidFailWithErrorCalled = true
	if d.VisitRequestDidFailWithErrorFn != nil {
		d.VisitRequestDidFailWithErrorFn(v, err)
	}
}

func (d *Delegate) VisitRequestDidFinish(v *visitor.Visit) {
	d.Events = append(d.Events, "VisitRequestDidFinish")
	d.VisitRequestDidFinishCalled = true
	if d.VisitRequestDidFinishFn != nil {
		d.VisitRequestDidFinishFn(v)
	}
}
