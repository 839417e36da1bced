package visitor_test

import (
	"context"
	"testing"

	"gitlab.com/visitkit/visitk"
	"gitlab.com/visitkit/visitor"
)

func TestVisitTransitionsAreIdempotent(t *testing.T) {
	v, _, delegate := makeScript(t, "http://example.com/", "")
	if v.State() != visitk.VisitInitialized {
		t.Fatalf("expected initialized got %s\n", v.State())
	}

	// cancel before start does nothing
	v.Cancel()
	if v.State() != visitk.VisitInitialized {
		t.Fatalf("cancel before start should be a no-op, got %s\n", v.State())
	}

	v.Start()
	v.Start()
	if delegate.Count("VisitWillStart") != 1 {
		t.Fatalf("expected one will start: %v\n", delegate.Events)
	}

	v.Cancel()
	v.Start()
	v.Cancel()
	if v.State() != visitk.VisitCanceled {
		t.Fatalf("expected canceled got %s\n", v.State())
	}
	if delegate.Count("VisitWillStart") != 1 {
		t.Fatalf("start after cancel should be a no-op: %v\n", delegate.Events)
	}
}

func TestVisitTerminalOutcomesAreExclusive(t *testing.T) {
	v, webView, delegate := makeScript(t, "http://example.com/", "")
	v.Start()
	observer := webView.VisitObserver
	observer.DidStartVisit("v1", false)
	observer.DidStartRequest("v1")
	observer.DidFailRequest("v1", 503)
	observer.DidCompleteVisit("v1", "r1")
	v.Cancel()

	if v.State() != visitk.VisitFailed {
		t.Fatalf("expected failed got %s\n", v.State())
	}
	if delegate.VisitDidCompleteCalled || webView.CancelVisitCalled {
		t.Fatalf("failed visit must not complete or cancel: %v %v\n", delegate.Events, webView.Calls)
	}
	if v.Err() == nil {
		t.Fatalf("expected failed visit to carry its error\n")
	}
}

func TestRequestFinishRequiresStart(t *testing.T) {
	v, webView, delegate := makeScript(t, "http://example.com/", "")
	v.Start()
	observer := webView.VisitObserver
	observer.DidStartVisit("v1", false)
	observer.DidFinishRequest("v1")

	if v.RequestFinished() || delegate.VisitRequestDidFinishCalled {
		t.Fatalf("request cannot finish before it started\n")
	}

	observer.DidStartRequest("v1")
	observer.DidStartRequest("v1")
	observer.DidFinishRequest("v1")
	observer.DidFinishRequest("v1")
	if !v.RequestStarted() || !v.RequestFinished() {
		t.Fatalf("expected request started and finished\n")
	}
	if delegate.Count("VisitRequestDidStart") != 1 || delegate.Count("VisitRequestDidFinish") != 1 {
		t.Fatalf("expected one start and one finish: %v\n", delegate.Events)
	}
}

func TestNavigationCallbacksRunInOrder(t *testing.T) {
	v, webView, delegate := makeScript(t, "http://example.com/", "")
	order := make([]string, 0)
	delegate.VisitWillLoadResponseFn = func(v *visitor.Visit) {
		order = append(order, "response")
	}
	webView.ChangeHistoryFn = func(_ context.Context, identifier string) error {
		order = append(order, "history")
		return nil
	}

	v.Start()
	webView.VisitObserver.DidStartVisit("v1", false)
	webView.VisitObserver.DidCompleteRequest("v1")
	if len(order) != 0 {
		t.Fatalf("callbacks ran before the gate opened: %v\n", order)
	}
	v.CompleteNavigation()

	if len(order) != 2 || order[0] != "history" || order[1] != "response" {
		t.Fatalf("expected history then response, got %v\n", order)
	}
}

func TestNilDelegate(t *testing.T) {
	v, webView, _ := makeScript(t, "http://example.com/", "")
	v.SetDelegate(nil)
	v.Start()
	webView.VisitObserver.DidStartVisit("v1", false)
	webView.VisitObserver.DidCompleteVisit("v1", "r1")
	if v.State() != visitk.VisitCompleted {
		t.Fatalf("expected completed got %s\n", v.State())
	}
	if r := v.Record(); r.State != visitk.VisitCompleted || r.Strategy != visitor.StrategyScript {
		t.Fatalf("unexpected record %s\n", r)
	}
}
