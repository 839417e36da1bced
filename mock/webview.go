package mock

import (
	"context"
	"fmt"
	"net/url"

	"gitlab.com/visitkit/visitk"
)

// WebView is a scripted engine adapter. Calls records every adapter call
// as "Method arg" so tests can assert on order.
type WebView struct {
	Calls   []string
	Pending []func()

	NavigationObserver visitk.NavigationObserver
	PageLoadObserver   visitk.PageLoadObserver
	VisitObserver      visitk.VisitObserver
	PageObserver       visitk.PageObserver

	LoadFn     func(ctx context.Context, location *url.URL) (visitk.NavigationID, error)
	LoadCalled bool

	StopLoadingFn     func(ctx context.Context) error
	StopLoadingCalled bool

	OpenExternalFn     func(location *url.URL) error
	OpenExternalCalled bool

	VisitLocationFn     func(ctx context.Context, location *url.URL, action visitk.Action, restorationIdentifier string) (string, error)
	VisitLocationCalled bool

	IssueRequestFn     func(ctx context.Context, identifier string) error
	IssueRequestCalled bool

	ChangeHistoryFn     func(ctx context.Context, identifier string) error
	ChangeHistoryCalled bool

	LoadCachedSnapshotFn     func(ctx context.Context, identifier string) error
	LoadCachedSnapshotCalled bool

	LoadResponseFn     func(ctx context.Context, identifier string) error
	LoadResponseCalled bool

	CancelVisitFn     func(ctx context.Context, identifier string) error
	CancelVisitCalled bool
}

// MakeMockWebView whose Load hands out nav-1, nav-2... and VisitLocation v1, v2...
func MakeMockWebView() *WebView {
	w := &WebView{}
	navs := 0
	visits := 0
	w.LoadFn = func(ctx context.Context, location *url.URL) (visitk.NavigationID, error) {
		navs++
		return visitk.NavigationID(fmt.Sprintf("nav-%d", navs)), nil
	}
	w.StopLoadingFn = func(ctx context.Context) error { return nil }
	w.OpenExternalFn = func(location *url.URL) error { return nil }
	w.VisitLocationFn = func(ctx context.Context, location *url.URL, action visitk.Action, restorationIdentifier string) (string, error) {
		visits++
		return fmt.Sprintf("v%d", visits), nil
	}
	w.IssueRequestFn = func(ctx context.Context, identifier string) error { return nil }
	w.ChangeHistoryFn = func(ctx context.Context, identifier string) error { return nil }
	w.LoadCachedSnapshotFn = func(ctx context.Context, identifier string) error { return nil }
	w.LoadResponseFn = func(ctx context.Context, identifier string) error { return nil }
	w.CancelVisitFn = func(ctx context.Context, identifier string) error { return nil }
	return w
}

// Called returns true if call was recorded
func (w *WebView) Called(call string) bool {
	for _, c := range w.Calls {
		if c == call {
			return true
		}
	}
	return false
}

// RunPending runs posted funcs until none are left
func (w *WebView) RunPending() {
	for len(w.Pending) > 0 {
		fn := w.Pending[0]
		w.Pending = w.Pending[1:]
		fn()
	}
}

func (w *WebView) Post(fn func()) {
	w.Pending = append(w.Pending, fn)
}

func (w *WebView) SetNavigationObserver(observer visitk.NavigationObserver) {
	w.NavigationObserver = observer
}

func (w *WebView) SetPageLoadObserver(observer visitk.PageLoadObserver) {
	w.PageLoadObserver = observer
}

func (w *WebView) SetVisitObserver(observer visitk.VisitObserver) {
	w.VisitObserver = observer
}

func (w *WebView) SetPageObserver(observer visitk.PageObserver) {
	w.PageObserver = observer
}

func (w *WebView) Load(ctx context.Context, location *url.URL) (visitk.NavigationID, error) {
	w.Calls = append(w.Calls, "Load "+location.String())
	w.LoadCalled = true
	return w.LoadFn(ctx, location)
}

func (w *WebView) StopLoading(ctx context.Context) error {
	w.Calls = append(w.Calls, "StopLoading")
	w.StopLoadingCalled = true
	return w.StopLoadingFn(ctx)
}

func (w *WebView) OpenExternal(location *url.URL) error {
	w.Calls = append(w.Calls, "OpenExternal "+location.String())
	w.OpenExternalCalled = true
	return w.OpenExternalFn(location)
}

func (w *WebView) VisitLocation(ctx context.Context, location *url.URL, action visitk.Action, restorationIdentifier string) (string, error) {
	w.Calls = append(w.Calls, "VisitLocation "+location.String())
	w.VisitLocationCalled = true
	return w.VisitLocationFn(ctx, location, action, restorationIdentifier)
}

func (w *WebView) IssueRequest(ctx context.Context, identifier string) error {
	w.Calls = append(w.Calls, "IssueRequest "+identifier)
	w.IssueRequestCalled = true
	return w.IssueRequestFn(ctx, identifier)
}

func (w *WebView) ChangeHistory(ctx context.Context, identifier string) error {
	w.Calls = append(w.Calls, "ChangeHistory "+identifier)
	w.ChangeHistoryCalled = true
	return w.ChangeHistoryFn(ctx, identifier)
}

func (w *WebView) LoadCachedSnapshot(ctx context.Context, identifier string) error {
	w.Calls = append(w.Calls, "LoadCachedSnapshot "+identifier)
	w.LoadCachedSnapshotCalled = true
	return w.LoadCachedSnapshotFn(ctx, identifier)
}

func (w *WebView) LoadResponse(ctx context.Context, identifier string) error {
	w.Calls = append(w.Calls, "LoadResponse "+identifier)
	w.LoadResponseCalled = true
	return w.LoadResponseFn(ctx, identifier)
}

func (w *WebView) CancelVisit(ctx context.Context, identifier string) error {
	w.Calls = append(w.Calls, "CancelVisit "+identifier)
	w.CancelVisitCalled = true
	return w.CancelVisitFn(ctx, identifier)
}
