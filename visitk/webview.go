package visitk

import (
	"context"
	"net/url"
)

// NavigationID identifies one native navigation issued by Navigator.Load
type NavigationID string

// NavigationType of a proposed native navigation
type NavigationType int8

const (
	// NavigationOther anything we don't classify
	NavigationOther NavigationType = iota + 1
	// NavigationLinkActivated user clicked a link
	NavigationLinkActivated
	// NavigationFormSubmitted form submission
	NavigationFormSubmitted
	// NavigationBackForward history traversal
	NavigationBackForward
	// NavigationReload reload
	NavigationReload
)

// PolicyDecision answers a navigation policy question
type PolicyDecision int8

const (
	// PolicyAllow let the navigation continue
	PolicyAllow PolicyDecision = iota + 1
	// PolicyCancel stop the navigation
	PolicyCancel
)

// NavigationAction is a navigation the engine is about to perform
type NavigationAction struct {
	Type NavigationType
	URL  *url.URL
}

// NavigationResponse is the main document response of a native navigation.
// HTTP is false when the engine could not produce an http status.
type NavigationResponse struct {
	URL        *url.URL
	HTTP       bool
	StatusCode int
	MIMEType   string
}

// NavigationObserver receives native navigation callbacks. Decisions are returned
// synchronously, everything else arrives on the engine's event loop.
type NavigationObserver interface {
	DecidePolicyForNavigationAction(action *NavigationAction) PolicyDecision
	DecidePolicyForNavigationResponse(nav NavigationID, response *NavigationResponse) PolicyDecision
	DidFinishNavigation(nav NavigationID)
	DidFailNavigation(nav NavigationID, err error)
}

// Navigator drives full native page loads
type Navigator interface {
	SetNavigationObserver(observer NavigationObserver)
	Load(ctx context.Context, location *url.URL) (NavigationID, error)
	StopLoading(ctx context.Context) error
	// OpenExternal hands a location to the platform's default handler
	OpenExternal(location *url.URL) error
}

// VisitObserver receives script bridge callbacks, correlated by visit identifier
type VisitObserver interface {
	DidStartVisit(identifier string, hasCachedSnapshot bool)
	DidStartRequest(identifier string)
	DidCompleteRequest(identifier string)
	DidFailRequest(identifier string, statusCode int)
	DidFinishRequest(identifier string)
	DidRender(identifier string)
	DidCompleteVisit(identifier, restorationIdentifier string)
}

// PageLoadObserver is told when a booted document reports it fully rendered
type PageLoadObserver interface {
	PageLoaded(restorationIdentifier string)
}

// PageObserver receives document level events not tied to a visit
type PageObserver interface {
	VisitProposed(location *url.URL, action Action)
	PageInvalidated()
}

// Bridge is the script bridge into a booted document
type Bridge interface {
	SetVisitObserver(observer VisitObserver)
	SetPageLoadObserver(observer PageLoadObserver)
	// VisitLocation begins a visit in the page and returns the identifier the
	// page assigned it. Every later callback for the visit carries that identifier.
	VisitLocation(ctx context.Context, location *url.URL, action Action, restorationIdentifier string) (string, error)
	IssueRequest(ctx context.Context, identifier string) error
	ChangeHistory(ctx context.Context, identifier string) error
	LoadCachedSnapshot(ctx context.Context, identifier string) error
	LoadResponse(ctx context.Context, identifier string) error
	CancelVisit(ctx context.Context, identifier string) error
}

// WebView is the full browser engine adapter a session works against
type WebView interface {
	Navigator
	Bridge
	SetPageObserver(observer PageObserver)
	// Post schedules fn on the engine's event loop
	Post(fn func())
}
