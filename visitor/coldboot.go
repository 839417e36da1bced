package visitor

import (
	"net/url"

	"gitlab.com/visitkit/visitk"
)

// ColdBootVisit performs a full native page load of the location. It holds the
// id of the navigation it issued and ignores callbacks for any other navigation.
type ColdBootVisit struct {
	*Visit
	webView    visitk.WebView
	navigation visitk.NavigationID
}

// NewColdBootVisit for a web view without a booted document
func NewColdBootVisit(vctx *visitk.Context, webView visitk.WebView, location *url.URL, action visitk.Action) *ColdBootVisit {
	c := &ColdBootVisit{webView: webView}
	c.Visit = newVisit(vctx, c, StrategyColdBoot, location, action)
	return c
}

func (c *ColdBootVisit) startVisit() {
	c.webView.SetNavigationObserver(c)
	c.webView.SetPageLoadObserver(c)

	nav, err := c.webView.Load(c.vctx.Ctx, c.location)
	if err != nil {
		c.failWithError(visitk.NewNetworkFailure(err))
		return
	}
	c.navigation = nav

	c.delegate.VisitDidStart(c.Visit)
	c.startRequest()
}

func (c *ColdBootVisit) cancelVisit() {
	c.removeObservers()
	if err := c.webView.StopLoading(c.vctx.Ctx); err != nil {
		c.vctx.Log.Warn().Err(err).Msg("failed to stop loading canceled visit")
	}
	c.finishRequest()
}

func (c *ColdBootVisit) failVisit() {
	c.removeObservers()
	if err := c.webView.StopLoading(c.vctx.Ctx); err != nil {
		c.vctx.Log.Warn().Err(err).Msg("failed to stop loading failed visit")
	}
	c.finishRequest()
}

func (c *ColdBootVisit) removeObservers() {
	c.webView.SetNavigationObserver(nil)
	c.webView.SetPageLoadObserver(nil)
}

func (c *ColdBootVisit) isCurrent(nav visitk.NavigationID) bool {
	return c.state == visitk.VisitStarted && c.navigation != "" && nav == c.navigation
}

// DecidePolicyForNavigationAction keeps link clicks from replacing the document
// while it boots, they go to the platform handler instead.
func (c *ColdBootVisit) DecidePolicyForNavigationAction(action *visitk.NavigationAction) visitk.PolicyDecision {
	if action.Type != visitk.NavigationLinkActivated {
		return visitk.PolicyAllow
	}
	if action.URL != nil {
		if err := c.webView.OpenExternal(action.URL); err != nil {
			c.vctx.Log.Warn().Err(err).Str("url", action.URL.String()).Msg("failed to open link externally")
		}
	}
	return visitk.PolicyCancel
}

// DecidePolicyForNavigationResponse only lets 2xx document responses through
func (c *ColdBootVisit) DecidePolicyForNavigationResponse(nav visitk.NavigationID, response *visitk.NavigationResponse) visitk.PolicyDecision {
	if !c.isCurrent(nav) {
		return visitk.PolicyAllow
	}

	if response == nil || !response.HTTP {
		c.failWithError(visitk.NewNetworkFailure(nil))
		return visitk.PolicyCancel
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return visitk.PolicyAllow
	}

	c.failWithError(visitk.NewHTTPFailure(response.StatusCode))
	return visitk.PolicyCancel
}

// DidFinishNavigation the document loaded, the web view now has a booted page
func (c *ColdBootVisit) DidFinishNavigation(nav visitk.NavigationID) {
	if !c.isCurrent(nav) {
		return
	}
	c.webView.SetNavigationObserver(nil)
	c.delegate.VisitDidInitializeWebView(c.Visit)
	c.finishRequest()
}

// DidFailNavigation covers both provisional and committed navigation failures
func (c *ColdBootVisit) DidFailNavigation(nav visitk.NavigationID, err error) {
	if !c.isCurrent(nav) {
		return
	}
	c.failWithError(visitk.NewNetworkFailure(err))
}

// PageLoaded the booted document rendered
func (c *ColdBootVisit) PageLoaded(restorationIdentifier string) {
	if c.state != visitk.VisitStarted {
		return
	}
	c.webView.SetPageLoadObserver(nil)
	c.restorationIdentifier = restorationIdentifier
	c.delegate.VisitDidRender(c.Visit)
	c.complete()
}
