// Package chrome drives a real chrome over the devtools protocol. Native loads
// are Page.navigate calls; script visits run through the bridge script every
// document gets, which reports back through a Runtime binding.
package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd/v2"
	"github.com/wirepair/gcd/v2/gcdapi"
	"gitlab.com/visitkit/engine"
	"gitlab.com/visitkit/engine/loop"
	"gitlab.com/visitkit/visitk"
)

// Tab is one chrome target acting as a visitk.WebView. Devtools events arrive
// on gcd's goroutines and are re-posted to the loop, so observers are only
// ever called from the loop.
type Tab struct {
	engine.Observers

	loop   *loop.Loop
	target *gcd.ChromeTarget
	log    zerolog.Logger

	frameID     string
	current     visitk.NavigationID
	pendingLoad map[string]interface{}
	opened      []*url.URL
}

// NewTab takes the browser's first target and installs the bridge
func NewTab(ctx context.Context, l *loop.Loop, b *gcd.Gcd) (*Tab, error) {
	target, err := b.GetFirstTab()
	if err != nil {
		return nil, errors.Wrap(err, "getting tab")
	}

	t := &Tab{
		loop:   l,
		target: target,
		log:    log.With().Str("engine", "chrome").Logger(),
		opened: make([]*url.URL, 0),
	}
	if err := t.init(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tab) init(ctx context.Context) error {
	if _, err := t.target.Page.Enable(ctx); err != nil {
		return errors.Wrap(err, "enabling page")
	}
	networkParams := &gcdapi.NetworkEnableParams{
		MaxTotalBufferSize:    -1,
		MaxResourceBufferSize: -1,
		MaxPostDataSize:       -1,
	}
	if _, err := t.target.Network.EnableWithParams(ctx, networkParams); err != nil {
		return errors.Wrap(err, "enabling network")
	}
	if _, err := t.target.Runtime.Enable(ctx); err != nil {
		return errors.Wrap(err, "enabling runtime")
	}
	if _, err := t.target.Runtime.AddBindingWithParams(ctx, &gcdapi.RuntimeAddBindingParams{Name: bindingName}); err != nil {
		return errors.Wrap(err, "adding binding")
	}
	scriptParams := &gcdapi.PageAddScriptToEvaluateOnNewDocumentParams{Source: bridgeScript}
	if _, err := t.target.Page.AddScriptToEvaluateOnNewDocumentWithParams(ctx, scriptParams); err != nil {
		return errors.Wrap(err, "adding bridge script")
	}
	t.subscribe()
	return nil
}

func (t *Tab) subscribe() {
	t.target.Subscribe("Network.responseReceived", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.NetworkResponseReceivedEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			t.log.Warn().Err(err).Msg("failed to decode responseReceived")
			return
		}
		p := message.Params
		if p.Type != "Document" || p.Response == nil {
			return
		}
		t.loop.Post(func() {
			t.responseReceived(visitk.NavigationID(p.LoaderId), p.Response)
		})
	})

	t.target.Subscribe("Page.frameRequestedNavigation", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.PageFrameRequestedNavigationEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			t.log.Warn().Err(err).Msg("failed to decode frameRequestedNavigation")
			return
		}
		p := message.Params
		t.loop.Post(func() {
			t.navigationRequested(p.FrameId, p.Reason, p.Url)
		})
	})

	t.target.Subscribe("Page.loadEventFired", func(target *gcd.ChromeTarget, payload []byte) {
		t.loop.Post(t.loadEventFired)
	})

	t.target.Subscribe("Runtime.bindingCalled", func(target *gcd.ChromeTarget, payload []byte) {
		message := &gcdapi.RuntimeBindingCalledEvent{}
		if err := json.Unmarshal(payload, message); err != nil {
			t.log.Warn().Err(err).Msg("failed to decode bindingCalled")
			return
		}
		if message.Params.Name != bindingName {
			return
		}
		raw := message.Params.Payload
		t.loop.Post(func() {
			t.pageMessage(raw)
		})
	})
}

// Post fn to the loop
func (t *Tab) Post(fn func()) {
	t.loop.Post(fn)
}

// Opened lists locations handed to OpenExternal
func (t *Tab) Opened() []*url.URL {
	return t.opened
}

// Load location as a new document
func (t *Tab) Load(ctx context.Context, location *url.URL) (visitk.NavigationID, error) {
	params := &gcdapi.PageNavigateParams{Url: location.String(), TransitionType: "typed"}
	frameID, loaderID, errorText, err := t.target.Page.NavigateWithParams(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "navigating")
	}

	nav := visitk.NavigationID(loaderID)
	if nav == "" {
		nav = visitk.NavigationID(uuid.New().String())
	}
	t.frameID = frameID
	t.current = nav
	t.pendingLoad = nil

	if errorText != "" {
		t.loop.Post(func() {
			t.failNavigation(nav, errors.New(errorText))
		})
	}
	return nav, nil
}

// StopLoading abandons the in-flight navigation
func (t *Tab) StopLoading(ctx context.Context) error {
	t.current = ""
	t.pendingLoad = nil
	_, err := t.target.Page.StopLoading(ctx)
	return errors.Wrap(err, "stopping load")
}

// OpenExternal records the location, headless chrome has nothing to hand it to
func (t *Tab) OpenExternal(location *url.URL) error {
	t.log.Info().Str("location", location.String()).Msg("opening externally")
	t.opened = append(t.opened, location)
	return nil
}

func (t *Tab) responseReceived(nav visitk.NavigationID, resp *gcdapi.NetworkResponse) {
	if nav != t.current || t.Navigation == nil {
		return
	}

	location, err := url.Parse(resp.Url)
	if err != nil {
		t.failNavigation(nav, errors.Wrap(err, "invalid response url"))
		return
	}
	response := &visitk.NavigationResponse{
		URL:        location,
		HTTP:       location.Scheme == "http" || location.Scheme == "https",
		StatusCode: resp.Status,
		MIMEType:   resp.MimeType,
	}
	if t.Navigation.DecidePolicyForNavigationResponse(nav, response) == visitk.PolicyCancel {
		t.stop()
	}
}

func (t *Tab) navigationRequested(frameID, reason, rawurl string) {
	if t.Navigation == nil || (t.frameID != "" && frameID != t.frameID) {
		return
	}
	location, err := url.Parse(rawurl)
	if err != nil {
		return
	}
	action := &visitk.NavigationAction{Type: navigationType(reason), URL: location}
	if t.Navigation.DecidePolicyForNavigationAction(action) == visitk.PolicyCancel {
		t.stop()
	}
}

func (t *Tab) loadEventFired() {
	nav := t.current
	if nav == "" {
		return
	}
	t.current = ""
	if t.Navigation != nil {
		t.Navigation.DidFinishNavigation(nav)
	}

	if data := t.pendingLoad; data != nil {
		t.pendingLoad = nil
		t.Dispatch(t.log, engine.MsgPageLoaded, data)
	}
}

func (t *Tab) failNavigation(nav visitk.NavigationID, err error) {
	if nav != t.current {
		return
	}
	t.current = ""
	t.pendingLoad = nil
	if t.Navigation != nil {
		t.Navigation.DidFailNavigation(nav, err)
	}
}

// pageMessage from the bridge. A document can report it loaded before chrome
// tells us its navigation finished, hold it until then.
func (t *Tab) pageMessage(raw string) {
	message := struct {
		Name string                 `json:"name"`
		Data map[string]interface{} `json:"data"`
	}{}
	if err := json.Unmarshal([]byte(raw), &message); err != nil {
		t.log.Warn().Err(err).Msg("failed to decode page message")
		return
	}

	if message.Name == engine.MsgPageLoaded && t.current != "" {
		t.pendingLoad = message.Data
		return
	}
	t.Dispatch(t.log, message.Name, message.Data)
}

func (t *Tab) stop() {
	t.current = ""
	t.pendingLoad = nil
	if _, err := t.target.Page.StopLoading(context.Background()); err != nil {
		t.log.Warn().Err(err).Msg("failed to stop loading")
	}
}

func (t *Tab) evaluate(ctx context.Context, name string, args ...interface{}) error {
	_, err := t.evaluateValue(ctx, name, args...)
	return err
}

// evaluateValue calls into the bridge and returns the call's result by value
func (t *Tab) evaluateValue(ctx context.Context, name string, args ...interface{}) (interface{}, error) {
	encoded, err := json.Marshal(args)
	if err != nil {
		return nil, errors.Wrap(err, "encoding bridge arguments")
	}

	params := &gcdapi.RuntimeEvaluateParams{
		Expression:    fmt.Sprintf("window.visitkit.%s.apply(null, %s)", name, encoded),
		ReturnByValue: true,
	}
	result, exception, err := t.target.Runtime.EvaluateWithParams(ctx, params)
	if err != nil {
		return nil, errors.Wrapf(err, "evaluating %s", name)
	}
	if exception != nil {
		return nil, errors.Errorf("evaluating %s: %s", name, exception.Text)
	}
	if result == nil {
		return nil, nil
	}
	return result.Value, nil
}

// VisitLocation returns the identifier the bridge gave the visit
func (t *Tab) VisitLocation(ctx context.Context, location *url.URL, action visitk.Action, restorationIdentifier string) (string, error) {
	value, err := t.evaluateValue(ctx, "startVisit", location.String(), string(action), restorationIdentifier)
	if err != nil {
		return "", err
	}
	identifier, _ := value.(string)
	return identifier, nil
}

func (t *Tab) IssueRequest(ctx context.Context, identifier string) error {
	return t.evaluate(ctx, "issueRequest", identifier)
}

func (t *Tab) ChangeHistory(ctx context.Context, identifier string) error {
	return t.evaluate(ctx, "changeHistory", identifier)
}

func (t *Tab) LoadCachedSnapshot(ctx context.Context, identifier string) error {
	return t.evaluate(ctx, "loadCachedSnapshot", identifier)
}

func (t *Tab) LoadResponse(ctx context.Context, identifier string) error {
	return t.evaluate(ctx, "loadResponse", identifier)
}

func (t *Tab) CancelVisit(ctx context.Context, identifier string) error {
	return t.evaluate(ctx, "cancelVisit", identifier)
}

func navigationType(reason string) visitk.NavigationType {
	switch {
	case reason == "anchorClick":
		return visitk.NavigationLinkActivated
	case strings.HasPrefix(reason, "formSubmission"):
		return visitk.NavigationFormSubmitted
	case strings.HasPrefix(reason, "reload"):
		return visitk.NavigationReload
	}
	return visitk.NavigationOther
}
