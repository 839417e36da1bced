package sim

import (
	"context"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gitlab.com/visitkit/engine"
	"gitlab.com/visitkit/engine/loop"
	"gitlab.com/visitkit/visitk"
	"golang.org/x/net/publicsuffix"
)

// ErrNoDocument a bridge call was made before any document booted
var ErrNoDocument = errors.New("web view has no booted document")

// WebView is an in-process engine. Native loads are plain http fetches, the
// booted document is a goja runtime running the page script. Every callback is
// delivered through the loop, so nothing calls back into a visit while it is
// still inside an adapter call.
type WebView struct {
	engine.Observers

	loop   *loop.Loop
	client *http.Client
	log    zerolog.Logger

	current  visitk.NavigationID
	document *document
	opened   []*url.URL
}

// New web view posting callbacks to l
func New(l *loop.Loop) *WebView {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		log.Warn().Err(err).Msg("failed to create cookie jar, cookies disabled")
	}
	return &WebView{
		loop:   l,
		client: &http.Client{Jar: jar, Timeout: time.Second * 30},
		log:    log.With().Str("engine", "sim").Logger(),
		opened: make([]*url.URL, 0),
	}
}

// Post fn to the loop
func (w *WebView) Post(fn func()) {
	w.loop.Post(fn)
}

// Booted true once a native load produced a document
func (w *WebView) Booted() bool {
	return w.document != nil
}

// Body currently rendered by the document
func (w *WebView) Body() string {
	if w.document == nil {
		return ""
	}
	return w.document.body()
}

// HistoryLength of the document's history entries
func (w *WebView) HistoryLength() int {
	if w.document == nil {
		return 0
	}
	return w.document.historyLength()
}

// Opened lists locations handed to OpenExternal
func (w *WebView) Opened() []*url.URL {
	return w.opened
}

// Load location as a new document. The navigation runs on the loop.
func (w *WebView) Load(ctx context.Context, location *url.URL) (visitk.NavigationID, error) {
	nav := visitk.NavigationID(uuid.New().String())
	w.current = nav
	w.loop.Post(func() {
		w.navigate(ctx, nav, location)
	})
	return nav, nil
}

// StopLoading abandons the in-flight navigation
func (w *WebView) StopLoading(ctx context.Context) error {
	w.current = ""
	return nil
}

// OpenExternal records the location, there is no platform handler to hand it to
func (w *WebView) OpenExternal(location *url.URL) error {
	w.log.Info().Str("location", location.String()).Msg("opening externally")
	w.opened = append(w.opened, location)
	return nil
}

// ClickLink activates a link in the current document
func (w *WebView) ClickLink(href string) {
	w.loop.Post(func() {
		ref, err := url.Parse(href)
		if err != nil {
			w.log.Warn().Err(err).Str("href", href).Msg("invalid link")
			return
		}
		location := ref
		if w.document != nil {
			location = w.document.location.ResolveReference(ref)
		}

		if observer := w.Navigation; observer != nil {
			action := &visitk.NavigationAction{Type: visitk.NavigationLinkActivated, URL: location}
			if observer.DecidePolicyForNavigationAction(action) == visitk.PolicyCancel {
				return
			}
		}

		if w.document == nil {
			if _, err := w.Load(context.Background(), location); err != nil {
				w.log.Warn().Err(err).Msg("failed to follow link")
			}
			return
		}
		if _, err := w.document.call("clickLink", location.String()); err != nil {
			w.log.Warn().Err(err).Msg("failed to click link")
		}
	})
}

// InvalidatePage tells the page observer the document can't be reused
func (w *WebView) InvalidatePage() {
	w.loop.Post(func() {
		if w.Page != nil {
			w.Page.PageInvalidated()
		}
	})
}

func (w *WebView) navigate(ctx context.Context, nav visitk.NavigationID, location *url.URL) {
	if w.current != nav {
		return
	}

	status, mimeType, body, err := w.get(ctx, location)
	if err != nil {
		w.failNavigation(nav, err)
		return
	}
	if w.current != nav {
		return
	}

	if observer := w.Navigation; observer != nil {
		response := &visitk.NavigationResponse{URL: location, HTTP: true, StatusCode: status, MIMEType: mimeType}
		if observer.DecidePolicyForNavigationResponse(nav, response) == visitk.PolicyCancel {
			w.current = ""
			return
		}
	}

	doc, err := newDocument(w, location, body)
	if err != nil {
		w.failNavigation(nav, err)
		return
	}
	w.document = doc
	w.current = ""

	if observer := w.Navigation; observer != nil {
		observer.DidFinishNavigation(nav)
	}
	w.loop.Post(func() {
		if w.document != doc {
			return
		}
		if _, err := doc.call("boot"); err != nil {
			w.log.Error().Err(err).Msg("failed to boot document")
		}
	})
}

func (w *WebView) failNavigation(nav visitk.NavigationID, err error) {
	w.current = ""
	if observer := w.Navigation; observer != nil {
		observer.DidFailNavigation(nav, err)
	}
}

func (w *WebView) get(ctx context.Context, location *url.URL) (int, string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location.String(), nil)
	if err != nil {
		return 0, "", "", err
	}
	req.Header.Set("Accept", "text/html, application/xhtml+xml")

	resp, err := w.client.Do(req)
	if err != nil {
		return 0, "", "", err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return 0, "", "", errors.Wrap(err, "reading body")
	}
	return resp.StatusCode, resp.Header.Get("Content-Type"), string(body), nil
}

func (w *WebView) bridgeCall(name string, args ...interface{}) error {
	if w.document == nil {
		return ErrNoDocument
	}
	_, err := w.document.call(name, args...)
	return err
}

// VisitLocation returns the identifier the page script gave the visit
func (w *WebView) VisitLocation(ctx context.Context, location *url.URL, action visitk.Action, restorationIdentifier string) (string, error) {
	if w.document == nil {
		return "", ErrNoDocument
	}
	v, err := w.document.call("startVisit", location.String(), string(action), restorationIdentifier)
	if err != nil {
		return "", err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", nil
	}
	return v.String(), nil
}

func (w *WebView) IssueRequest(ctx context.Context, identifier string) error {
	return w.bridgeCall("issueRequest", identifier)
}

func (w *WebView) ChangeHistory(ctx context.Context, identifier string) error {
	return w.bridgeCall("changeHistory", identifier)
}

func (w *WebView) LoadCachedSnapshot(ctx context.Context, identifier string) error {
	return w.bridgeCall("loadCachedSnapshot", identifier)
}

func (w *WebView) LoadResponse(ctx context.Context, identifier string) error {
	return w.bridgeCall("loadResponse", identifier)
}

func (w *WebView) CancelVisit(ctx context.Context, identifier string) error {
	return w.bridgeCall("cancelVisit", identifier)
}

// fetch is called by the page script; the response is handed back on the loop
func (w *WebView) fetch(identifier, location string) {
	doc := w.document
	w.loop.Post(func() {
		if w.document != doc {
			return
		}
		u, err := url.Parse(location)
		if err != nil {
			w.requestFailed(doc, identifier, err)
			return
		}
		status, _, body, err := w.get(context.Background(), u)
		if err != nil {
			w.requestFailed(doc, identifier, err)
			return
		}
		if _, err := doc.call("requestCompleted", identifier, status, body); err != nil {
			w.log.Error().Err(err).Str("identifier", identifier).Msg("failed to hand response to document")
		}
	})
}

func (w *WebView) requestFailed(doc *document, identifier string, cause error) {
	w.log.Warn().Err(cause).Str("identifier", identifier).Msg("script visit request failed")
	if _, err := doc.call("requestFailed", identifier, cause.Error()); err != nil {
		w.log.Error().Err(err).Str("identifier", identifier).Msg("failed to hand request failure to document")
	}
}

// postMessage is called by the page script; messages are dispatched on the loop
func (w *WebView) postMessage(name string, data map[string]interface{}) {
	w.loop.Post(func() {
		w.Dispatch(w.log, name, data)
	})
}
