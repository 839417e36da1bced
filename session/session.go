package session

import (
	"net/url"

	"gitlab.com/visitkit/visitk"
	"gitlab.com/visitkit/visitor"
)

// History is where a session keeps finished visits
type History interface {
	AddVisit(record *visitk.VisitRecord) error
	SetRestorationIdentifier(location, restorationIdentifier string) error
	RestorationIdentifier(location string) (string, error)
}

// Delegate is the host application driving the session
type Delegate interface {
	DidProposeVisit(location *url.URL, action visitk.Action)
	DidStartRequest(location *url.URL)
	DidFinishRequest(location *url.URL)
	DidFailRequest(location *url.URL, err error)
	DidFinishVisit(v *visitor.Visit)
}

// Session runs visits against one web view. It cold boots until the web view
// has an initialized document and uses script visits after that. Only one
// visit is live at a time, starting a new one cancels the previous.
type Session struct {
	vctx        *visitk.Context
	webView     visitk.WebView
	history     History
	metrics     *Metrics
	delegate    Delegate
	initialized bool
	current     *visitor.Visit
	recorded    bool
}

// New session for webView, history may be nil
func New(vctx *visitk.Context, webView visitk.WebView, history History, metrics *Metrics) *Session {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	s := &Session{
		vctx:    vctx,
		webView: webView,
		history: history,
		metrics: metrics,
	}
	webView.SetPageObserver(s)
	return s
}

// SetDelegate for host notifications
func (s *Session) SetDelegate(d Delegate) {
	s.delegate = d
}

// Initialized true once a cold boot booted the web view's document
func (s *Session) Initialized() bool {
	return s.initialized
}

// CurrentVisit is the most recently started visit, nil before the first one
func (s *Session) CurrentVisit() *visitor.Visit {
	return s.current
}

// Visit location, canceling any visit still in progress
func (s *Session) Visit(location *url.URL, action visitk.Action) *visitor.Visit {
	s.Cancel()

	var v *visitor.Visit
	if s.initialized {
		restorationIdentifier := ""
		if action == visitk.ActionRestore && s.history != nil {
			rid, err := s.history.RestorationIdentifier(location.String())
			if err != nil {
				s.vctx.Log.Warn().Err(err).Str("location", location.String()).Msg("failed to look up restoration identifier")
			}
			restorationIdentifier = rid
		}
		v = visitor.NewScriptVisit(s.vctx, s.webView, location, action, restorationIdentifier).Visit
	} else {
		v = visitor.NewColdBootVisit(s.vctx, s.webView, location, action).Visit
	}

	v.SetDelegate(s)
	s.current = v
	s.recorded = false
	s.metrics.Active.Inc()
	v.Start()
	return v
}

// Reload cold boots the current location again
func (s *Session) Reload() *visitor.Visit {
	if s.current == nil {
		return nil
	}
	s.initialized = false
	return s.Visit(s.current.Location(), visitk.ActionReplace)
}

// Cancel the visit in progress, if any
func (s *Session) Cancel() {
	if s.current == nil {
		return
	}
	s.current.Cancel()
	s.settle()
}

// settle records the current visit if it ended without the session hearing
// about it, which is the case when the host canceled it through the visit
func (s *Session) settle() {
	if s.current == nil || s.recorded || !s.current.State().Terminal() {
		return
	}
	s.finish(s.current)
}

// CompleteNavigation tells the current visit the host finished its own
// navigation (e.g. the screen transition)
func (s *Session) CompleteNavigation() {
	if s.current != nil {
		s.current.CompleteNavigation()
	}
}

func (s *Session) finish(v *visitor.Visit) {
	if v == s.current {
		s.recorded = true
	}
	s.metrics.Active.Dec()
	s.metrics.Visits.WithLabelValues(v.Strategy(), v.State().String()).Inc()

	if s.history != nil {
		if err := s.history.AddVisit(v.Record()); err != nil {
			s.vctx.Log.Error().Err(err).Str("location", v.Location().String()).Msg("failed to record visit")
		}
	}
	if s.delegate != nil {
		s.delegate.DidFinishVisit(v)
	}
}

func (s *Session) VisitDidInitializeWebView(v *visitor.Visit) {
	s.initialized = true
}

func (s *Session) VisitWillStart(v *visitor.Visit) {
	s.vctx.Log.Debug().Str("location", v.Location().String()).Str("strategy", v.Strategy()).Msg("visit will start")
}

func (s *Session) VisitDidStart(v *visitor.Visit) {
	s.vctx.Log.Debug().Str("location", v.Location().String()).Bool("cached_snapshot", v.HasCachedSnapshot()).Msg("visit did start")
}

func (s *Session) VisitDidComplete(v *visitor.Visit) {
	if s.history != nil {
		if err := s.history.SetRestorationIdentifier(v.Location().String(), v.RestorationIdentifier()); err != nil {
			s.vctx.Log.Error().Err(err).Msg("failed to record restoration identifier")
		}
	}
	s.finish(v)
}

func (s *Session) VisitDidFail(v *visitor.Visit) {
	s.finish(v)
}

func (s *Session) VisitWillLoadResponse(v *visitor.Visit) {
	s.vctx.Log.Debug().Str("location", v.Location().String()).Msg("visit will load response")
}

func (s *Session) VisitDidRender(v *visitor.Visit) {
	s.vctx.Log.Debug().Str("location", v.Location().String()).Msg("visit did render")
}

func (s *Session) VisitRequestDidStart(v *visitor.Visit) {
	if s.delegate != nil {
		s.delegate.DidStartRequest(v.Location())
	}
}

func (s *Session) VisitRequestDidFailWithError(v *visitor.Visit, err error) {
	s.vctx.Log.Warn().Err(err).Str("location", v.Location().String()).Msg("visit request failed")
	if s.delegate != nil {
		s.delegate.DidFailRequest(v.Location(), err)
	}
}

func (s *Session) VisitRequestDidFinish(v *visitor.Visit) {
	if s.delegate != nil {
		s.delegate.DidFinishRequest(v.Location())
	}
}

// VisitProposed a link was followed inside the booted document
func (s *Session) VisitProposed(location *url.URL, action visitk.Action) {
	if s.delegate != nil {
		s.delegate.DidProposeVisit(location, action)
	}
}

// PageInvalidated the document can't be reused (e.g. its assets changed), boot it again
func (s *Session) PageInvalidated() {
	s.vctx.Log.Info().Msg("page invalidated, reloading")
	s.Reload()
}
