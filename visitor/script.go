package visitor

import (
	"net/url"

	"github.com/pkg/errors"
	"gitlab.com/visitkit/visitk"
)

// ErrNoIdentifier the page script began a visit without handing back an identifier
var ErrNoIdentifier = errors.New("page script returned no visit identifier")

// ScriptVisit transitions an already booted document through the script bridge.
// History changes, cached snapshots and the final response wait for the host
// surface's own navigation to complete.
type ScriptVisit struct {
	*Visit
	bridge           visitk.Bridge
	identifier       string
	visitStarted     bool
	requestCompleted bool
}

// NewScriptVisit for a web view with a booted document. restorationIdentifier
// may be empty.
func NewScriptVisit(vctx *visitk.Context, bridge visitk.Bridge, location *url.URL, action visitk.Action, restorationIdentifier string) *ScriptVisit {
	s := &ScriptVisit{bridge: bridge}
	s.Visit = newVisit(vctx, s, StrategyScript, location, action)
	s.restorationIdentifier = restorationIdentifier
	return s
}

// Identifier assigned by the page script, empty until the visit started
func (s *ScriptVisit) Identifier() string {
	return s.identifier
}

func (s *ScriptVisit) startVisit() {
	s.bridge.SetVisitObserver(s)
	identifier, err := s.bridge.VisitLocation(s.vctx.Ctx, s.location, s.action, s.restorationIdentifier)
	if err != nil {
		s.failWithError(visitk.NewNetworkFailure(err))
		return
	}
	if identifier == "" {
		s.failWithError(visitk.NewNetworkFailure(ErrNoIdentifier))
		return
	}
	s.identifier = identifier
}

func (s *ScriptVisit) cancelVisit() {
	if s.identifier != "" {
		if err := s.bridge.CancelVisit(s.vctx.Ctx, s.identifier); err != nil {
			s.vctx.Log.Warn().Err(err).Str("identifier", s.identifier).Msg("failed to cancel script visit")
		}
	}
	s.finishRequest()
}

func (s *ScriptVisit) failVisit() {
	s.finishRequest()
}

func (s *ScriptVisit) isCurrent(identifier string) bool {
	return s.state == visitk.VisitStarted && identifier == s.identifier
}

// DidStartVisit issues the request and defers the history change and snapshot
// until the navigation gate opens. Only the identifier VisitLocation returned
// is accepted, a did-start queued by an earlier canceled visit is dropped.
func (s *ScriptVisit) DidStartVisit(identifier string, hasCachedSnapshot bool) {
	if !s.isCurrent(identifier) || s.visitStarted {
		return
	}
	s.visitStarted = true
	s.hasCachedSnapshot = hasCachedSnapshot

	s.delegate.VisitDidStart(s.Visit)
	if err := s.bridge.IssueRequest(s.vctx.Ctx, identifier); err != nil {
		s.failWithError(visitk.NewNetworkFailure(err))
		return
	}

	s.afterNavigationCompletion(func() {
		if err := s.bridge.ChangeHistory(s.vctx.Ctx, identifier); err != nil {
			s.vctx.Log.Warn().Err(err).Str("identifier", identifier).Msg("failed to change history")
		}
		if !s.hasCachedSnapshot {
			return
		}
		if err := s.bridge.LoadCachedSnapshot(s.vctx.Ctx, identifier); err != nil {
			s.vctx.Log.Warn().Err(err).Str("identifier", identifier).Msg("failed to load cached snapshot")
		}
	})
}

// DidStartRequest the page script issued the request
func (s *ScriptVisit) DidStartRequest(identifier string) {
	if !s.isCurrent(identifier) {
		return
	}
	s.startRequest()
}

// DidCompleteRequest a response is ready, load it once the gate opens
func (s *ScriptVisit) DidCompleteRequest(identifier string) {
	if !s.isCurrent(identifier) || s.requestCompleted {
		return
	}
	s.requestCompleted = true

	s.afterNavigationCompletion(func() {
		if s.state != visitk.VisitStarted {
			return
		}
		s.delegate.VisitWillLoadResponse(s.Visit)
		if err := s.bridge.LoadResponse(s.vctx.Ctx, identifier); err != nil {
			s.failWithError(visitk.NewNetworkFailure(err))
		}
	})
}

// DidFailRequest statusCode is visitk.NoStatus when there was no response
func (s *ScriptVisit) DidFailRequest(identifier string, statusCode int) {
	if !s.isCurrent(identifier) {
		return
	}
	s.failWithError(visitk.NewRequestFailure(statusCode))
}

// DidFinishRequest the request is done, successful or not
func (s *ScriptVisit) DidFinishRequest(identifier string) {
	if !s.isCurrent(identifier) {
		return
	}
	s.finishRequest()
}

// DidRender a snapshot or the response was rendered
func (s *ScriptVisit) DidRender(identifier string) {
	if !s.isCurrent(identifier) {
		return
	}
	s.delegate.VisitDidRender(s.Visit)
}

// DidCompleteVisit records the final restoration identifier and completes
func (s *ScriptVisit) DidCompleteVisit(identifier, restorationIdentifier string) {
	if !s.isCurrent(identifier) {
		return
	}
	if restorationIdentifier != "" {
		s.restorationIdentifier = restorationIdentifier
	}
	s.complete()
}
