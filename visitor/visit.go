package visitor

import (
	"net/url"
	"time"

	"gitlab.com/visitkit/visitk"
)

const (
	// StrategyColdBoot full native page load
	StrategyColdBoot = "cold_boot"
	// StrategyScript in-page transition driven through the script bridge
	StrategyScript = "script"
)

// strategy hooks run by the shared lifecycle at each transition
type strategy interface {
	startVisit()
	cancelVisit()
	failVisit()
}

// Visit is one navigation to a location. The lifecycle only moves forward:
// initialized -> started -> canceled | failed | completed. Every transition
// is guarded so late engine callbacks racing a cancel become no-ops.
type Visit struct {
	vctx     *visitk.Context
	delegate Delegate
	strategy strategy
	name     string

	state                 visitk.VisitState
	location              *url.URL
	action                visitk.Action
	hasCachedSnapshot     bool
	restorationIdentifier string
	startedTime           time.Time
	endedTime             time.Time
	err                   error

	requestStarted  bool
	requestFinished bool

	navigationCompleted bool
	navigationCallbacks []func()
}

func newVisit(vctx *visitk.Context, s strategy, name string, location *url.URL, action visitk.Action) *Visit {
	return &Visit{
		vctx:     vctx.Copy(location.String()),
		delegate: nopDelegate{},
		strategy: s,
		name:     name,
		state:    visitk.VisitInitialized,
		location: location,
		action:   action,
	}
}

// SetDelegate to receive notifications, nil releases the current delegate
func (v *Visit) SetDelegate(d Delegate) {
	if d == nil {
		d = nopDelegate{}
	}
	v.delegate = d
}

// Start the visit
func (v *Visit) Start() {
	if v.state != visitk.VisitInitialized {
		return
	}
	v.delegate.VisitWillStart(v)
	v.state = visitk.VisitStarted
	v.startedTime = time.Now()
	v.vctx.Log.Debug().Str("strategy", v.name).Str("action", string(v.action)).Msg("visit started")
	v.strategy.startVisit()
}

// Cancel the visit. Cancellation is silent, the delegate is not told.
func (v *Visit) Cancel() {
	if v.state != visitk.VisitStarted {
		return
	}
	v.state = visitk.VisitCanceled
	v.endedTime = time.Now()
	v.vctx.Log.Debug().Str("strategy", v.name).Msg("visit canceled")
	v.strategy.cancelVisit()
}

func (v *Visit) complete() {
	if v.state != visitk.VisitStarted {
		return
	}
	v.state = visitk.VisitCompleted
	v.endedTime = time.Now()
	v.vctx.Log.Debug().Str("strategy", v.name).Str("restoration_id", v.restorationIdentifier).Msg("visit completed")
	v.delegate.VisitDidComplete(v)
}

func (v *Visit) fail(sideEffect func()) {
	if v.state != visitk.VisitStarted {
		return
	}
	v.state = visitk.VisitFailed
	v.endedTime = time.Now()
	if sideEffect != nil {
		sideEffect()
	}
	v.strategy.failVisit()
	v.delegate.VisitDidFail(v)
}

// failWithError fails the visit reporting err as the request failure
func (v *Visit) failWithError(err error) {
	v.fail(func() {
		v.err = err
		v.vctx.Log.Debug().Str("strategy", v.name).Err(err).Msg("visit failed")
		v.delegate.VisitRequestDidFailWithError(v, err)
	})
}

func (v *Visit) startRequest() {
	if v.requestStarted {
		return
	}
	v.requestStarted = true
	v.delegate.VisitRequestDidStart(v)
}

func (v *Visit) finishRequest() {
	if !v.requestStarted || v.requestFinished {
		return
	}
	v.requestFinished = true
	v.delegate.VisitRequestDidFinish(v)
}

// CompleteNavigation signals the host surface finished its own native navigation
// and runs everything deferred with afterNavigationCompletion, in order.
func (v *Visit) CompleteNavigation() {
	if v.state != visitk.VisitStarted || v.navigationCompleted {
		return
	}
	v.navigationCompleted = true
	callbacks := v.navigationCallbacks
	v.navigationCallbacks = nil
	for _, callback := range callbacks {
		callback()
	}
}

func (v *Visit) afterNavigationCompletion(callback func()) {
	if v.navigationCompleted {
		callback()
		return
	}
	v.navigationCallbacks = append(v.navigationCallbacks, func() {
		if v.state != visitk.VisitCanceled {
			callback()
		}
	})
}

// State of the visit
func (v *Visit) State() visitk.VisitState {
	return v.state
}

// Location being visited
func (v *Visit) Location() *url.URL {
	return v.location
}

// Action of the visit
func (v *Visit) Action() visitk.Action {
	return v.action
}

// Strategy is StrategyColdBoot or StrategyScript
func (v *Visit) Strategy() string {
	return v.name
}

// HasCachedSnapshot reported by the page script when the visit started
func (v *Visit) HasCachedSnapshot() bool {
	return v.hasCachedSnapshot
}

// RestorationIdentifier correlates the visit with a history entry
func (v *Visit) RestorationIdentifier() string {
	return v.restorationIdentifier
}

// RequestStarted true once VisitRequestDidStart was delivered
func (v *Visit) RequestStarted() bool {
	return v.requestStarted
}

// RequestFinished true once VisitRequestDidFinish was delivered
func (v *Visit) RequestFinished() bool {
	return v.requestFinished
}

// NavigationCompleted true once the navigation gate opened
func (v *Visit) NavigationCompleted() bool {
	return v.navigationCompleted
}

// Err is the request failure of a failed visit
func (v *Visit) Err() error {
	return v.err
}

// Record captures the visit for storage
func (v *Visit) Record() *visitk.VisitRecord {
	r := &visitk.VisitRecord{
		Location:              v.location.String(),
		Action:                v.action,
		Strategy:              v.name,
		State:                 v.state,
		RestorationIdentifier: v.restorationIdentifier,
		HasCachedSnapshot:     v.hasCachedSnapshot,
		StartedTime:           v.startedTime,
		EndedTime:             v.endedTime,
	}
	if v.err != nil {
		r.Error = v.err.Error()
	}
	return r
}
