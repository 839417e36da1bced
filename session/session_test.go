package session_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/visitkit/mock"
	"gitlab.com/visitkit/session"
	"gitlab.com/visitkit/visitk"
	"gitlab.com/visitkit/visitor"
)

type fixture struct {
	session  *session.Session
	webView  *mock.WebView
	history  *mock.History
	delegate *mock.SessionDelegate
	metrics  *session.Metrics
}

func newFixture(t *testing.T) *fixture {
	target := mock.MustParse("http://example.com/")
	vctx := mock.MakeMockContext(context.Background(), target)
	f := &fixture{
		webView:  mock.MakeMockWebView(),
		history:  mock.MakeMockHistory(),
		delegate: &mock.SessionDelegate{},
		metrics:  session.NewMetrics(prometheus.NewRegistry()),
	}
	f.session = session.New(vctx, f.webView, f.history, f.metrics)
	f.session.SetDelegate(f.delegate)
	return f
}

// coldBoot runs a successful cold boot to http://example.com/
func (f *fixture) coldBoot(t *testing.T) *visitor.Visit {
	v := f.session.Visit(mock.MustParse("http://example.com/"), visitk.ActionAdvance)
	require.Equal(t, visitor.StrategyColdBoot, v.Strategy())
	f.webView.NavigationObserver.DecidePolicyForNavigationResponse("nav-1", &visitk.NavigationResponse{HTTP: true, StatusCode: 200})
	f.webView.NavigationObserver.DidFinishNavigation("nav-1")
	f.webView.PageLoadObserver.PageLoaded("r0")
	require.Equal(t, visitk.VisitCompleted, v.State())
	return v
}

func TestSessionColdBootsThenUsesScriptVisits(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.session.Initialized())

	f.coldBoot(t)
	assert.True(t, f.session.Initialized())
	assert.Equal(t, "r0", f.history.Restorations["http://example.com/"])
	require.Len(t, f.history.Records, 1)
	assert.Equal(t, visitk.VisitCompleted, f.history.Records[0].State)
	assert.Equal(t, []string{"start http://example.com/", "finish http://example.com/"}, f.delegate.Requests)

	v := f.session.Visit(mock.MustParse("http://example.com/two"), visitk.ActionAdvance)
	assert.Equal(t, visitor.StrategyScript, v.Strategy())
	assert.True(t, f.webView.Called("VisitLocation http://example.com/two"))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Active))

	observer := f.webView.VisitObserver
	observer.DidStartVisit("v1", false)
	observer.DidStartRequest("v1")
	f.session.CompleteNavigation()
	observer.DidCompleteRequest("v1")
	observer.DidFinishRequest("v1")
	observer.DidCompleteVisit("v1", "r1")

	assert.Equal(t, visitk.VisitCompleted, v.State())
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.Visits.WithLabelValues(visitor.StrategyColdBoot, "completed"))+
		testutil.ToFloat64(f.metrics.Visits.WithLabelValues(visitor.StrategyScript, "completed")))
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.Active))
	assert.Len(t, f.delegate.Finished, 2)
}

func TestSessionCancelsLiveVisit(t *testing.T) {
	f := newFixture(t)
	f.coldBoot(t)

	first := f.session.Visit(mock.MustParse("http://example.com/one"), visitk.ActionAdvance)
	f.webView.VisitObserver.DidStartVisit("v1", true)
	second := f.session.Visit(mock.MustParse("http://example.com/two"), visitk.ActionAdvance)

	assert.Equal(t, visitk.VisitCanceled, first.State())
	assert.Equal(t, visitk.VisitStarted, second.State())
	assert.True(t, f.webView.Called("CancelVisit v1"))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Visits.WithLabelValues(visitor.StrategyScript, "canceled")))

	last := f.history.Records[len(f.history.Records)-1]
	assert.Equal(t, "http://example.com/one", last.Location)
	assert.Equal(t, visitk.VisitCanceled, last.State)
}

func TestSessionRestoreUsesRecordedIdentifier(t *testing.T) {
	f := newFixture(t)
	f.coldBoot(t)
	f.history.Restorations["http://example.com/back"] = "r-back"

	var got string
	f.webView.VisitLocationFn = func(ctx context.Context, location *url.URL, action visitk.Action, restorationIdentifier string) (string, error) {
		got = restorationIdentifier
		return "v1", nil
	}
	f.session.Visit(mock.MustParse("http://example.com/back"), visitk.ActionRestore)
	assert.Equal(t, "r-back", got)

	f.session.Visit(mock.MustParse("http://example.com/back"), visitk.ActionAdvance)
	assert.Empty(t, got)
}

func TestSessionForwardsFailures(t *testing.T) {
	f := newFixture(t)
	v := f.session.Visit(mock.MustParse("http://example.com/"), visitk.ActionAdvance)
	f.webView.NavigationObserver.DecidePolicyForNavigationResponse("nav-1", &visitk.NavigationResponse{HTTP: true, StatusCode: 500})

	assert.Equal(t, visitk.VisitFailed, v.State())
	assert.False(t, f.session.Initialized())
	require.Len(t, f.delegate.Failures, 1)
	status, ok := visitk.IsHTTPFailure(f.delegate.Failures[0])
	assert.True(t, ok)
	assert.Equal(t, 500, status)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Visits.WithLabelValues(visitor.StrategyColdBoot, "failed")))

	// still not initialized, so the retry cold boots
	retry := f.session.Visit(mock.MustParse("http://example.com/"), visitk.ActionAdvance)
	assert.Equal(t, visitor.StrategyColdBoot, retry.Strategy())
}

func TestSessionProposalsAndInvalidation(t *testing.T) {
	f := newFixture(t)
	f.coldBoot(t)

	f.webView.PageObserver.VisitProposed(mock.MustParse("http://example.com/link"), visitk.ActionAdvance)
	assert.Equal(t, []string{"http://example.com/link"}, f.delegate.Proposed)

	f.webView.PageObserver.PageInvalidated()
	v := f.session.CurrentVisit()
	assert.Equal(t, visitor.StrategyColdBoot, v.Strategy())
	assert.Equal(t, visitk.ActionReplace, v.Action())
	assert.Equal(t, visitk.VisitStarted, v.State())
}

func TestSessionRecordsVisitCanceledDirectly(t *testing.T) {
	f := newFixture(t)
	f.coldBoot(t)

	v := f.session.Visit(mock.MustParse("http://example.com/two"), visitk.ActionAdvance)
	v.Cancel()
	third := f.session.Visit(mock.MustParse("http://example.com/three"), visitk.ActionAdvance)

	assert.Equal(t, visitk.VisitStarted, third.State())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Active))
	require.Len(t, f.history.Records, 2)
	assert.Equal(t, "http://example.com/two", f.history.Records[1].Location)
	assert.Equal(t, visitk.VisitCanceled, f.history.Records[1].State)
	assert.Len(t, f.delegate.Finished, 2)
	assert.True(t, f.webView.Called("CancelVisit v1"))

	// settling twice records once
	third.Cancel()
	f.session.Cancel()
	f.session.Cancel()
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.Active))
	assert.Len(t, f.history.Records, 3)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.Visits.WithLabelValues(visitor.StrategyScript, "canceled")))
}
