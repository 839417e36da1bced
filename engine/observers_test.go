package engine_test

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gitlab.com/visitkit/engine"
	"gitlab.com/visitkit/visitk"
)

type recorder struct {
	events []string
}

func (r *recorder) add(format string, args ...interface{}) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) DidStartVisit(identifier string, hasCachedSnapshot bool) {
	r.add("started %s %v", identifier, hasCachedSnapshot)
}
func (r *recorder) DidStartRequest(identifier string)    { r.add("request started %s", identifier) }
func (r *recorder) DidCompleteRequest(identifier string) { r.add("request completed %s", identifier) }
func (r *recorder) DidFailRequest(identifier string, statusCode int) {
	r.add("request failed %s %d", identifier, statusCode)
}
func (r *recorder) DidFinishRequest(identifier string) { r.add("request finished %s", identifier) }
func (r *recorder) DidRender(identifier string)        { r.add("rendered %s", identifier) }
func (r *recorder) DidCompleteVisit(identifier, restorationIdentifier string) {
	r.add("completed %s %s", identifier, restorationIdentifier)
}
func (r *recorder) PageLoaded(restorationIdentifier string) { r.add("loaded %s", restorationIdentifier) }
func (r *recorder) VisitProposed(location *url.URL, action visitk.Action) {
	r.add("proposed %s %s", location, action)
}
func (r *recorder) PageInvalidated() { r.add("invalidated") }

func TestDispatchRoutesMessages(t *testing.T) {
	rec := &recorder{}
	o := &engine.Observers{}
	o.SetVisitObserver(rec)
	o.SetPageLoadObserver(rec)
	o.SetPageObserver(rec)
	logger := zerolog.Nop()

	o.Dispatch(logger, engine.MsgPageLoaded, map[string]interface{}{"restorationIdentifier": "r0"})
	o.Dispatch(logger, engine.MsgVisitProposed, map[string]interface{}{"location": "http://example.com/two", "action": "replace"})
	o.Dispatch(logger, engine.MsgVisitStarted, map[string]interface{}{"identifier": "v1", "hasCachedSnapshot": true})
	o.Dispatch(logger, engine.MsgVisitRequestStarted, map[string]interface{}{"identifier": "v1"})
	o.Dispatch(logger, engine.MsgVisitRequestFailed, map[string]interface{}{"identifier": "v1", "statusCode": float64(404)})
	o.Dispatch(logger, engine.MsgVisitRequestFailed, map[string]interface{}{"identifier": "v1", "statusCode": int64(500)})
	o.Dispatch(logger, engine.MsgVisitRequestFailed, map[string]interface{}{"identifier": "v1"})
	o.Dispatch(logger, engine.MsgVisitRequestFinished, map[string]interface{}{"identifier": "v1"})
	o.Dispatch(logger, engine.MsgVisitRendered, map[string]interface{}{"identifier": "v1"})
	o.Dispatch(logger, engine.MsgVisitCompleted, map[string]interface{}{"identifier": "v1", "restorationIdentifier": "r1"})
	o.Dispatch(logger, "somethingElse", map[string]interface{}{"identifier": "v1"})

	assert.Equal(t, []string{
		"loaded r0",
		"proposed http://example.com/two replace",
		"started v1 true",
		"request started v1",
		"request failed v1 404",
		"request failed v1 500",
		"request failed v1 0",
		"request finished v1",
		"rendered v1",
		"completed v1 r1",
	}, rec.events)
}

func TestDispatchWithoutObservers(t *testing.T) {
	o := &engine.Observers{}
	o.Dispatch(zerolog.Nop(), engine.MsgPageLoaded, nil)
	o.Dispatch(zerolog.Nop(), engine.MsgVisitStarted, map[string]interface{}{"identifier": "v1"})
	o.SetPageLoadObserver(nil)
	assert.Nil(t, o.PageLoad)
}
