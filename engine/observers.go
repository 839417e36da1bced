// Package engine holds what every web view engine shares: the observers a
// visit registers and the page message protocol the in-page bridge speaks.
package engine

import (
	"net/url"

	"github.com/rs/zerolog"
	"gitlab.com/visitkit/visitk"
)

// Page messages posted by the in-page bridge
const (
	MsgPageLoaded            = "pageLoaded"
	MsgVisitProposed         = "visitProposed"
	MsgVisitStarted          = "visitStarted"
	MsgVisitRequestStarted   = "visitRequestStarted"
	MsgVisitRequestCompleted = "visitRequestCompleted"
	MsgVisitRequestFailed    = "visitRequestFailed"
	MsgVisitRequestFinished  = "visitRequestFinished"
	MsgVisitRendered         = "visitRendered"
	MsgVisitCompleted        = "visitCompleted"
)

// Observers registered on a web view. Engines embed it to get the
// visitk.WebView observer setters.
type Observers struct {
	Navigation visitk.NavigationObserver
	PageLoad   visitk.PageLoadObserver
	Visit      visitk.VisitObserver
	Page       visitk.PageObserver
}

func (o *Observers) SetNavigationObserver(observer visitk.NavigationObserver) {
	o.Navigation = observer
}

func (o *Observers) SetPageLoadObserver(observer visitk.PageLoadObserver) {
	o.PageLoad = observer
}

func (o *Observers) SetVisitObserver(observer visitk.VisitObserver) {
	o.Visit = observer
}

func (o *Observers) SetPageObserver(observer visitk.PageObserver) {
	o.Page = observer
}

// Dispatch a page message to whichever observer wants it. Must be called on
// the engine's loop.
func (o *Observers) Dispatch(logger zerolog.Logger, name string, data map[string]interface{}) {
	identifier := StringValue(data, "identifier")
	logger.Debug().Str("message", name).Str("identifier", identifier).Msg("page message")

	switch name {
	case MsgPageLoaded:
		if o.PageLoad != nil {
			o.PageLoad.PageLoaded(StringValue(data, "restorationIdentifier"))
		}
		return
	case MsgVisitProposed:
		location, err := url.Parse(StringValue(data, "location"))
		if err != nil {
			logger.Warn().Err(err).Msg("page proposed an invalid location")
			return
		}
		if o.Page != nil {
			o.Page.VisitProposed(location, visitk.ParseAction(StringValue(data, "action")))
		}
		return
	}

	observer := o.Visit
	if observer == nil {
		return
	}

	switch name {
	case MsgVisitStarted:
		hasCachedSnapshot, _ := data["hasCachedSnapshot"].(bool)
		observer.DidStartVisit(identifier, hasCachedSnapshot)
	case MsgVisitRequestStarted:
		observer.DidStartRequest(identifier)
	case MsgVisitRequestCompleted:
		observer.DidCompleteRequest(identifier)
	case MsgVisitRequestFailed:
		observer.DidFailRequest(identifier, IntValue(data, "statusCode"))
	case MsgVisitRequestFinished:
		observer.DidFinishRequest(identifier)
	case MsgVisitRendered:
		observer.DidRender(identifier)
	case MsgVisitCompleted:
		observer.DidCompleteVisit(identifier, StringValue(data, "restorationIdentifier"))
	default:
		logger.Warn().Str("message", name).Msg("unknown page message")
	}
}

// StringValue of key, empty if missing or not a string
func StringValue(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

// IntValue of key. goja exports integers as int64, JSON decodes them as float64.
func IntValue(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return visitk.NoStatus
}
