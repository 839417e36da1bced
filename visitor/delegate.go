package visitor

// Delegate receives lifecycle notifications from a Visit. Each notification is
// delivered at most once per visit, except VisitDidRender which a script visit
// may deliver for a cached snapshot and again for the loaded response.
type Delegate interface {
	VisitDidInitializeWebView(v *Visit)
	VisitWillStart(v *Visit)
	VisitDidStart(v *Visit)
	VisitDidComplete(v *Visit)
	VisitDidFail(v *Visit)
	VisitWillLoadResponse(v *Visit)
	VisitDidRender(v *Visit)
	VisitRequestDidStart(v *Visit)
	VisitRequestDidFailWithError(v *Visit, err error)
	VisitRequestDidFinish(v *Visit)
}

type nopDelegate struct{}

func (nopDelegate) VisitDidInitializeWebView(v *Visit)               {}
func (nopDelegate) VisitWillStart(v *Visit)                          {}
func (nopDelegate) VisitDidStart(v *Visit)                           {}
func (nopDelegate) VisitDidComplete(v *Visit)                        {}
func (nopDelegate) VisitDidFail(v *Visit)                            {}
func (nopDelegate) VisitWillLoadResponse(v *Visit)                   {}
func (nopDelegate) VisitDidRender(v *Visit)                          {}
func (nopDelegate) VisitRequestDidStart(v *Visit)                    {}
func (nopDelegate) VisitRequestDidFailWithError(v *Visit, err error) {}
func (nopDelegate) VisitRequestDidFinish(v *Visit)                   {}
