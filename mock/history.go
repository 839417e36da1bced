package mock

import (
	"gitlab.com/visitkit/visitk"
)

// History keeps visits in memory
type History struct {
	Records      []*visitk.VisitRecord
	Restorations map[string]string

	AddVisitFn     func(record *visitk.VisitRecord) error
	AddVisitCalled bool
}

func MakeMockHistory() *History {
	h := &History{
		Records:      make([]*visitk.VisitRecord, 0),
		Restorations: make(map[string]string),
	}
	h.AddVisitFn = func(record *visitk.VisitRecord) error {
		h.Records = append(h.Records, record.Copy())
		return nil
	}
	return h
}

func (h *History) AddVisit(record *visitk.VisitRecord) error {
	h.AddVisitCalled = true
	return h.AddVisitFn(record)
}

func (h *History) SetRestorationIdentifier(location, restorationIdentifier string) error {
	if restorationIdentifier != "" {
		h.Restorations[location] = restorationIdentifier
	}
	return nil
}

func (h *History) RestorationIdentifier(location string) (string, error) {
	return h.Restorations[location], nil
}
