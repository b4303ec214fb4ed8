package openkit

import "github.com/Dynatrace/openkit-go/objects"

// nullSession is returned by CreateSession when the host configured
// DataCollectionLevel Off: every call is a no-op that preserves the Session
// shape, per spec §9's "keep as polymorphic variants ... do not branch
// inside hot paths on capture flag".
type nullSession struct{}

var _ Session = nullSession{}

func (nullSession) IdentifyUser(string)                 {}
func (nullSession) ReportCrash(string, string, string)  {}
func (nullSession) SendEvent(string, map[string]any)    {}
func (nullSession) SendBizEvent(string, map[string]any) {}

func (nullSession) EnterAction(string) RootAction { return objects.NullAction{} }

func (nullSession) TraceWebRequest(string) WebRequestTracer {
	return objects.NullWebRequestTracer{}
}

func (nullSession) End() {}
