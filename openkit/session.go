package openkit

import (
	"github.com/Dynatrace/openkit-go/objects"
	"github.com/Dynatrace/openkit-go/openkitcfg"
)

// RootAction and WebRequestTracer are the public surfaces package objects
// already exposes through ActionHandle/WebRequestTracerHandle; both the real
// and no-op implementations satisfy them, so callers never type-switch.
type (
	RootAction       = objects.ActionHandle
	Action           = objects.ActionHandle
	WebRequestTracer = objects.WebRequestTracerHandle
)

// Session is the public surface of one logical visit (spec C10, §6.1).
type Session interface {
	IdentifyUser(tag string)
	ReportCrash(name, reason, stacktrace string)
	SendEvent(name string, attrs map[string]any)
	SendBizEvent(eventType string, attrs map[string]any)
	EnterAction(name string) RootAction
	TraceWebRequest(rawURL string) WebRequestTracer
	End()
}

// sessionImpl wraps an objects.Session with the façade's clock and applies
// the host-configured data-collection/crash-reporting levels: a level below
// what a call requires turns it into a no-op rather than reaching the
// beacon, per spec §6's "Unspecified = defaults" and the original
// DataCollectionLevel/CrashReportingLevel semantics carried over from
// original_source (identify_user requires UserBehavior; crash reporting
// requires anything but Off).
type sessionImpl struct {
	session    *objects.Session
	clock      func() int64
	dataLevel  openkitcfg.DataCollectionLevel
	crashLevel openkitcfg.CrashReportingLevel
}

var _ Session = (*sessionImpl)(nil)

func (s *sessionImpl) IdentifyUser(tag string) {
	if s.dataLevel != openkitcfg.DataCollectionUserBehavior {
		return
	}
	s.session.IdentifyUser(tag)
}

func (s *sessionImpl) ReportCrash(name, reason, stacktrace string) {
	if s.crashLevel == openkitcfg.CrashReportingOff {
		return
	}
	s.session.ReportCrash(name, reason, stacktrace)
}

func (s *sessionImpl) SendEvent(name string, attrs map[string]any) {
	s.session.SendEvent(name, attrs, s.clock())
}

func (s *sessionImpl) SendBizEvent(eventType string, attrs map[string]any) {
	s.session.SendBizEvent(eventType, attrs, s.clock())
}

func (s *sessionImpl) EnterAction(name string) RootAction {
	return s.session.EnterAction(name, s.clock())
}

func (s *sessionImpl) TraceWebRequest(rawURL string) WebRequestTracer {
	return s.session.TraceWebRequest(rawURL, s.clock())
}

func (s *sessionImpl) End() {
	s.session.End(s.clock())
}
