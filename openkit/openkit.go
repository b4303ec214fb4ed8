// Package openkit is the public façade (spec C10): it wires the HTTP
// collaborator, beacon cache, eviction strategies, evictor task and sender
// task into one constructible unit and hands out Sessions bound to it.
//
// Construction follows main.go's documented startup sequence — config,
// logger, collaborators, background tasks, ready — compressed into one
// New call instead of main's separate steps.
package openkit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dynatrace/openkit-go/beacon"
	"github.com/Dynatrace/openkit-go/cache"
	"github.com/Dynatrace/openkit-go/eviction"
	"github.com/Dynatrace/openkit-go/evictor"
	"github.com/Dynatrace/openkit-go/httpclient"
	"github.com/Dynatrace/openkit-go/internal/metrics"
	"github.com/Dynatrace/openkit-go/logger"
	"github.com/Dynatrace/openkit-go/objects"
	"github.com/Dynatrace/openkit-go/openkitcfg"
	"github.com/Dynatrace/openkit-go/protocol"
	"github.com/Dynatrace/openkit-go/sender"
)

// Configuration is the host-supplied settings for one OpenKit instance.
type Configuration = openkitcfg.Configuration

// platformType identifies this module to the collector as a single
// server-side agent kind rather than one of a family of mobile/browser
// platforms, so unlike the rest of spec §6's Configuration fields it is not
// host-configurable.
const platformType = "1"

// OpenKit is the root façade: one instance owns one HTTP collaborator, one
// beacon cache, the background evictor (C5) and sender (C9) tasks, and every
// Session created against it.
type OpenKit struct {
	cfg   Configuration
	log   *logger.Logger
	clock func() int64

	cache     *cache.BeaconCache
	actionIDs *beacon.ActionIDSource
	evict     *evictor.Evictor
	senderCtx *sender.Context
	senderTsk *sender.Task
	metrics   *metrics.Metrics

	nextSessionID atomic.Int64

	mu       sync.Mutex
	sessions map[int64]*sessionImpl
}

// New validates cfg, wires every collaborator and starts the background
// evictor and sender tasks. The returned OpenKit is ready for CreateSession
// immediately; callers that need to know capture state before acting should
// call WaitForInit first.
func New(cfg Configuration) (*OpenKit, error) {
	if cfg.EndpointURL == "" {
		return nil, errors.New("openkit: EndpointURL is required")
	}
	if cfg.ApplicationID == "" {
		return nil, errors.New("openkit: ApplicationID is required")
	}

	log := cfg.Logger
	if log == nil {
		log = logger.New(logger.LevelWarn)
	}

	clock := func() int64 { return time.Now().UnixMilli() }

	httpCli, err := httpclient.New(httpclient.Config{
		Timeout:           cfg.RequestTimeout,
		TrustMode:         translateTrustMode(cfg.TrustMode),
		CustomVerify:      cfg.CustomVerify,
		RequestIntercept:  cfg.RequestIntercept,
		ResponseIntercept: cfg.ResponseIntercept,
	})
	if err != nil {
		return nil, fmt.Errorf("openkit: %w", err)
	}

	c := cache.New()
	m := metrics.New()

	timeStrategy := eviction.NewTimeStrategy(cfg.ResolvedMaxRecordAgeMs(), clock, func() bool { return true })
	timeStrategy.Metrics = m
	spaceStrategy := eviction.NewSpaceStrategy(cfg.ResolvedCacheLowerBytes(), cfg.ResolvedCacheUpperBytes())
	spaceStrategy.Metrics = m
	ev := evictor.New(c, timeStrategy, spaceStrategy, log)
	ev.Start()

	senderCfg := sender.Config{
		EndpointURL:       cfg.EndpointURL,
		ApplicationID:     cfg.ApplicationID,
		AgentVersion:      cfg.AgentVersion,
		PlatformType:      platformType,
		SendIntervalMs:    0,
		InitialRetryDelay: time.Second,
	}
	sctx := sender.NewContext(httpCli, c, senderCfg, log, clock)
	sctx.Drift = protocol.NewConfigDriftDetector()
	sctx.Metrics = m
	task := sender.NewTask(sctx)
	task.Start()

	k := &OpenKit{
		cfg:       cfg,
		log:       log,
		clock:     clock,
		cache:     c,
		actionIDs: beacon.NewActionIDSource(),
		evict:     ev,
		senderCtx: sctx,
		senderTsk: task,
		metrics:   m,
		sessions:  map[int64]*sessionImpl{},
	}
	return k, nil
}

// Metrics returns a point-in-time snapshot of this instance's counters
// (sessions created/ended, requests sent/failed, records evicted).
func (k *OpenKit) Metrics() metrics.Snapshot {
	return k.metrics.Snapshot()
}

func translateTrustMode(m openkitcfg.TrustMode) httpclient.TrustMode {
	switch m {
	case openkitcfg.TrustBlind:
		return httpclient.TrustBlind
	case openkitcfg.TrustCustom:
		return httpclient.TrustCustom
	default:
		return httpclient.TrustStrict
	}
}

// WaitForInit blocks until the sender's Initial state has completed (success
// or permanent shutdown) or ctx is done, returning whether capture state was
// determined successfully.
func (k *OpenKit) WaitForInit(ctx context.Context) bool {
	done := make(chan bool, 1)
	go func() { done <- k.senderCtx.WaitForInit(0) }()
	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		return false
	}
}

// IsInitialized reports whether the Initial state has already completed
// successfully, without blocking.
func (k *OpenKit) IsInitialized() bool {
	return k.senderCtx.IsInitialized()
}

// CreateSession builds a new Session bound to a fresh Beacon, registers it
// with the sender so its records eventually reach the collector, and
// returns it. If the host configured DataCollectionLevel Off, a no-op
// Session is returned instead and nothing is allocated against the cache.
func (k *OpenKit) CreateSession(clientIP string) Session {
	if k.cfg.DataCollectionLevel == openkitcfg.DataCollectionOff {
		return nullSession{}
	}

	id := k.nextSessionID.Add(1)
	now := k.clock()

	basic := beacon.BasicData{
		ApplicationID:     k.cfg.ApplicationID,
		DeviceID:          k.cfg.DeviceID,
		AgentVersion:      k.cfg.AgentVersion,
		PlatformType:      platformType,
		VisitStoreVersion: 1,
		ClientIP:          clientIP,
	}
	bc := beacon.New(id, now, basic, k.cache, k.clock, k.actionIDs, k.log)
	k.senderCtx.RegisterSession(&sender.SessionWrapper{ID: id, Beacon: bc})

	device := objects.DeviceInfo{
		AppVersion:      k.cfg.AgentVersion,
		OSName:          k.cfg.OSName,
		Manufacturer:    k.cfg.Manufacturer,
		ModelIdentifier: k.cfg.ModelID,
	}
	onEnd := func() {
		k.senderCtx.SessionFinished(id)
		k.metrics.IncrementSessionsEnded()
		k.mu.Lock()
		delete(k.sessions, id)
		k.mu.Unlock()
	}
	raw := objects.NewSession(id, clientIP, now, bc, device, onEnd)
	k.metrics.IncrementSessionsCreated()

	impl := &sessionImpl{
		session:    raw,
		clock:      k.clock,
		dataLevel:  k.cfg.DataCollectionLevel,
		crashLevel: k.cfg.CrashReportingLevel,
	}

	k.mu.Lock()
	k.sessions[id] = impl
	k.mu.Unlock()

	return impl
}

// Shutdown ends every still-open session, then stops the sender (flushing
// finished sessions one last time) and the evictor.
func (k *OpenKit) Shutdown() {
	k.mu.Lock()
	open := make([]*sessionImpl, 0, len(k.sessions))
	for _, s := range k.sessions {
		open = append(open, s)
	}
	k.mu.Unlock()

	for _, s := range open {
		s.End()
	}

	k.senderTsk.Stop()
	k.evict.Stop()
}
