package announcer

import (
	"context"
	"treasury-node/lib/logger"
	agg "treasury-node/modules/aggregate"
	"treasury-node/modules/config"
	"treasury-node/modules/treasury"

	"github.com/robfig/cron/v3"

	"github.com/chebyrash/promise"
)

// ===== types =====

// announcerManager periodically surfaces records still awaiting quorum so
// operators notice stalled disbursements and proposals.
type announcerManager struct {
	conf *config.Config[announcerConfig]
	ts   treasury.TreasurySystem
	cron *cron.Cron
	log  logger.Logger
	stop chan struct{}
}

// ===== interface assertions =====

var _ agg.Plugin = &announcerManager{}

// ===== constructor =====

func New(ts treasury.TreasurySystem, conf *config.Config[announcerConfig], log logger.Logger) *announcerManager {
	return &announcerManager{
		cron: cron.New(),
		conf: conf,
		ts:   ts,
		log:  log,
		stop: make(chan struct{}),
	}
}

// ===== implementing plugin interface =====

func (a *announcerManager) Init() error {
	return nil
}

func (a *announcerManager) task(ctx context.Context) {
	quorum := a.ts.Quorum()
	totalWeight := a.ts.TotalWeight()

	for _, record := range a.ts.PendingActions() {
		a.log.Debug("pending action", record.Index, record.Cid,
			"approvals", record.Approvals.Count, "weight", record.Approvals.Weight,
			"passes", treasury.QuorumPasses(record.Approvals, totalWeight, quorum))
	}
	for _, record := range a.ts.PendingProposals() {
		a.log.Debug("pending proposal", record.Index, record.Kind,
			"approvals", record.Approvals.Count, "weight", record.Approvals.Weight,
			"passes", treasury.QuorumPasses(record.Approvals, totalWeight, quorum))
	}
}

func (a *announcerManager) Start() *promise.Promise[any] {
	return promise.New(func(resolve func(any), reject func(error)) {
		// create a ctx that cancels when the stop chan is closed
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-a.stop
			cancel()
		}()

		// run once immediately
		go a.task(ctx)

		_, err := a.cron.AddFunc(a.conf.Get().Schedule, func() {
			// check if stop signal has been received before running the task
			select {
			case <-a.stop:
				return
			default:
				go a.task(ctx)
			}
		})
		if err != nil {
			reject(err)
			return
		}
		a.cron.Start()
		resolve(nil)
	})
}

func (a *announcerManager) Stop() error {
	// safely close the stop channel
	select {
	case <-a.stop:
		// do nothing, already stopped
	default:
		close(a.stop)
	}
	a.cron.Stop()
	return nil
}
