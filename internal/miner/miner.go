package miner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
	"gitlab.com/TitanInd/hashfarm/internal/worker"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

const DefaultIdleWait = 3 * time.Second

// SubmitFunc receives every candidate found by a device
type SubmitFunc func(s mining.Solution)

// EpochContextFunc builds the context of an epoch, ethash.NewEpochContext by default
type EpochContextFunc func(epoch int, mode ethash.Mode) *ethash.EpochContext

type Config struct {
	Mode            ethash.Mode
	DAGLimiter      *semaphore.Weighted // set to initialize one device at a time
	ExitOnError     bool
	OnFatal         func(err error)
	IdleWait        time.Duration
	Submit          SubmitFunc
	NewEpochContext EpochContextFunc
}

// Miner is a single mining device: it owns the device work package, pause
// reasons and hash rate, and runs the backend on its own goroutine
type Miner struct {
	index      int
	name       string
	descriptor DeviceDescriptor
	backend    Backend
	cfg        Config
	worker     *worker.Worker
	log        interfaces.ILogger

	pause   PauseState
	workMu  sync.Mutex
	work    mining.WorkPackage
	newWork chan struct{}

	hwmonMu sync.Mutex
	hwmon   hwmon.Info

	hashRate       *atomic.Float64
	hashRateUpdate *atomic.Bool
	hashTime       time.Time
	groupCount     uint64

	responded   *atomic.Bool
	initialized *atomic.Bool
	epoch       *atomic.Int32
	epochCtx    *ethash.EpochContext
}

func NewMiner(index int, descriptor DeviceDescriptor, backend Backend, cfg Config, log interfaces.ILogger) *Miner {
	if cfg.IdleWait == 0 {
		cfg.IdleWait = DefaultIdleWait
	}
	if cfg.NewEpochContext == nil {
		cfg.NewEpochContext = ethash.NewEpochContext
	}
	if cfg.Submit == nil {
		cfg.Submit = func(mining.Solution) {}
	}

	name := fmt.Sprintf("%s%d", descriptor.Subscription.Prefix(), index)
	m := &Miner{
		index:          index,
		name:           name,
		descriptor:     descriptor,
		backend:        backend,
		cfg:            cfg,
		log:            log.Named(name),
		work:           mining.NewEmptyWorkPackage(),
		newWork:        make(chan struct{}, 1),
		hwmon:          descriptor.HwmonInfo(),
		hashRate:       atomic.NewFloat64(0),
		hashRateUpdate: atomic.NewBool(false),
		hashTime:       time.Now(),
		responded:      atomic.NewBool(true),
		initialized:    atomic.NewBool(false),
		epoch:          atomic.NewInt32(-1),
	}
	m.worker = worker.NewWorker(name, m.workLoop, cfg.ExitOnError, cfg.OnFatal, m.log)
	return m
}

func (m *Miner) Index() int {
	return m.index
}

// Name is the telemetry label, e.g. cp0
func (m *Miner) Name() string {
	return m.name
}

func (m *Miner) Descriptor() DeviceDescriptor {
	return m.descriptor
}

// SetWork stores the package the device should mine. A paused device keeps
// the package void
func (m *Miner) SetWork(w mining.WorkPackage) {
	m.pause.Do(func(flags *PauseFlags) {
		if flags.Any() {
			w.Void()
		}
		m.workMu.Lock()
		m.work = w
		m.workMu.Unlock()
	})
	m.kick()
}

func (m *Miner) Work() mining.WorkPackage {
	m.workMu.Lock()
	defer m.workMu.Unlock()
	return m.work
}

// Pause adds reason to the pause set and voids the current package
func (m *Miner) Pause(reason PauseReason) {
	m.pause.Do(func(flags *PauseFlags) {
		*flags = flags.With(reason)
		m.workMu.Lock()
		m.work.Void()
		m.workMu.Unlock()
	})
	m.log.Debugf("paused: %s", reason)
	m.kick()
}

// Resume removes reason only. Work is not restored until the next SetWork
func (m *Miner) Resume(reason PauseReason) {
	m.pause.Clear(reason)
}

func (m *Miner) Paused() bool {
	return m.pause.Any()
}

func (m *Miner) PauseTest(reason PauseReason) bool {
	return m.pause.Test(reason)
}

func (m *Miner) PausedString() string {
	return m.pause.String()
}

func (m *Miner) HwmonInfo() hwmon.Info {
	m.hwmonMu.Lock()
	defer m.hwmonMu.Unlock()
	return m.hwmon
}

func (m *Miner) SetHwmonDeviceIndex(i int) {
	m.hwmonMu.Lock()
	defer m.hwmonMu.Unlock()
	m.hwmon.Index = i
}

// Initialized reports whether the device holds a ready epoch
func (m *Miner) Initialized() bool {
	return m.initialized.Load()
}

// Epoch returns the initialized epoch or -1
func (m *Miner) Epoch() int {
	return int(m.epoch.Load())
}

// Responded marks progress of the device
func (m *Miner) Responded() {
	m.responded.Store(true)
}

// ArmHangCheck reports whether the device made no progress since the previous
// call and re-arms the check
func (m *Miner) ArmHangCheck() (hung bool) {
	return !m.responded.CAS(true, false)
}

// Start launches the device goroutine. Pauses caused by a failed epoch
// initialization are lifted so the epoch is retried
func (m *Miner) Start() error {
	m.Resume(PauseDueToInsufficientMemory)
	m.Resume(PauseDueToInitEpochError)
	return m.worker.Start()
}

func (m *Miner) TriggerStop() {
	m.worker.TriggerStop()
	m.kick()
}

func (m *Miner) Stop() {
	m.kick()
	m.worker.Stop()
}

func (m *Miner) Kill() {
	m.kick()
	m.worker.Kill()
}

// KillWithin is Kill giving up after timeout on a device that ignores cancellation
func (m *Miner) KillWithin(timeout time.Duration) bool {
	m.kick()
	return m.worker.KillWithin(timeout)
}

func (m *Miner) State() worker.State {
	return m.worker.State()
}

func (m *Miner) kick() {
	m.backend.Kick()
	select {
	case m.newWork <- struct{}{}:
	default:
	}
}

func (m *Miner) workLoop(ctx context.Context) error {
	if err := m.backend.InitDevice(m.descriptor); err != nil {
		return lib.WrapError(ErrInitDevice, err)
	}
	defer m.releaseEpoch()

	var (
		last  = mining.NewEmptyWorkPackage()
		nonce uint64
	)
	m.hashTime = time.Now()

	for !m.worker.ShouldStop() {
		current := m.Work()

		if current.IsEmpty() {
			m.Responded()
			m.waitWork(ctx)
			continue
		}

		if current.Epoch != last.Epoch {
			if !m.switchEpoch(ctx, current.Epoch) {
				return nil
			}
			// the package may have been replaced while the epoch was initializing
			last = mining.NewEmptyWorkPackage()
			last.Epoch = current.Epoch
			continue
		}

		if current.Header != last.Header || current.StartNonce != last.StartNonce {
			nonce = current.StartNonce
			last = current
		}

		res, err := m.backend.Search(ctx, current, nonce)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return lib.WrapError(ErrSearch, err)
		}
		nonce = res.NextNonce

		for _, c := range res.Candidates {
			m.log.Debugf("job %s solution found, nonce %#016x", current.Job, c.Nonce)
			m.cfg.Submit(mining.Solution{
				Nonce:      c.Nonce,
				MixHash:    c.MixHash,
				Work:       current,
				Timestamp:  time.Now(),
				MinerIndex: m.index,
			})
		}

		m.Responded()
		m.UpdateHashRate(1, res.Hashes)
	}
	return nil
}

func (m *Miner) waitWork(ctx context.Context) {
	t := time.NewTimer(m.cfg.IdleWait)
	defer t.Stop()

	select {
	case <-m.newWork:
	case <-t.C:
	case <-ctx.Done():
	}
}

func (m *Miner) switchEpoch(ctx context.Context, epoch int) bool {
	m.initialized.Store(false)
	start := time.Now()

	ec := m.cfg.NewEpochContext(epoch, m.cfg.Mode)

	if m.cfg.DAGLimiter != nil {
		if err := m.cfg.DAGLimiter.Acquire(ctx, 1); err != nil {
			ec.Release()
			return false
		}
		defer m.cfg.DAGLimiter.Release(1)
	}

	if err := m.backend.InitEpoch(ec); err != nil {
		reason := PauseDueToInitEpochError
		if errors.Is(err, ErrInsufficientMemory) {
			reason = PauseDueToInsufficientMemory
		}
		m.log.Errorf("epoch %d initialization failed: %s", epoch, err)
		m.Pause(reason)
		ec.Release()
		return false
	}

	m.Resume(PauseDueToInsufficientMemory)
	m.Resume(PauseDueToInitEpochError)

	m.releaseEpoch()
	m.epochCtx = ec
	m.epoch.Store(int32(epoch))
	m.initialized.Store(true)
	m.Responded()

	m.log.Infof("epoch %d initialized in %s, light cache %s, DAG %s",
		epoch, time.Since(start).Round(time.Millisecond), humanize.IBytes(ec.LightSize), humanize.IBytes(ec.DagSize))
	return true
}

func (m *Miner) releaseEpoch() {
	if m.epochCtx != nil {
		m.epochCtx.Release()
		m.epochCtx = nil
	}
	m.initialized.Store(false)
	m.epoch.Store(-1)
}
