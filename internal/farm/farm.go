package farm

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"gitlab.com/TitanInd/hashfarm/internal/ethash"
	"gitlab.com/TitanInd/hashfarm/internal/hashrate"
	"gitlab.com/TitanInd/hashfarm/internal/hwmon"
	"gitlab.com/TitanInd/hashfarm/internal/interfaces"
	"gitlab.com/TitanInd/hashfarm/internal/lib"
	"gitlab.com/TitanInd/hashfarm/internal/miner"
	"gitlab.com/TitanInd/hashfarm/internal/mining"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

var ErrUnsupportedDevice = errors.New("no backend for device")

// BackendFactory builds the backend driving a device
type BackendFactory func(index int, d miner.DeviceDescriptor) (miner.Backend, error)

type Farm struct {
	devices   map[string]miner.DeviceDescriptor
	backends  BackendFactory
	monitors  map[hwmon.Type]hwmon.Monitor
	pciMaps   map[hwmon.Type]map[string]int
	verifier  *ethash.Verifier
	strand    *Strand
	onFatal   func(err error)
	log       interfaces.ILogger
	minerLog  interfaces.ILogger
	random    func() uint64
	dagLimit  *semaphore.Weighted
	idleWait  time.Duration
	epochFunc miner.EpochContextFunc

	settingsMu sync.RWMutex
	settings   Settings

	// guards miners, current and assigned
	workMu   sync.Mutex
	miners   []*miner.Miner
	current  mining.WorkPackage
	assigned []mining.WorkPackage

	isMining *atomic.Bool
	paused   *atomic.Bool

	telemetryMu sync.RWMutex
	telemetry   Telemetry
	effective   *hashrate.Effective
	minerEff    []*hashrate.Effective

	callbackMu      sync.RWMutex
	onSolutionFound func(s mining.Solution)
	onMinerRestart  func()

	collectMu    sync.Mutex
	collectTimer *time.Timer
	running      bool
}

func NewFarm(
	devices map[string]miner.DeviceDescriptor,
	settings Settings,
	backends BackendFactory,
	monitors []hwmon.Monitor,
	verifier *ethash.Verifier,
	log interfaces.ILogger,
	minerLog interfaces.ILogger,
	onFatal func(err error),
) *Farm {
	settings.setDefaults()

	f := &Farm{
		devices:   devices,
		backends:  backends,
		monitors:  make(map[hwmon.Type]hwmon.Monitor, len(monitors)),
		pciMaps:   make(map[hwmon.Type]map[string]int, len(monitors)),
		verifier:  verifier,
		strand:    NewStrand(),
		onFatal:   onFatal,
		log:       log,
		minerLog:  minerLog,
		random:    rand.Uint64,
		settings:  settings,
		current:   mining.NewEmptyWorkPackage(),
		isMining:  atomic.NewBool(false),
		paused:    atomic.NewBool(false),
		telemetry: Telemetry{HwMon: settings.HwMon > 0, Start: time.Now()},
		effective: hashrate.NewEffective(),
	}
	if f.onFatal == nil {
		f.onFatal = func(err error) { f.log.Errorf("fatal: %s", err) }
	}
	if settings.SeqDAG {
		f.dagLimit = semaphore.NewWeighted(1)
	}
	for _, m := range monitors {
		f.monitors[m.Type()] = m
		f.pciMaps[m.Type()] = m.PciIndexMap()
	}
	return f
}

// Run executes the strand and the periodic data collection until ctx is done,
// then stops every device
func (f *Farm) Run(ctx context.Context) error {
	f.collectMu.Lock()
	f.running = true
	f.collectMu.Unlock()
	f.scheduleCollect()

	err := f.strand.Run(ctx)

	f.collectMu.Lock()
	f.running = false
	if f.collectTimer != nil {
		f.collectTimer.Stop()
	}
	f.collectMu.Unlock()

	f.Stop()
	return err
}

func (f *Farm) scheduleCollect() {
	f.collectMu.Lock()
	defer f.collectMu.Unlock()

	if !f.running {
		return
	}
	f.collectTimer = time.AfterFunc(f.settingsSnapshot().CollectInterval, func() {
		f.strand.Post(f.collectData)
	})
}

// Start creates the devices on first call and restarts them after Stop
func (f *Farm) Start() bool {
	f.workMu.Lock()
	defer f.workMu.Unlock()

	if f.isMining.Load() {
		return true
	}

	if len(f.miners) == 0 {
		f.createMiners()
	}
	if len(f.miners) == 0 {
		f.log.Warn("no usable devices")
		return false
	}

	for _, m := range f.miners {
		if err := m.Start(); err != nil {
			f.log.Errorf("failed to start %s: %s", m.Name(), err)
		}
	}
	f.isMining.Store(true)

	if !f.current.IsEmpty() {
		f.dispatch()
	}
	return true
}

func (f *Farm) createMiners() {
	ids := make([]string, 0, len(f.devices))
	for id := range f.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	settings := f.settingsSnapshot()
	cfg := miner.Config{
		Mode:            settings.Mode,
		DAGLimiter:      f.dagLimit,
		ExitOnError:     settings.ExitOnError,
		OnFatal:         f.onFatal,
		IdleWait:        f.idleWait,
		Submit:          f.SubmitProof,
		NewEpochContext: f.epochFunc,
	}

	accounts := make([]TelemetryAccount, 0, len(ids))
	effective := make([]*hashrate.Effective, 0, len(ids))

	for _, id := range ids {
		d := f.devices[id]
		if d.Subscription == miner.SubscriptionNone {
			continue
		}
		applyOverrides(&d, settings)

		index := len(f.miners)
		backend, err := f.backends(index, d)
		if err != nil {
			f.log.Warnf("skipping device %s: %s", id, err)
			continue
		}

		m := miner.NewMiner(index, d, backend, cfg, f.minerLog)
		if f.paused.Load() {
			m.Pause(miner.PauseDueToFarmPaused)
		}
		f.miners = append(f.miners, m)
		accounts = append(accounts, TelemetryAccount{Prefix: d.Subscription.Prefix()})
		effective = append(effective, hashrate.NewEffective())
		f.log.Infof("device %s (%s) bound to %s", id, d.BoardName, m.Name())
	}

	f.telemetryMu.Lock()
	f.telemetry.Miners = accounts
	f.telemetry.HwMon = settings.HwMon > 0
	f.minerEff = effective
	f.telemetryMu.Unlock()
}

func applyOverrides(d *miner.DeviceDescriptor, s Settings) {
	switch d.Subscription {
	case miner.SubscriptionCuda:
		if s.CuBlockSize > 0 {
			d.CuBlockSize = s.CuBlockSize
		}
		if s.CuStreams > 0 {
			d.CuStreamSize = s.CuStreams
		}
	case miner.SubscriptionOpenCL:
		if s.ClGroupSize > 0 {
			d.ClGroupSize = s.ClGroupSize
		}
		d.ClSplit = s.ClSplit
	}
}

// Stop terminates every device and drops them with their telemetry
func (f *Farm) Stop() {
	f.workMu.Lock()
	if !f.isMining.Load() && len(f.miners) == 0 {
		f.workMu.Unlock()
		return
	}
	miners := f.miners
	f.miners = nil
	f.assigned = nil
	f.isMining.Store(false)
	f.workMu.Unlock()

	for _, m := range miners {
		m.TriggerStop()
	}
	timeout := f.settingsSnapshot().StopTimeout
	for _, m := range miners {
		if !m.KillWithin(timeout) {
			f.log.Errorf("%s did not stop within %s, abandoning it", m.Name(), timeout)
		}
	}

	f.telemetryMu.Lock()
	f.telemetry.Miners = nil
	f.telemetry.Farm.Hashrate = 0
	f.minerEff = nil
	f.telemetryMu.Unlock()

	if len(miners) > 0 {
		f.log.Infof("stopped %d devices", len(miners))
	}
}

func (f *Farm) IsMining() bool {
	return f.isMining.Load()
}

// SetWork partitions the nonce space of w and hands a segment to every device
func (f *Farm) SetWork(w mining.WorkPackage) {
	f.workMu.Lock()
	defer f.workMu.Unlock()

	f.current = w
	f.dispatch()
}

func (f *Farm) Work() mining.WorkPackage {
	f.workMu.Lock()
	defer f.workMu.Unlock()
	return f.current
}

// dispatch requires workMu
func (f *Farm) dispatch() {
	if len(f.miners) == 0 {
		return
	}

	plan, err := PlanNonces(len(f.miners), f.Nonce(), f.current, f.random)
	if err != nil {
		f.log.Warnf("nonce prefix ignored: %s", err)
		plan, _ = PlanNonces(len(f.miners), "", f.current, f.random)
	}

	f.assigned = make([]mining.WorkPackage, len(f.miners))
	for i, m := range f.miners {
		w := f.current
		w.StartNonce = plan.Start(i)
		f.assigned[i] = w
		m.SetWork(w)
	}
}

func (f *Farm) Pause() {
	f.workMu.Lock()
	defer f.workMu.Unlock()

	f.paused.Store(true)
	for _, m := range f.miners {
		m.Pause(miner.PauseDueToFarmPaused)
	}
}

func (f *Farm) Resume() {
	f.workMu.Lock()
	defer f.workMu.Unlock()

	f.paused.Store(false)
	for i := range f.miners {
		f.resumeLocked(i, miner.PauseDueToFarmPaused)
	}
}

func (f *Farm) Paused() bool {
	return f.paused.Load()
}

// PauseMiner pauses a single device on behalf of the API
func (f *Farm) PauseMiner(index int) bool {
	m, ok := f.GetMiner(index)
	if !ok {
		return false
	}
	m.Pause(miner.PauseDueToAPIRequest)
	return true
}

func (f *Farm) ResumeMiner(index int) bool {
	return f.resumeMiner(index, miner.PauseDueToAPIRequest)
}

func (f *Farm) resumeMiner(index int, reason miner.PauseReason) bool {
	f.workMu.Lock()
	defer f.workMu.Unlock()
	return f.resumeLocked(index, reason)
}

// resumeLocked lifts reason and hands the device its segment back once no
// other reason holds it
func (f *Farm) resumeLocked(index int, reason miner.PauseReason) bool {
	if index < 0 || index >= len(f.miners) {
		return false
	}
	m := f.miners[index]
	m.Resume(reason)
	if !m.Paused() && index < len(f.assigned) {
		m.SetWork(f.assigned[index])
	}
	return true
}

// Restart asks the application to restart mining
func (f *Farm) Restart() {
	f.callbackMu.RLock()
	cb := f.onMinerRestart
	f.callbackMu.RUnlock()

	if cb != nil {
		cb()
	}
}

func (f *Farm) RestartAsync() {
	f.strand.Post(f.Restart)
}

func (f *Farm) OnSolutionFound(cb func(s mining.Solution)) {
	f.callbackMu.Lock()
	defer f.callbackMu.Unlock()
	f.onSolutionFound = cb
}

func (f *Farm) OnMinerRestart(cb func()) {
	f.callbackMu.Lock()
	defer f.callbackMu.Unlock()
	f.onMinerRestart = cb
}

func (f *Farm) GetMiners() []*miner.Miner {
	f.workMu.Lock()
	defer f.workMu.Unlock()
	return append([]*miner.Miner(nil), f.miners...)
}

func (f *Farm) GetMiner(index int) (*miner.Miner, bool) {
	f.workMu.Lock()
	defer f.workMu.Unlock()

	if index < 0 || index >= len(f.miners) {
		return nil, false
	}
	return f.miners[index], true
}

func (f *Farm) MinersCount() int {
	f.workMu.Lock()
	defer f.workMu.Unlock()
	return len(f.miners)
}

// HashRate is the farm hash rate of the last collection in hashes per second
func (f *Farm) HashRate() float64 {
	f.telemetryMu.RLock()
	defer f.telemetryMu.RUnlock()
	return f.telemetry.Farm.Hashrate
}

// AccountSolution records the pool verdict on a solution of device index
func (f *Farm) AccountSolution(index int, outcome mining.SolutionOutcome) {
	now := time.Now()

	f.telemetryMu.Lock()
	defer f.telemetryMu.Unlock()

	f.telemetry.Farm.Solutions.account(outcome, now)
	if index >= 0 && index < len(f.telemetry.Miners) {
		f.telemetry.Miners[index].Solutions.account(outcome, now)
	}
}

func (f *Farm) GetSolutions() SolutionAccount {
	f.telemetryMu.RLock()
	defer f.telemetryMu.RUnlock()
	return f.telemetry.Farm.Solutions
}

func (f *Farm) GetSolutionsFor(index int) SolutionAccount {
	f.telemetryMu.RLock()
	defer f.telemetryMu.RUnlock()

	if index < 0 || index >= len(f.telemetry.Miners) {
		return SolutionAccount{}
	}
	return f.telemetry.Miners[index].Solutions
}

// Telemetry returns a copy of the last collected state
func (f *Farm) Telemetry() Telemetry {
	f.telemetryMu.RLock()
	defer f.telemetryMu.RUnlock()

	t := f.telemetry.clone()
	t.Farm.setEffective(f.effective)
	for i := range t.Miners {
		if i < len(f.minerEff) {
			t.Miners[i].setEffective(f.minerEff[i])
		}
	}
	return t
}

func (f *Farm) settingsSnapshot() Settings {
	f.settingsMu.RLock()
	defer f.settingsMu.RUnlock()
	return f.settings
}

func (f *Farm) Settings() Settings {
	return f.settingsSnapshot()
}

// SetTStartTStop updates the overheat thresholds, tstop 0 disables the policy
func (f *Farm) SetTStartTStop(tstart, tstop uint) error {
	if err := ValidateThresholds(tstart, tstop); err != nil {
		return err
	}

	f.settingsMu.Lock()
	f.settings.TempStart = tstart
	f.settings.TempStop = tstop
	if tstop != 0 && f.settings.HwMon == 0 {
		f.settings.HwMon = 1
	}
	hwmonOn := f.settings.HwMon > 0
	f.settingsMu.Unlock()

	f.telemetryMu.Lock()
	f.telemetry.HwMon = hwmonOn
	f.telemetryMu.Unlock()
	return nil
}

func (f *Farm) TStart() uint {
	return f.settingsSnapshot().TempStart
}

func (f *Farm) TStop() uint {
	return f.settingsSnapshot().TempStop
}

// SetNonce sets the user nonce prefix, applied from the next SetWork
func (f *Farm) SetNonce(prefix string) error {
	if prefix != "" {
		if _, err := parseNoncePrefix(prefix); err != nil {
			return err
		}
	}
	f.settingsMu.Lock()
	defer f.settingsMu.Unlock()
	f.settings.Nonce = prefix
	return nil
}

func (f *Farm) Nonce() string {
	return f.settingsSnapshot().Nonce
}

// SubmitProof queues a device candidate for verification on the strand
func (f *Farm) SubmitProof(s mining.Solution) {
	f.strand.Post(func() {
		f.submitProof(s)
	})
}

func (f *Farm) submitProof(s mining.Solution) {
	r := f.verifier.Eval(s.Work.Epoch, s.Work.Header, s.Nonce)
	if !mining.MeetsBoundary(r.Value, s.Work.Boundary) {
		f.AccountSolution(s.MinerIndex, mining.Failed)
		f.log.Warnf("GPU %d gave incorrect result. Lower overclocking values if it happens frequently.", s.MinerIndex)
		return
	}
	s.MixHash = r.MixHash

	f.callbackMu.RLock()
	cb := f.onSolutionFound
	f.callbackMu.RUnlock()
	if cb != nil {
		cb(s)
	}

	difficulty := mining.DifficultyFromTarget(s.Work.Boundary)
	f.effective.OnSolution(difficulty)
	f.telemetryMu.RLock()
	if s.MinerIndex >= 0 && s.MinerIndex < len(f.minerEff) {
		f.minerEff[s.MinerIndex].OnSolution(difficulty)
	}
	f.telemetryMu.RUnlock()

	f.log.Infof("job %s solution from device %d, difficulty %s",
		s.Work.Job, s.MinerIndex, lib.FormatHashes(mining.DifficultyFromTarget(r.Value)))
}
