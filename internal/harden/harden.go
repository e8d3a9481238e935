package harden

import (
	"fmt"
	"time"

	"github.com/GriffinCanCode/AgentOS/harden/internal/id"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// Pass names reported to a Recorder.
const (
	PassRepair = "repair"
	PassFreeze = "freeze"
)

// Recorder receives run statistics. *monitoring.Metrics implements it.
type Recorder interface {
	RecordHardenRun(status string, duration time.Duration)
	RecordPass(pass string, nodes int)
	RecordRepairs(repaired, failed int)
}

type nopRecorder struct{}

func (nopRecorder) RecordHardenRun(string, time.Duration) {}
func (nopRecorder) RecordPass(string, int)                {}
func (nopRecorder) RecordRepairs(int, int)                {}

// Hardener repairs and deep-freezes the intrinsics of one goja runtime.
// It is bound to that runtime and, like the runtime, must not be used from
// more than one goroutine at a time.
type Hardener struct {
	vm       *goja.Runtime
	prims    *primitives
	walker   *Walker
	rules    []Rule
	logger   *zap.Logger
	recorder Recorder
	newID    func() string
}

// Option configures a Hardener.
type Option func(*Hardener)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Hardener) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRecorder sets the statistics sink.
func WithRecorder(r Recorder) Option {
	return func(h *Hardener) {
		if r != nil {
			h.recorder = r
		}
	}
}

// WithExtraDangerous adds accessor names that are replaced by an undefined
// data property during repair.
func WithExtraDangerous(names ...string) Option {
	return func(h *Hardener) {
		for _, name := range names {
			if name != "" {
				h.rules = append(h.rules, Rule{Name: name, Snapshot: SnapshotUndefined})
			}
		}
	}
}

// WithRules replaces the repair rule set.
func WithRules(rules []Rule) Option {
	return func(h *Hardener) {
		h.rules = append([]Rule(nil), rules...)
	}
}

// WithIDGenerator overrides how run IDs are produced.
func WithIDGenerator(fn func() string) Option {
	return func(h *Hardener) {
		if fn != nil {
			h.newID = fn
		}
	}
}

// New captures the reflective primitives of vm. Call it before any untrusted
// code has run in the realm.
func New(vm *goja.Runtime, opts ...Option) (*Hardener, error) {
	prims, err := capturePrimitives(vm)
	if err != nil {
		return nil, err
	}

	h := &Hardener{
		vm:       vm,
		prims:    prims,
		walker:   &Walker{prims: prims},
		rules:    append([]Rule(nil), DefaultRules...),
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		newID:    func() string { return id.NewRunID().String() },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Harden repairs then deep-freezes every object reachable from intrinsics.
// The intrinsic objects are changed in place; the table itself is only read.
//
// A non-nil error is a *TraversalError or *FreezeError (or a staging error)
// and means the graph may be only partly hardened. Repair failures do not
// fail the run; they are reported through Report.RepairErr.
//
// Calling Harden again on the same table is safe and changes nothing.
func (h *Hardener) Harden(intrinsics Intrinsics) (*Report, error) {
	start := time.Now()
	report := &Report{RunID: h.newID(), Intrinsics: len(intrinsics)}
	log := h.logger.With(zap.String("run_id", report.RunID))

	carrier, err := h.stage(intrinsics)
	if err != nil {
		return h.finish(log, report, start, err)
	}
	if err := h.run(carrier, report, log); err != nil {
		return h.finish(log, report, start, err)
	}
	return h.finish(log, report, start, nil)
}

// stage copies every entry onto a fresh prototype-less carrier so the
// passes have a single root that is itself never frozen.
func (h *Hardener) stage(intrinsics Intrinsics) (*goja.Object, error) {
	carrier := h.vm.NewObject()
	if err := carrier.SetPrototype(nil); err != nil {
		return nil, fmt.Errorf("harden: stage carrier: %w", err)
	}
	for _, name := range intrinsics.Names() {
		obj := intrinsics[name]
		if obj == nil {
			return nil, fmt.Errorf("harden: intrinsic %q is nil", name)
		}
		if err := carrier.DefineDataProperty(name, obj, goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_TRUE); err != nil {
			return nil, fmt.Errorf("harden: stage intrinsic %q: %w", name, err)
		}
	}
	return carrier, nil
}

// run executes the repair pass to completion before the freeze pass starts.
func (h *Hardener) run(carrier *goja.Object, report *Report, log *zap.Logger) error {
	rep := newRepairer(h.prims, h.rules)
	n, err := h.walker.Walk(carrier, except(carrier, rep.visit))
	report.Repaired = rep.repaired
	report.RepairErr = rep.errs
	h.recorder.RecordPass(PassRepair, nodes(n))
	h.recorder.RecordRepairs(len(rep.repaired), len(report.RepairFailures()))
	if err != nil {
		return err
	}
	for _, failure := range report.RepairFailures() {
		log.Warn("Repair failed", zap.Error(failure))
	}
	log.Debug("Repair pass complete",
		zap.Int("nodes", nodes(n)),
		zap.Strings("repaired", rep.repaired))

	frz := &freezer{prims: h.prims}
	n, err = h.walker.Walk(carrier, except(carrier, frz.visit))
	report.Visited = nodes(n)
	report.Frozen = frz.frozen
	report.AlreadyFrozen = frz.alreadyFrozen
	h.recorder.RecordPass(PassFreeze, nodes(n))
	if err != nil {
		return err
	}
	log.Debug("Freeze pass complete",
		zap.Int("nodes", report.Visited),
		zap.Int("frozen", report.Frozen),
		zap.Int("already_frozen", report.AlreadyFrozen))

	return nil
}

func (h *Hardener) finish(log *zap.Logger, report *Report, start time.Time, err error) (*Report, error) {
	report.Duration = time.Since(start)
	if err != nil {
		h.recorder.RecordHardenRun("error", report.Duration)
		log.Error("Hardening failed", zap.Error(err), zap.Duration("duration", report.Duration))
		return report, err
	}

	h.recorder.RecordHardenRun("success", report.Duration)
	log.Info("Intrinsics hardened",
		zap.Int("intrinsics", report.Intrinsics),
		zap.Int("nodes", report.Visited),
		zap.Int("frozen", report.Frozen),
		zap.Int("already_frozen", report.AlreadyFrozen),
		zap.Int("repaired", len(report.Repaired)),
		zap.Int("repair_failures", len(report.RepairFailures())),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// except wraps visit so that skip is walked through but never visited.
func except(skip *goja.Object, visit Visitor) Visitor {
	return func(node Node) error {
		if node.Object == skip {
			return nil
		}
		return visit(node)
	}
}

// nodes discounts the carrier from a walk count.
func nodes(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}
