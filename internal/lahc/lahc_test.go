package lahc

import (
	"context"
	"errors"
	"math/rand"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"lahcPMS/internal/biba"
	"lahcPMS/internal/logging"
	"lahcPMS/internal/opt"
	"lahcPMS/internal/pms"
)

type failingConstructor struct{}

func (failingConstructor) Build(*pms.Instance) (*pms.Solution, error) {
	return nil, biba.ErrNoInsertion
}

func newSolver(cfg Config, seed int64) *Solver {
	s, err := New(cfg, rand.New(rand.NewSource(seed)))
	Expect(err).NotTo(HaveOccurred())
	return s
}

func quickConfig() Config {
	cfg := DefaultConfig()
	cfg.TimeLimit = 10 * time.Second
	cfg.MaxIterations = 60
	cfg.NonImprovementLimit = 1000
	return cfg
}

var _ = Describe("Config", func() {
	It("accepts the defaults", func() {
		Expect(DefaultConfig().Validate()).To(Succeed())
		Expect(DefaultConfig().HistoryLength).To(Equal(30))
		Expect(DefaultConfig().NonImprovementLimit).To(Equal(1000))
	})

	DescribeTable("rejects invalid values",
		func(mutate func(*Config)) {
			cfg := DefaultConfig()
			mutate(&cfg)
			Expect(cfg.Validate()).NotTo(Succeed())
			_, err := New(cfg, rand.New(rand.NewSource(1)))
			Expect(err).To(HaveOccurred())
		},
		Entry("zero history", func(c *Config) { c.HistoryLength = 0 }),
		Entry("negative non-improvement limit", func(c *Config) { c.NonImprovementLimit = -1 }),
		Entry("negative time limit", func(c *Config) { c.TimeLimit = -time.Second }),
		Entry("negative iteration cap", func(c *Config) { c.MaxIterations = -5 }),
		Entry("zero local search passes", func(c *Config) { c.MaxLocalSearchPasses = 0 }),
	)

	It("derives the time budget from instance size", func() {
		inst := pms.PaperInstance()
		Expect(DefaultConfig().Budget(inst)).To(Equal(5 * time.Second))

		cfg := DefaultConfig()
		cfg.TimeLimit = 250 * time.Millisecond
		Expect(cfg.Budget(inst)).To(Equal(250 * time.Millisecond))
	})

	It("requires a random source", func() {
		_, err := New(DefaultConfig(), nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Solver", func() {
	var inst *pms.Instance

	BeforeEach(func() {
		inst = pms.RandomInstance(15, 3, 30, 10, 0.5, rand.New(rand.NewSource(11)))
	})

	It("returns a complete solution no worse than the initial one", func() {
		s := newSolver(quickConfig(), 5)
		s.Log = logging.NewTestLogger()

		res, err := s.Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Solution).NotTo(BeNil())
		Expect(res.Solution.Validate()).To(Succeed())
		Expect(res.Solution.IsComplete()).To(BeTrue())
		Expect(res.Makespan).To(Equal(res.Solution.Makespan()))
		Expect(res.Makespan).To(BeNumerically("<=", res.InitialMakespan))
		Expect(res.Improvement()).To(BeNumerically(">=", 0))
		Expect(res.Iterations).To(Equal(60))
		Expect(res.Meta["stopped"]).To(Equal("iterations"))
		Expect(res.Evaluations).To(BeNumerically(">", 0))
	})

	It("starts from the BIBA solution", func() {
		initial, err := biba.New().Build(inst)
		Expect(err).NotTo(HaveOccurred())

		cfg := quickConfig()
		cfg.MaxIterations = 1
		res, err := newSolver(cfg, 1).Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.InitialMakespan).To(Equal(initial.Makespan()))
	})

	It("keeps the best makespan non-increasing", func() {
		cfg := quickConfig()
		cfg.RecordTrace = true
		res, err := newSolver(cfg, 3).Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Trace).To(HaveLen(res.Iterations))
		prev := res.InitialMakespan
		for i, ms := range res.Trace {
			Expect(ms).To(BeNumerically("<=", prev), "iteration %d", i+1)
			prev = ms
		}
		Expect(prev).To(Equal(res.Makespan))
	})

	It("is reproducible for a fixed seed and iteration cap", func() {
		a, err := newSolver(quickConfig(), 42).Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())
		b, err := newSolver(quickConfig(), 42).Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())

		Expect(a.Makespan).To(Equal(b.Makespan))
		Expect(a.Solution.Assignment()).To(Equal(b.Solution.Assignment()))
		Expect(a.LastImprovement).To(Equal(b.LastImprovement))
	})

	It("stops after the non-improvement limit", func() {
		cfg := quickConfig()
		cfg.MaxIterations = 0
		cfg.NonImprovementLimit = 5
		res, err := newSolver(cfg, 7).Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Meta["stopped"]).To(Equal("non_improvement"))
		Expect(res.Iterations - res.LastImprovement).To(Equal(5))
	})

	It("does not iterate with a zero non-improvement limit", func() {
		cfg := quickConfig()
		cfg.NonImprovementLimit = 0
		res, err := newSolver(cfg, 7).Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iterations).To(BeZero())
		Expect(res.Makespan).To(Equal(res.InitialMakespan))
	})

	It("returns the best solution with the context error when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := newSolver(quickConfig(), 1).Solve(ctx, inst)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Solution).NotTo(BeNil())
		Expect(res.Solution.IsComplete()).To(BeTrue())
		Expect(res.Meta["stopped"]).To(Equal("context"))
	})

	It("stops when the progress hook declines", func() {
		s := newSolver(quickConfig(), 1)
		var seen []Progress
		s.Progress = func(p Progress) bool {
			seen = append(seen, p)
			return p.Iteration < 3
		}

		res, err := s.Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Iterations).To(Equal(3))
		Expect(seen).To(HaveLen(3))
		Expect(res.Meta["stopped"]).To(Equal("progress"))
		for _, p := range seen {
			Expect(p.Best).To(BeNumerically("<=", p.Current))
			Expect(p.Remaining).To(BeNumerically(">", 0))
		}
	})

	It("stops when the time budget is spent", func() {
		cfg := quickConfig()
		cfg.MaxIterations = 0
		cfg.NonImprovementLimit = 1 << 30
		cfg.TimeLimit = 50 * time.Millisecond
		res, err := newSolver(cfg, 2).Solve(context.Background(), inst)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Meta["stopped"]).To(Equal("time"))
		Expect(res.Duration).To(BeNumerically(">=", 50*time.Millisecond))
	})

	It("propagates construction failures", func() {
		s := newSolver(quickConfig(), 1)
		s.Heuristic = failingConstructor{}
		_, err := s.Solve(context.Background(), inst)
		Expect(err).To(MatchError(biba.ErrNoInsertion))
	})

	It("rejects a nil instance", func() {
		_, err := newSolver(quickConfig(), 1).Solve(context.Background(), nil)
		Expect(err).To(HaveOccurred())
	})

	It("solves the paper example", func() {
		var o opt.Optimizer = newSolver(quickConfig(), 9)
		res, err := o.Solve(context.Background(), pms.PaperInstance())
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Solution.TotalJobs()).To(Equal(5))
		Expect(res.Makespan).To(BeNumerically("<=", res.InitialMakespan))
	})
})
