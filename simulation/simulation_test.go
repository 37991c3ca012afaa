package simulation_test

import (
	"bytes"
	"errors"
	"log"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/fundsim/fund"
	"github.com/sarchlab/fundsim/history"
	"github.com/sarchlab/fundsim/scenario"
	"github.com/sarchlab/fundsim/sim"
	"github.com/sarchlab/fundsim/simulation"
)

type dayCounter struct {
	before int
}

func (h *dayCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos == sim.HookPosBeforeEvent {
		h.before++
	}
}

var _ = Describe("Simulation", func() {
	var (
		mockCtrl *gomock.Controller
		sink     *MockSink
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sink = NewMockSink(mockCtrl)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should have a unique ID", func() {
		s1, err := simulation.MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())
		s2, err := simulation.MakeBuilder().Build()
		Expect(err).NotTo(HaveOccurred())

		Expect(s1.ID()).NotTo(Equal(s2.ID()))
		Expect(s1.Horizon()).To(Equal(simulation.DefaultHorizon))
	})

	It("should record every day into the sinks and flush them", func() {
		days := []int{}
		sink.EXPECT().Record(gomock.Any()).
			DoAndReturn(func(s history.Snapshot) error {
				days = append(days, s.Day)
				return nil
			}).Times(5)
		sink.EXPECT().Flush().Return(nil)

		s, err := simulation.MakeBuilder().
			WithHorizon(5).
			WithSink(sink).
			Build()
		Expect(err).NotTo(HaveOccurred())

		result, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(days).To(Equal([]int{0, 1, 2, 3, 4}))
		Expect(result.FundValue).To(HaveLen(5))
		Expect(s.Buffers().Days()).To(Equal(5))
	})

	It("should date the days from the given epoch", func() {
		epoch := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		dates := []time.Time{}
		sink.EXPECT().Record(gomock.Any()).
			DoAndReturn(func(s history.Snapshot) error {
				dates = append(dates, s.Date)
				return nil
			}).Times(3)
		sink.EXPECT().Flush().Return(nil)

		s, err := simulation.MakeBuilder().
			WithHorizon(3).
			WithEpoch(epoch).
			WithSink(sink).
			Build()
		Expect(err).NotTo(HaveOccurred())

		result, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(dates).To(Equal([]time.Time{
			epoch, epoch.AddDate(0, 0, 1), epoch.AddDate(0, 0, 2),
		}))
		Expect(result.Members[0].JoinDate).To(Equal(epoch))
		Expect(result.Startups[1].StartDate).To(Equal(epoch.AddDate(0, 0, 60)))
	})

	It("should stop when a sink fails", func() {
		sink.EXPECT().Record(gomock.Any()).Return(nil).Times(2)
		sink.EXPECT().Record(gomock.Any()).Return(errors.New("disk full"))
		sink.EXPECT().Flush().Return(nil)

		s, _ := simulation.MakeBuilder().WithHorizon(10).WithSink(sink).Build()

		_, err := s.Run()

		Expect(err).To(MatchError(ContainSubstring("day 2: disk full")))
	})

	It("should report a failed flush", func() {
		sink.EXPECT().Record(gomock.Any()).Return(nil).AnyTimes()
		sink.EXPECT().Flush().Return(errors.New("closed"))

		s, _ := simulation.MakeBuilder().WithHorizon(3).WithSink(sink).Build()

		_, err := s.Run()

		Expect(err).To(MatchError(ContainSubstring("closed")))
	})

	It("should only run once", func() {
		s, _ := simulation.MakeBuilder().WithHorizon(1).Build()

		_, err := s.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(func() { _, _ = s.Run() }).To(Panic())
	})

	It("should reject a non-positive horizon", func() {
		Expect(func() {
			_, _ = simulation.MakeBuilder().WithHorizon(0).Build()
		}).To(Panic())
	})

	It("should reject a non-positive vesting period", func() {
		Expect(func() {
			_, _ = simulation.MakeBuilder().WithVestingPeriod(0).Build()
		}).To(Panic())
	})

	It("should reject an invalid scenario", func() {
		sc := scenario.Default()
		sc.FundName = ""

		_, err := simulation.MakeBuilder().WithScenario(sc).Build()

		Expect(err).To(MatchError(scenario.ErrInvalidScenario))
	})

	It("should stop at an invalid transition", func() {
		sc := scenario.Default()
		sc.Schedule = append(sc.Schedule,
			scenario.Entry{Day: 200, Kind: scenario.KindFail, Startup: "Startup1"})

		s, err := simulation.MakeBuilder().WithScenario(sc).Build()
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()

		Expect(err).To(MatchError(fund.ErrInvalidTransition))
		Expect(err).To(MatchError(ContainSubstring("day 200")))
		Expect(s.Buffers().Days()).To(Equal(200))
	})

	It("should invoke hooks around every event", func() {
		counter := &dayCounter{}

		s, _ := simulation.MakeBuilder().
			WithHorizon(200).
			WithHook(counter).
			Build()

		_, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(counter.before).To(Equal(201))
	})

	It("should log events", func() {
		buf := new(bytes.Buffer)

		s, _ := simulation.MakeBuilder().
			WithHorizon(2).
			WithEventLogger(log.New(buf, "", 0)).
			Build()

		_, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring("0, sim.TickEvent -> Allocator"))
		Expect(buf.String()).To(ContainSubstring("1, sim.TickEvent -> Allocator"))
	})

	It("should report lifecycle transitions to the logger", func() {
		buf := new(bytes.Buffer)

		s, _ := simulation.MakeBuilder().
			WithHorizon(400).
			WithLogger(log.New(buf, "", 0)).
			Build()

		_, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(ContainSubstring(
			"Day 365: New startup 'Startup4' added with 2 founders."))
	})
})
