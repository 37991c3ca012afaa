package scenario_test

import (
	"bytes"
	"math/rand"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fundsim/fund"
	"github.com/sarchlab/fundsim/scenario"
)

var _ = Describe("Scenario", func() {
	var s scenario.Scenario

	BeforeEach(func() {
		s = scenario.Default()
	})

	It("should be valid by default", func() {
		Expect(s.Validate()).To(Succeed())
	})

	It("should populate founders before advisors", func() {
		f, err := s.Populate(rand.New(rand.NewSource(1)))
		Expect(err).NotTo(HaveOccurred())

		Expect(f.Name).To(Equal("A* Fund"))
		Expect(f.TotalValue).To(Equal(1_000_000.0))
		Expect(f.NumStartups()).To(Equal(3))
		Expect(f.NumMembers()).To(Equal(9))

		names := make([]string, 0)
		for _, m := range f.Members() {
			names = append(names, m.Name)
			Expect(m.Performance).To(BeNumerically(">=", 0.8))
			Expect(m.Performance).To(BeNumerically("<", 1.2))
		}
		Expect(names).To(Equal([]string{
			"Founder_0", "Founder_1", "Founder_2", "Founder_3",
			"Founder_4", "Founder_5",
			"Advisor_0", "Advisor_1", "Advisor_2",
		}))

		startup2, err := f.StartupByName("Startup2")
		Expect(err).NotTo(HaveOccurred())
		Expect(startup2.StartDate).To(Equal(s.Date(60)))
		Expect(startup2.Founders).To(Equal([]fund.MemberID{2, 3}))

		founder, _ := f.Member(2)
		Expect(founder.JoinDate).To(Equal(s.Date(60)))
		Expect(founder.Role).To(Equal(fund.RoleFounder))

		advisor, _ := f.Member(8)
		Expect(advisor.JoinDate).To(Equal(s.Epoch))
		Expect(advisor.Role).To(Equal(fund.RoleAdvisor))
	})

	It("should sample the same multipliers for the same seed", func() {
		f1, _ := s.Populate(rand.New(rand.NewSource(7)))
		f2, _ := s.Populate(rand.New(rand.NewSource(7)))

		for i, m := range f1.Members() {
			Expect(f2.Members()[i].Performance).To(Equal(m.Performance))
		}
	})

	DescribeTable("should reject invalid scenarios",
		func(mutate func(s *scenario.Scenario)) {
			mutate(&s)
			Expect(s.Validate()).To(MatchError(scenario.ErrInvalidScenario))

			_, err := s.Populate(rand.New(rand.NewSource(1)))
			Expect(err).To(MatchError(scenario.ErrInvalidScenario))
		},
		Entry("no fund name", func(s *scenario.Scenario) {
			s.FundName = ""
		}),
		Entry("no members", func(s *scenario.Scenario) {
			s.Startups = nil
			s.Advisors = nil
			s.Schedule = nil
		}),
		Entry("duplicated startup", func(s *scenario.Scenario) {
			s.Startups[1].Name = "Startup1"
		}),
		Entry("startup without founders", func(s *scenario.Scenario) {
			s.Startups[0].Founders = nil
		}),
		Entry("unknown kind", func(s *scenario.Scenario) {
			s.Schedule[0].Kind = "merge"
		}),
		Entry("unknown startup", func(s *scenario.Scenario) {
			s.Schedule[0].Startup = "Startup9"
		}),
		Entry("transition before the startup is created",
			func(s *scenario.Scenario) {
				s.Schedule[0].Startup = "Startup4"
			}),
		Entry("new entrant with an existing name", func(s *scenario.Scenario) {
			s.Schedule[2].Startup = "Startup3"
		}),
		Entry("negative day", func(s *scenario.Scenario) {
			s.Schedule[0].Day = -1
		}),
		Entry("negative acquisition value", func(s *scenario.Scenario) {
			s.Schedule[1].Value = -5
		}),
	)

	It("should allow transitions on startups created by earlier entries",
		func() {
			s.Schedule = append(s.Schedule, scenario.Entry{
				Day: 500, Kind: scenario.KindFail, Startup: "Startup4",
			})

			Expect(s.Validate()).To(Succeed())
		})

	Context("YAML", func() {
		It("should load what it dumps", func() {
			buf := new(bytes.Buffer)
			Expect(s.Dump(buf)).To(Succeed())

			loaded, err := scenario.Load(buf)

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Epoch.Equal(s.Epoch)).To(BeTrue())
			loaded.Epoch = s.Epoch
			Expect(loaded).To(Equal(s))
		})

		It("should load a hand-written scenario", func() {
			doc := `
fund_name: Seed Fund
initial_value: 250000
epoch: 2024-06-01
startups:
  - name: Acme
    start_day: 0
    founders: [Ann, Bob]
advisors:
  - name: Carol
    join_day: 10
schedule:
  - day: 90
    kind: acquire
    startup: Acme
    value: 100000
`
			loaded, err := scenario.Load(strings.NewReader(doc))

			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.FundName).To(Equal("Seed Fund"))
			Expect(loaded.Epoch.Year()).To(Equal(2024))
			Expect(loaded.Startups[0].Founders).To(Equal([]string{"Ann", "Bob"}))
			Expect(loaded.Advisors[0].JoinDay).To(Equal(10))
			Expect(loaded.Schedule[0].Kind).To(Equal(scenario.KindAcquire))
			Expect(loaded.Schedule[0].Value).To(Equal(100000.0))
		})

		It("should reject unknown fields", func() {
			doc := "fund_name: X\nmanagers: []\n"

			_, err := scenario.Load(strings.NewReader(doc))

			Expect(err).To(HaveOccurred())
		})

		It("should validate what it loads", func() {
			doc := "fund_name: X\n"

			_, err := scenario.Load(strings.NewReader(doc))

			Expect(err).To(MatchError(scenario.ErrInvalidScenario))
		})
	})
})
