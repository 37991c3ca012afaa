package monitoring_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fundsim/monitoring"
	"github.com/sarchlab/fundsim/simulation"
)

var _ = Describe("DayProgressHook", func() {
	It("should count the simulated days", func() {
		m := monitoring.NewMonitor()
		bar := m.CreateProgressBar("Days", 30)

		s, err := simulation.MakeBuilder().
			WithHorizon(30).
			WithHook(monitoring.NewDayProgressHook(bar)).
			Build()
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		status := bar.Status()
		Expect(status.Finished).To(Equal(uint64(30)))
		Expect(status.InProgress).To(BeZero())
	})
})
