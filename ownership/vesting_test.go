package ownership_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fundsim/ownership"
)

var _ = Describe("Vesting", func() {
	join := time.Date(2023, 3, 2, 0, 0, 0, 0, time.UTC)
	period := ownership.DefaultVestingPeriod

	It("should vest nothing on or before the join date", func() {
		for days := -400; days <= 0; days++ {
			now := join.AddDate(0, 0, days)
			Expect(ownership.Vesting(join, now, period)).To(BeZero())
		}
	})

	It("should vest fully after the vesting period", func() {
		for _, days := range []int{730, 731, 1000, 5000} {
			now := join.AddDate(0, 0, days)
			Expect(ownership.Vesting(join, now, period)).To(Equal(1.0))
		}
	})

	It("should vest linearly in between", func() {
		Expect(ownership.Vesting(join, join.AddDate(0, 0, 365), period)).
			To(Equal(0.5))
		Expect(ownership.Vesting(join, join.AddDate(0, 0, 73), period)).
			To(BeNumerically("~", 0.1, 1e-12))
	})

	It("should never decrease", func() {
		prev := 0.0
		for days := 0; days <= 800; days++ {
			v := ownership.Vesting(join, join.AddDate(0, 0, days), period)
			Expect(v).To(BeNumerically(">=", prev))
			Expect(v).To(BeNumerically("<=", 1))
			prev = v
		}
	})

	It("should only count whole days", func() {
		now := join.Add(36 * time.Hour)
		Expect(ownership.Vesting(join, now, period)).
			To(Equal(1.0 / float64(period)))

		before := join.Add(-12 * time.Hour)
		Expect(ownership.Vesting(join, before, period)).To(BeZero())
	})

	It("should panic on a non-positive period", func() {
		Expect(func() { ownership.Vesting(join, join, 0) }).To(Panic())
	})
})
