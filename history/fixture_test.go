package history_test

import (
	"time"

	"github.com/sarchlab/fundsim/fund"
	"github.com/sarchlab/fundsim/history"
)

var epoch = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// smallFund has one startup with two founders and one advisor.
func smallFund() *fund.Fund {
	f := fund.New("Test Fund", 100)

	s, err := f.AddStartup("Alpha", epoch, 1)
	if err != nil {
		panic(err)
	}

	for _, name := range []string{"F0", "F1"} {
		m := f.AddMember(name, fund.RoleFounder, epoch, 1)
		if err := f.AssignFounder(s, m); err != nil {
			panic(err)
		}
	}

	f.AddMember("A0", fund.RoleAdvisor, epoch, 1)

	return f
}

func snapshotOf(day int, members []float64, fundValue float64) history.Snapshot {
	s := history.Snapshot{
		Day:       day,
		Date:      epoch.AddDate(0, 0, day),
		FundValue: fundValue,
	}

	for i, v := range members {
		s.Members = append(s.Members, history.MemberSnapshot{
			ID:            fund.MemberID(i),
			Name:          "M",
			Role:          fund.RoleAdvisor,
			FundOwnership: v,
		})
	}

	return s
}
