package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fundsim/datarecording"
	"github.com/sarchlab/fundsim/history"
	"github.com/sarchlab/fundsim/scenario"
)

var _ = Describe("Run", func() {
	var (
		dir string
		out *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out = new(bytes.Buffer)
	})

	It("should print the shapes of the history", func() {
		err := runSimulation(context.Background(), out,
			Config{Horizon: 730, Seed: 1})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("Final number of members: 11"))
		Expect(out.String()).To(ContainSubstring(
			"Fund ownership history shape: (11, 730)"))
		Expect(out.String()).To(ContainSubstring(
			"Fund value history shape: (730,)"))
	})

	It("should reject a non-positive horizon", func() {
		err := runSimulation(context.Background(), out, Config{})

		Expect(err).To(MatchError(ContainSubstring("horizon")))
	})

	It("should write CSV files", func() {
		prefix := filepath.Join(dir, "run")

		err := runSimulation(context.Background(), out,
			Config{Horizon: 10, Seed: 1, CSVPrefix: prefix})

		Expect(err).NotTo(HaveOccurred())
		Expect(prefix + "_ownership.csv").To(BeAnExistingFile())
		Expect(prefix + "_startups.csv").To(BeAnExistingFile())
		Expect(prefix + "_fund.csv").To(BeAnExistingFile())
	})

	It("should run a scenario file", func() {
		s := scenario.Default()
		s.Schedule = nil

		path := filepath.Join(dir, "scenario.yaml")
		file, err := os.Create(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Dump(file)).To(Succeed())
		Expect(file.Close()).To(Succeed())

		err = runSimulation(context.Background(), out,
			Config{Horizon: 400, Seed: 1, Scenario: path})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("Final number of members: 9"))
	})

	It("should record a database that can be inspected", func() {
		dbPath := filepath.Join(dir, "run")

		err := runSimulation(context.Background(), out,
			Config{Horizon: 400, Seed: 1, DBPath: dbPath})
		Expect(err).NotTo(HaveOccurred())

		reader, err := datarecording.NewReader(dbPath + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		defer reader.Close()

		report := new(bytes.Buffer)
		Expect(inspect(context.Background(), report, reader, -1)).To(Succeed())

		Expect(report.String()).To(ContainSubstring("Day 399 (2024-02-04)"))
		Expect(report.String()).To(ContainSubstring("NewFounder_1"))

		report.Reset()
		Expect(inspect(context.Background(), report, reader, 10)).To(Succeed())
		Expect(report.String()).NotTo(ContainSubstring("NewFounder_1"))

		Expect(inspect(context.Background(), report, reader, 1000)).
			NotTo(Succeed())

		history.MapTables(reader)
		_, events, err := reader.Query(context.Background(),
			history.EventTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(Equal(3))
	})
})
