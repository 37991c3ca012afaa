package monitoring_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/fundsim/history"
	"github.com/sarchlab/fundsim/monitoring"
	"github.com/sarchlab/fundsim/simulation"
)

var _ = Describe("Monitor", func() {
	var (
		m      *monitoring.Monitor
		server *httptest.Server
	)

	get := func(path string) (int, []byte) {
		rsp, err := http.Get(server.URL + path)
		Expect(err).NotTo(HaveOccurred())
		defer rsp.Body.Close()

		body := new(bytes.Buffer)
		_, err = body.ReadFrom(rsp.Body)
		Expect(err).NotTo(HaveOccurred())

		return rsp.StatusCode, body.Bytes()
	}

	BeforeEach(func() {
		m = monitoring.NewMonitor()
		server = httptest.NewServer(m.Router())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should report missing results", func() {
		status, _ := get("/api/members")

		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("should report day zero without an engine", func() {
		status, body := get("/api/now")

		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(Equal(`{"now":0}`))
	})

	Context("with a finished simulation", func() {
		BeforeEach(func() {
			s, err := simulation.MakeBuilder().WithHorizon(400).Build()
			Expect(err).NotTo(HaveOccurred())

			m.RegisterEngine(s.Engine())
			m.RegisterBuffers(s.Buffers())

			_, err = s.Run()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should report the current day", func() {
			_, body := get("/api/now")

			Expect(string(body)).To(Equal(`{"now":399}`))
		})

		It("should list the members", func() {
			status, body := get("/api/members")

			rows := []history.Row{}
			Expect(json.Unmarshal(body, &rows)).To(Succeed())
			Expect(status).To(Equal(http.StatusOK))
			Expect(rows).To(HaveLen(11))
			Expect(rows[9].Name).To(Equal("NewFounder_0"))
			Expect(rows[9].FirstDay).To(Equal(365))
		})

		It("should list the startups", func() {
			_, body := get("/api/startups")

			rows := []history.StartupRow{}
			Expect(json.Unmarshal(body, &rows)).To(Succeed())
			Expect(rows).To(HaveLen(4))
		})

		It("should serve the history tables", func() {
			_, body := get("/api/history/fund_value")

			values := []float64{}
			Expect(json.Unmarshal(body, &values)).To(Succeed())
			Expect(values).To(HaveLen(400))
			Expect(values[399]).To(Equal(6_000_000.0))

			_, body = get("/api/history/fund_ownership")

			table := [][]float64{}
			Expect(json.Unmarshal(body, &table)).To(Succeed())
			Expect(table).To(HaveLen(11))
		})

		It("should reject unknown tables", func() {
			status, _ := get("/api/history/nothing")

			Expect(status).To(Equal(http.StatusNotFound))
		})

		It("should serialize a member", func() {
			status, body := get("/api/member/0")

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).NotTo(BeEmpty())
		})

		It("should report unknown members", func() {
			status, _ := get("/api/member/42")

			Expect(status).To(Equal(http.StatusNotFound))
		})
	})

	It("should list progress bars until they complete", func() {
		bar := m.CreateProgressBar("Days", 10)
		bar.IncrementFinished(3)

		_, body := get("/api/progress")

		bars := []monitoring.ProgressBarStatus{}
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Days"))
		Expect(bars[0].Finished).To(Equal(uint64(3)))

		m.CompleteProgressBar(bar)

		_, body = get("/api/progress")
		Expect(json.Unmarshal(body, &bars)).To(Succeed())
		Expect(bars).To(BeEmpty())
	})

	It("should report process resources", func() {
		status, body := get("/api/resource")

		Expect(status).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("memory_size"))
	})
})
