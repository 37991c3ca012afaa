// Package monitoring serves the progress and the results of a running
// simulation over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/sarchlab/fundsim/fund"
	"github.com/sarchlab/fundsim/history"
	"github.com/sarchlab/fundsim/sim"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// minPortNumber is the lowest port the monitor accepts. Lower ports fall
// back to a random one.
const minPortNumber = 1000

// Monitor turns a simulation into a read-only server.
type Monitor struct {
	engine     sim.TimeTeller
	buffers    *history.Buffers
	portNumber int

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < minPortNumber {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.TimeTeller) {
	m.engine = e
}

// RegisterBuffers registers the history that the results are read from.
func (m *Monitor) RegisterBuffers(b *history.Buffers) {
	m.buffers = b
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        sim.GetIDGenerator().Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the progress list.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler of all the monitoring endpoints.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/members", m.listMembers)
	r.HandleFunc("/api/member/{id:[0-9]+}", m.memberDetails)
	r.HandleFunc("/api/startups", m.listStartups)
	r.HandleFunc("/api/history/{table}", m.historyTable)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts the monitor as a web server in the background and
// returns its URL.
func (m *Monitor) StartServer() string {
	listener, err := net.Listen("tcp", m.listenAddress())
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, m.Router())
		dieOnErr(err)
	}()

	return url
}

func (m *Monitor) listenAddress() string {
	if m.portNumber < minPortNumber {
		return ":0"
	}

	return ":" + strconv.Itoa(m.portNumber)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := sim.VTimeInDay(0)
	if m.engine != nil {
		now = m.engine.CurrentTime()
	}

	fmt.Fprintf(w, "{\"now\":%d}", now)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]ProgressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.Status())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

func (m *Monitor) listMembers(w http.ResponseWriter, _ *http.Request) {
	if !m.buffersOr404(w) {
		return
	}

	writeJSON(w, m.buffers.Rows())
}

func (m *Monitor) listStartups(w http.ResponseWriter, _ *http.Request) {
	if !m.buffersOr404(w) {
		return
	}

	writeJSON(w, m.buffers.StartupRows())
}

// MemberDetail is the history of a single member.
type MemberDetail struct {
	Row              history.Row
	FundOwnership    []float64
	StartupOwnership []float64
}

func (m *Monitor) memberDetails(w http.ResponseWriter, r *http.Request) {
	if !m.buffersOr404(w) {
		return
	}

	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	fundSeries, startupSeries, ok := m.buffers.MemberSeries(fund.MemberID(id))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Member not found"))
		dieOnErr(err)
		return
	}

	detail := &MemberDetail{
		Row:              m.buffers.Rows()[id],
		FundOwnership:    fundSeries,
		StartupOwnership: startupSeries,
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(detail)
	serializer.SetMaxDepth(2)
	err = serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) historyTable(w http.ResponseWriter, r *http.Request) {
	if !m.buffersOr404(w) {
		return
	}

	switch table := mux.Vars(r)["table"]; table {
	case "fund_ownership":
		writeJSON(w, m.buffers.FundOwnership())
	case "startup_ownership":
		writeJSON(w, m.buffers.StartupOwnership())
	case "fund_share":
		writeJSON(w, m.buffers.FundShare())
	case "fund_value":
		writeJSON(w, m.buffers.FundValue())
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Unknown table %s", table)
	}
}

func (m *Monitor) buffersOr404(w http.ResponseWriter) bool {
	if m.buffers != nil {
		return true
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("No simulation registered"))
	dieOnErr(err)

	return false
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
