package history

import (
	"errors"

	"github.com/sarchlab/fundsim/datarecording"
	"github.com/sarchlab/fundsim/scenario"
	"github.com/sarchlab/fundsim/sim"
)

// Names of the tables written by DBWriter.
const (
	OwnershipTable = "ownership"
	StartupTable   = "startups"
	FundTable      = "fund"
	EventTable     = "events"
)

// OwnershipEntry is a row of the ownership table.
type OwnershipEntry struct {
	Day              int
	Date             string
	MemberID         int
	Name             string
	Role             string
	FundOwnership    float64
	StartupOwnership float64
}

// StartupEntry is a row of the startups table.
type StartupEntry struct {
	Day          int
	Date         string
	StartupID    int
	Name         string
	Status       string
	FounderShare float64
	FundShare    float64
}

// FundEntry is a row of the fund table.
type FundEntry struct {
	Day       int
	Date      string
	FundValue float64
}

// EventEntry is a row of the events table. There is one row per lifecycle
// event handled by the engine.
type EventEntry struct {
	EventID string
	Day     int
	Kind    string
	Startup string
	Value   float64
}

// DBWriter is a Sink that records snapshots with a DataRecorder. Registered
// as a hook on the engine, it also records the lifecycle events.
type DBWriter struct {
	recorder datarecording.DataRecorder
	hookErr  error
}

// NewDBWriter creates the history tables in the recorder and returns a Sink
// that fills them.
func NewDBWriter(recorder datarecording.DataRecorder) (*DBWriter, error) {
	tables := []struct {
		name   string
		sample any
	}{
		{OwnershipTable, OwnershipEntry{}},
		{StartupTable, StartupEntry{}},
		{FundTable, FundEntry{}},
		{EventTable, EventEntry{}},
	}

	for _, t := range tables {
		if err := recorder.CreateTable(t.name, t.sample); err != nil {
			return nil, err
		}
	}

	return &DBWriter{recorder: recorder}, nil
}

// Record inserts one row per member, one row per startup, and one fund row.
func (w *DBWriter) Record(s Snapshot) error {
	date := s.Date.Format(csvDateLayout)

	for _, m := range s.Members {
		err := w.recorder.InsertData(OwnershipTable, OwnershipEntry{
			Day:              s.Day,
			Date:             date,
			MemberID:         int(m.ID),
			Name:             m.Name,
			Role:             m.Role.String(),
			FundOwnership:    m.FundOwnership,
			StartupOwnership: m.StartupOwnership,
		})
		if err != nil {
			return err
		}
	}

	for _, st := range s.Startups {
		err := w.recorder.InsertData(StartupTable, StartupEntry{
			Day:          s.Day,
			Date:         date,
			StartupID:    int(st.ID),
			Name:         st.Name,
			Status:       st.Status.String(),
			FounderShare: st.FounderShare,
			FundShare:    st.FundShare,
		})
		if err != nil {
			return err
		}
	}

	return w.recorder.InsertData(FundTable, FundEntry{
		Day:       s.Day,
		Date:      date,
		FundValue: s.FundValue,
	})
}

// Func records a lifecycle event after the engine handles it.
func (w *DBWriter) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(scenario.LifecycleEvent)
	if !ok {
		return
	}

	err := w.recorder.InsertData(EventTable, EventEntry{
		EventID: evt.ID,
		Day:     evt.Entry.Day,
		Kind:    string(evt.Entry.Kind),
		Startup: evt.Entry.Startup,
		Value:   evt.Entry.Value,
	})
	if err != nil && w.hookErr == nil {
		w.hookErr = err
	}
}

// Flush flushes the recorder. It also reports the first event that could not
// be recorded.
func (w *DBWriter) Flush() error {
	err := errors.Join(w.hookErr, w.recorder.Flush())
	w.hookErr = nil

	return err
}

// MapTables registers the history tables with a reader so that queries
// return the entry types of DBWriter.
func MapTables(reader datarecording.DataReader) {
	reader.MapTable(OwnershipTable, OwnershipEntry{})
	reader.MapTable(StartupTable, StartupEntry{})
	reader.MapTable(FundTable, FundEntry{})
	reader.MapTable(EventTable, EventEntry{})
}
