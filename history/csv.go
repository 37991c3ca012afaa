package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const csvDateLayout = "2006-01-02"

// CSVWriter is a Sink that writes snapshots into three CSV files sharing a
// common prefix: <prefix>_ownership.csv has one line per member per day,
// <prefix>_startups.csv one line per startup per day, and <prefix>_fund.csv
// one line per day.
type CSVWriter struct {
	prefix string

	ownership *csvFile
	startups  *csvFile
	fund      *csvFile

	snapshots  []Snapshot
	bufferSize int
}

type csvFile struct {
	file *os.File
	w    *csv.Writer
}

// NewCSVWriter creates a new CSVWriter. Init must be called before use.
func NewCSVWriter(prefix string) *CSVWriter {
	return &CSVWriter{
		prefix:     prefix,
		bufferSize: 100,
	}
}

// Filenames returns the files written by the writer.
func (w *CSVWriter) Filenames() []string {
	return []string{
		w.prefix + "_ownership.csv",
		w.prefix + "_startups.csv",
		w.prefix + "_fund.csv",
	}
}

// Init creates the CSV files and writes their headers. It refuses to
// overwrite existing files. The files are flushed and closed at exit.
func (w *CSVWriter) Init() error {
	if w.prefix == "" {
		w.prefix = "fundsim_" + xid.New().String()
	}

	for _, filename := range w.Filenames() {
		_, err := os.Stat(filename)
		if err == nil {
			return fmt.Errorf("file %s already exists", filename)
		}
	}

	files := w.Filenames()
	headers := [][]string{
		{"Day", "Date", "MemberID", "Name", "Role",
			"FundOwnership", "StartupOwnership"},
		{"Day", "Date", "StartupID", "Name", "Status",
			"FounderShare", "FundShare"},
		{"Day", "Date", "FundValue"},
	}
	targets := []**csvFile{&w.ownership, &w.startups, &w.fund}

	for i, filename := range files {
		f, err := createCSV(filename, headers[i])
		if err != nil {
			_ = w.Close()
			return err
		}

		*targets[i] = f
	}

	atexit.Register(func() {
		_ = w.Close()
	})

	return nil
}

func createCSV(filename string, header []string) (*csvFile, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, err
	}

	f := &csvFile{file: file, w: csv.NewWriter(file)}
	if err := f.w.Write(header); err != nil {
		file.Close()
		return nil, err
	}

	return f, nil
}

// Record buffers a snapshot. Buffered snapshots are written when the buffer
// is full or on Flush.
func (w *CSVWriter) Record(s Snapshot) error {
	w.snapshots = append(w.snapshots, s)
	if len(w.snapshots) >= w.bufferSize {
		return w.Flush()
	}

	return nil
}

// Flush writes all the buffered snapshots to the files. Snapshots that
// could not be written stay buffered.
func (w *CSVWriter) Flush() error {
	if w.fund == nil {
		w.snapshots = nil
		return nil
	}

	for i, s := range w.snapshots {
		if err := w.write(s); err != nil {
			w.snapshots = w.snapshots[i:]
			return err
		}
	}

	w.snapshots = nil

	var errs []error
	for _, f := range w.files() {
		f.w.Flush()
		errs = append(errs, f.w.Error())
	}

	return errors.Join(errs...)
}

func (w *CSVWriter) write(s Snapshot) error {
	day := strconv.Itoa(s.Day)
	date := s.Date.Format(csvDateLayout)

	for _, m := range s.Members {
		err := w.ownership.w.Write([]string{
			day,
			date,
			strconv.Itoa(int(m.ID)),
			m.Name,
			m.Role.String(),
			formatFloat(m.FundOwnership),
			formatFloat(m.StartupOwnership),
		})
		if err != nil {
			return err
		}
	}

	for _, st := range s.Startups {
		err := w.startups.w.Write([]string{
			day,
			date,
			strconv.Itoa(int(st.ID)),
			st.Name,
			st.Status.String(),
			formatFloat(st.FounderShare),
			formatFloat(st.FundShare),
		})
		if err != nil {
			return err
		}
	}

	return w.fund.w.Write([]string{day, date, formatFloat(s.FundValue)})
}

// Close flushes the buffered snapshots and closes the files. Closing twice
// is a no-op.
func (w *CSVWriter) Close() error {
	err := w.Flush()

	errs := []error{err}
	for _, f := range w.files() {
		errs = append(errs, f.file.Close())
	}

	w.ownership, w.startups, w.fund = nil, nil, nil

	return errors.Join(errs...)
}

func (w *CSVWriter) files() []*csvFile {
	var files []*csvFile
	for _, f := range []*csvFile{w.ownership, w.startups, w.fund} {
		if f != nil {
			files = append(files, f)
		}
	}

	return files
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 10, 64)
}
