// Package datarecording stores flat records into a SQLite database.
//
// A table is described by a sample struct whose fields are all of basic
// kinds. Each field becomes a column with the field's name.
package datarecording

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// ErrInvalidEntry is returned when a struct cannot be stored in a table.
var ErrInvalidEntry = errors.New("entry is invalid")

// ErrUnknownTable is returned when inserting into a table that was not
// created.
var ErrUnknownTable = errors.New("table does not exist")

// DataRecorder is a backend that can record and store data
type DataRecorder interface {
	// CreateTable creates a new table whose columns follow the fields of the
	// sample entry.
	CreateTable(tableName string, sampleEntry any) error

	// InsertData buffers an entry for a table that already exists.
	InsertData(tableName string, entry any) error

	// ListTables returns the names of all tables created, sorted.
	ListTables() []string

	// Flush writes all the buffered entries into the database.
	Flush() error

	// Close flushes and closes the database.
	Close() error
}

// New creates a SQLite database at path + ".sqlite3" and returns a recorder
// that writes into it. An empty path picks a unique name. Buffered entries
// are flushed when the program exits through atexit.
func New(path string) (DataRecorder, error) {
	w := NewSQLiteWriter(path)

	if err := w.Init(); err != nil {
		return nil, err
	}

	atexit.Register(func() { _ = w.Flush() })

	return w, nil
}

// NewWithDB creates a new DataRecorder with a given database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := &SQLiteWriter{
		DB:        db,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { _ = w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

// SQLiteWriter is the writer that writes data into SQLite database
type SQLiteWriter struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	batchSize  int
	entryCount int
}

// NewSQLiteWriter creates a writer for the database at path + ".sqlite3".
// Init must be called before use.
func NewSQLiteWriter(path string) *SQLiteWriter {
	return &SQLiteWriter{
		dbName:    path,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}
}

// Filename returns the file the writer records into.
func (t *SQLiteWriter) Filename() string {
	return t.dbName + ".sqlite3"
}

// Init creates the database file. It refuses to overwrite an existing file.
func (t *SQLiteWriter) Init() error {
	if t.dbName == "" {
		t.dbName = "fundsim_recording_" + xid.New().String()
	}

	filename := t.Filename()

	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}

	t.DB = db

	return nil
}

func (t *SQLiteWriter) isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}

func (t *SQLiteWriter) checkStructFields(entry any) error {
	types := reflect.TypeOf(entry)
	if types == nil || types.Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T is not a struct", ErrInvalidEntry, entry)
	}

	for i := 0; i < types.NumField(); i++ {
		field := types.Field(i)

		if !t.isAllowedType(field.Type.Kind()) {
			return fmt.Errorf("%w: field %s of %T has kind %s",
				ErrInvalidEntry, field.Name, entry, field.Type.Kind())
		}
	}

	return nil
}

// CreateTable creates a table with one column per field of sampleEntry.
func (t *SQLiteWriter) CreateTable(tableName string, sampleEntry any) error {
	err := t.checkStructFields(sampleEntry)
	if err != nil {
		return err
	}

	n := structs.Names(sampleEntry)
	fields := strings.Join(n, ", \n\t")

	createTableSQL := `CREATE TABLE ` + tableName +
		` (` + "\n\t" + fields + "\n" + `);`
	if _, err := t.Exec(createTableSQL); err != nil {
		return fmt.Errorf("create table %s: %w", tableName, err)
	}

	t.tables[tableName] = &table{
		structType: reflect.TypeOf(sampleEntry),
		entries:    []any{},
	}

	return nil
}

// InsertData buffers an entry. The buffer is flushed automatically when it
// grows beyond the batch size.
func (t *SQLiteWriter) InsertData(tableName string, entry any) error {
	table, exists := t.tables[tableName]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownTable, tableName)
	}

	if reflect.TypeOf(entry) != table.structType {
		return fmt.Errorf("%w: %T does not match table %s",
			ErrInvalidEntry, entry, tableName)
	}

	table.entries = append(table.entries, entry)

	t.entryCount++
	if t.entryCount >= t.batchSize {
		return t.Flush()
	}

	return nil
}

// ListTables returns the names of all the tables created, sorted.
func (t *SQLiteWriter) ListTables() []string {
	tables := make([]string, 0, len(t.tables))
	for table := range t.tables {
		tables = append(tables, table)
	}

	slices.Sort(tables)

	return tables
}

// Flush writes all the buffered entries in a single transaction. If the
// transaction fails, the entries stay buffered for the next Flush.
func (t *SQLiteWriter) Flush() error {
	if t.entryCount == 0 {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	for _, tableName := range t.ListTables() {
		err := t.flushTable(tx, tableName, t.tables[tableName])
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	for _, table := range t.tables {
		table.entries = nil
	}

	t.entryCount = 0

	return nil
}

func (t *SQLiteWriter) flushTable(
	tx *sql.Tx,
	tableName string,
	table *table,
) error {
	if len(table.entries) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(t.insertStatement(tableName, table.entries[0]))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", tableName, err)
	}
	defer stmt.Close()

	for _, entry := range table.entries {
		v := []any{}

		values := reflect.ValueOf(entry)
		for i := 0; i < values.NumField(); i++ {
			v = append(v, values.Field(i).Interface())
		}

		if _, err := stmt.Exec(v...); err != nil {
			return fmt.Errorf("insert into %s: %w", tableName, err)
		}
	}

	return nil
}

func (t *SQLiteWriter) insertStatement(tableName string, entry any) string {
	n := structs.Names(entry)
	for i := 0; i < len(n); i++ {
		n[i] = "?"
	}

	entryToFill := "(" + strings.Join(n, ", ") + ")"

	return "INSERT INTO " + tableName + " VALUES " + entryToFill
}

// Close flushes the buffered entries and closes the database.
func (t *SQLiteWriter) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}

	return t.DB.Close()
}
