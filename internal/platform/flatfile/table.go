// Package flatfile stores small tables as CSV files with a header row. Every
// read takes a shared advisory lock on the file and every mutation rewrites
// the whole table under an exclusive lock, so independent processes sharing
// the data directory serialize their writers.
package flatfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// Row maps header names to cell values.
type Row map[string]string

// Int64 parses the named cell, returning 0 when absent or malformed.
func (r Row) Int64(key string) int64 {
	v, err := strconv.ParseInt(r[key], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Table is one CSV file with a fixed header.
type Table struct {
	path   string
	header []string
	// mu orders goroutines of this process; flock only arbitrates between
	// open file descriptions.
	mu sync.RWMutex
}

// Open prepares the table, creating the parent directory and a header-only
// file when none exists yet.
func Open(path string, header []string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.New("flatfile: header is required")
	}
	seen := make(map[string]struct{}, len(header))
	for _, h := range header {
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("flatfile: duplicate header field %q", h)
		}
		seen[h] = struct{}{}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o775); err != nil {
		return nil, fmt.Errorf("flatfile: create data dir: %w", err)
	}
	t := &Table{path: path, header: append([]string(nil), header...)}
	if err := t.ensure(); err != nil {
		return nil, err
	}
	return t, nil
}

// Path returns the backing file path.
func (t *Table) Path() string {
	return t.path
}

// Header returns a copy of the table's field names.
func (t *Table) Header() []string {
	return append([]string(nil), t.header...)
}

// ReadAll returns every row under a shared lock.
func (t *Table) ReadAll(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_CREATE, 0o664)
	if err != nil {
		return nil, fmt.Errorf("flatfile: open %s: %w", t.path, err)
	}
	defer f.Close()
	if err := lock(f, unix.LOCK_SH); err != nil {
		return nil, err
	}
	defer unlock(f)
	return readRows(f)
}

// Mutate reads the whole table under an exclusive lock, hands the rows to
// fn, and rewrites the table with whatever fn returns. When fn fails the
// file is left untouched.
func (t *Table) Mutate(ctx context.Context, fn func(rows []Row) ([]Row, error)) error {
	return t.MutateIDs(ctx, func(rows []Row, _ *IDs) ([]Row, error) {
		return fn(rows)
	})
}

// MutateIDs is Mutate with an id allocator. Issued ids are recorded in a
// sidecar file next to the table so an id stays retired after its row is
// deleted.
func (t *Table) MutateIDs(ctx context.Context, fn func(rows []Row, ids *IDs) ([]Row, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.OpenFile(t.path, os.O_RDWR|os.O_CREATE, 0o664)
	if err != nil {
		return fmt.Errorf("flatfile: open %s: %w", t.path, err)
	}
	defer f.Close()
	if err := lock(f, unix.LOCK_EX); err != nil {
		return err
	}
	defer unlock(f)

	rows, err := readRows(f)
	if err != nil {
		return err
	}
	issued, err := t.readSeq()
	if err != nil {
		return err
	}
	ids := &IDs{next: max(issued, maxID(rows)) + 1}
	first := ids.next
	next, err := fn(rows, ids)
	if err != nil {
		return err
	}
	if ids.next != first {
		if err := t.writeSeq(ids.next - 1); err != nil {
			return err
		}
	}
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("flatfile: truncate %s: %w", t.path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("flatfile: rewind %s: %w", t.path, err)
	}
	if err := t.writeRows(f, next); err != nil {
		return err
	}
	return f.Sync()
}

// IDs hands out row ids above every id the table has issued.
type IDs struct {
	next int64
}

// Next returns a fresh id.
func (ids *IDs) Next() int64 {
	id := ids.next
	ids.next++
	return id
}

// SeqPath is the sidecar holding the highest id issued so far.
func (t *Table) SeqPath() string {
	return t.path + ".seq"
}

func (t *Table) readSeq() (int64, error) {
	data, err := os.ReadFile(t.SeqPath())
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("flatfile: read %s: %w", t.SeqPath(), err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("flatfile: parse %s: %w", t.SeqPath(), err)
	}
	return n, nil
}

// writeSeq replaces the sidecar atomically. Callers hold the table lock.
func (t *Table) writeSeq(issued int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(t.path), ".seq-*")
	if err != nil {
		return fmt.Errorf("flatfile: write %s: %w", t.SeqPath(), err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(strconv.FormatInt(issued, 10) + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("flatfile: write %s: %w", t.SeqPath(), err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("flatfile: write %s: %w", t.SeqPath(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("flatfile: write %s: %w", t.SeqPath(), err)
	}
	if err := os.Rename(tmp.Name(), t.SeqPath()); err != nil {
		return fmt.Errorf("flatfile: write %s: %w", t.SeqPath(), err)
	}
	return nil
}

func maxID(rows []Row) int64 {
	var highest int64
	for _, r := range rows {
		if id := r.Int64("id"); id > highest {
			highest = id
		}
	}
	return highest
}

func (t *Table) ensure() error {
	f, err := os.OpenFile(t.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o664)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("flatfile: create %s: %w", t.path, err)
	}
	defer f.Close()
	if err := lock(f, unix.LOCK_EX); err != nil {
		return err
	}
	defer unlock(f)
	return t.writeRows(f, nil)
}

func (t *Table) writeRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.header); err != nil {
		return fmt.Errorf("flatfile: write header: %w", err)
	}
	line := make([]string, len(t.header))
	for _, r := range rows {
		for i, h := range t.header {
			line[i] = r[h]
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("flatfile: write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flatfile: flush: %w", err)
	}
	return nil
}

func readRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("flatfile: read header: %w", err)
	}
	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("flatfile: read row: %w", err)
		}
		if len(record) == 1 && record[0] == "" {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
}

func lock(f *os.File, how int) error {
	for {
		err := unix.Flock(int(f.Fd()), how)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("flatfile: lock %s: %w", f.Name(), err)
		}
		return nil
	}
}

func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
