// Package hiscore keeps the three best (name, score) entries and
// persists them next to the binary.
package hiscore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
)

// Slots is the number of retained entries.
const Slots = 3

type Entry struct {
	Name  string
	Score int
}

// Table holds the entries ordered best first. Empty slots have a zero
// score.
type Table struct {
	Entries [Slots]Entry
}

// Load reads a table from path. A missing file yields an empty table;
// that is the normal first-run case, not an error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read hiscores: %w", err)
	}
	var t Table
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode hiscores: %w", err)
	}
	return &t, nil
}

// Save writes the table to path.
func (t *Table) Save(path string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t); err != nil {
		return fmt.Errorf("encode hiscores: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Qualifies reports whether score would enter the table.
func (t *Table) Qualifies(score int) bool {
	return score > t.Entries[Slots-1].Score
}

// Insert places (name, score) into rank order, dropping the displaced
// last entry. Returns the zero-based rank, or -1 if the score does not
// qualify.
func (t *Table) Insert(name string, score int) int {
	if !t.Qualifies(score) {
		return -1
	}
	rank := Slots - 1
	for rank > 0 && score > t.Entries[rank-1].Score {
		t.Entries[rank] = t.Entries[rank-1]
		rank--
	}
	t.Entries[rank] = Entry{Name: name, Score: score}
	return rank
}
