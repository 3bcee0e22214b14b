package runlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
)

var testTime = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:     testTime,
		RecurringID:   "rec_9b4f2c1e-07bd-4cde-a1f3-52a8c3b0d9ee",
		ProcessDate:   model.NewDate(2026, 3, 15),
		TransactionID: "txn_1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d",
		Outcome:       OutcomeOK,
	}
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	err := Append(dir, []Entry{testEntry()})
	require.NoError(t, err)

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, OutcomeOK, entries[0].Outcome)
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, []Entry{testEntry()}))

	e2 := testEntry()
	e2.TransactionID = ""
	e2.Outcome = OutcomeError
	e2.Details = "account \"Savings\" holds 0, cannot transfer 5000"
	require.NoError(t, Append(dir, []Entry{e2}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OutcomeOK, entries[0].Outcome)
	assert.Equal(t, OutcomeError, entries[1].Outcome)
	assert.Empty(t, entries[1].TransactionID)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := testEntry()
	original.Details = "caught up after vacation"
	require.NoError(t, Append(dir, []Entry{original}))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.True(t, original.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, original.RecurringID, got.RecurringID)
	assert.Equal(t, original.ProcessDate, got.ProcessDate)
	assert.Equal(t, original.TransactionID, got.TransactionID)
	assert.Equal(t, original.Outcome, got.Outcome)
	assert.Equal(t, original.Details, got.Details)
}

func TestRead_NotFound(t *testing.T) {
	dir := t.TempDir()
	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestRead_HeaderOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "logs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs", "recurring-runs.csv"), []byte(Header+"\n"), 0o644))

	entries, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_BadFieldCount(t *testing.T) {
	_, err := UnmarshalEntry([]string{"one", "two"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expected 6 fields")
}

func TestTimestampFormat(t *testing.T) {
	row := MarshalEntry(testEntry())
	assert.Equal(t, "2026-03-15T10:30:00Z", row[0])
	assert.Equal(t, "2026-03-15", row[2])
}

func TestAppend_CreatesDir(t *testing.T) {
	dir := t.TempDir()
	// logs/ does not exist yet.
	err := Append(dir, []Entry{testEntry()})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "logs"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
