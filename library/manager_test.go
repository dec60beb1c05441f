package library

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T, opts ...Option) *LibraryManager {
	dir := t.TempDir()
	mgr, err := NewLibraryManager(filepath.Join(dir, "lib.db"), opts...)
	if err != nil {
		t.Fatalf("mgr: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestManagerReportsMisses(t *testing.T) {
	mgr := newManager(t)
	b, err := mgr.AddBook("Dune", "Herbert", "Ace", 412)
	require.NoError(t, err)

	matched, err := mgr.UpdateBookPages(b.ID, 500)
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = mgr.UpdateBookPages(99, 500)
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = mgr.DeleteBook(99)
	require.NoError(t, err)
	assert.False(t, matched)

	matched, err = mgr.DeleteBook(b.ID)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestManagerLogsTransitions(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mgr := newManager(t, WithLogger(logger))

	b, _ := mgr.AddBook("Dune", "Herbert", "Ace", 412)
	m, _ := mgr.AddMember("Ana", "Lee")
	require.NoError(t, mgr.BorrowBook(b.ID, m.ID))
	assert.ErrorIs(t, mgr.BorrowBook(b.ID, m.ID), ErrAlreadyBorrowed)
	require.NoError(t, mgr.ReturnBook(b.ID))

	out := buf.String()
	assert.Contains(t, out, "book added")
	assert.Contains(t, out, "member added")
	assert.Contains(t, out, "book borrowed")
	assert.Contains(t, out, "borrow rejected")
	assert.Contains(t, out, "book returned")
	assert.NotContains(t, out, "level=ERROR")
}

func TestImportBooks(t *testing.T) {
	mgr := newManager(t)
	added, err := mgr.ImportBooks([]NewBook{
		{Title: "Dune", Author: "Herbert", Publisher: "Ace", Pages: 412},
	})
	require.NoError(t, err)
	require.Len(t, added, 1)

	got, err := mgr.GetBook(added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)
}

func TestPrettyHelpers(t *testing.T) {
	owner := int64(1)
	b := &Book{ID: 3, Title: "Dune", Author: "Herbert", Publisher: "Ace", Pages: 412, OwnerID: &owner}
	assert.Equal(t, "[ID: 3] Dune - Herbert, Ace (412 pages)", PrettyBook(b))
	assert.False(t, b.OnShelf())

	m := &Member{ID: 1, Name: "Ana", Surname: "Lee"}
	assert.Equal(t, "[Member ID: 1] Ana Lee", PrettyMember(m))

	name, surname := "Ana", "Lee"
	assert.Equal(t, "[ID: 3] Dune -> Ana Lee", PrettyStatus(&StatusEntry{BookID: 3, Title: "Dune", BorrowerName: &name, BorrowerSurname: &surname}))
	assert.Equal(t, "[ID: 3] Dune -> available", PrettyStatus(&StatusEntry{BookID: 3, Title: "Dune"}))
}
