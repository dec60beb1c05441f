package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"library-catalog/library"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func seed(t *testing.T, path string) {
	t.Helper()
	mgr, err := library.NewLibraryManager(path)
	require.NoError(t, err)
	defer mgr.Close()

	_, err = mgr.AddBook("Dune", "Herbert", "Ace", 412)
	require.NoError(t, err)
	_, err = mgr.AddBook("Emma", "Austen", "Murray", 320)
	require.NoError(t, err)
	m, err := mgr.AddMember("Ana", "Lee")
	require.NoError(t, err)
	require.NoError(t, mgr.BorrowBook(2, m.ID))
}

func TestStatusCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	seed(t, path)

	out, err := execute(t, "", "--db", path, "status")
	require.NoError(t, err)
	assert.Equal(t, "[ID: 1] Dune -> available\n[ID: 2] Emma -> Ana Lee\n", out)
}

func TestStatusCommandJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	seed(t, path)

	out, err := execute(t, "", "--db", path, "status", "--json")
	require.NoError(t, err)

	var entries []library.StatusEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 2)
	assert.Nil(t, entries[0].BorrowerName)
	require.NotNil(t, entries[1].BorrowerName)
	assert.Equal(t, "Ana", *entries[1].BorrowerName)
}

func TestBooksAndMembersCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")
	seed(t, path)

	out, err := execute(t, "", "--db", path, "books", "--json")
	require.NoError(t, err)
	var books []library.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))
	require.Len(t, books, 2)
	assert.Nil(t, books[0].OwnerID)
	require.NotNil(t, books[1].OwnerID)

	out, err = execute(t, "", "--db", path, "members")
	require.NoError(t, err)
	assert.Equal(t, "[Member ID: 1] Ana Lee\n", out)
}

func TestEmptyListCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")

	out, err := execute(t, "", "--db", path, "members")
	require.NoError(t, err)
	assert.Equal(t, "No registered members.\n", out)

	out, err = execute(t, "", "--db", path, "books", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestRootRunsMenu(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")

	out, err := execute(t, "2\n2\nAna\nLee\nb\nq\n", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "New member added: Ana Lee (ID: 1)")

	out, err = execute(t, "", "--db", path, "members")
	require.NoError(t, err)
	assert.Equal(t, "[Member ID: 1] Ana Lee\n", out)
}

func TestInvalidLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")

	_, err := execute(t, "", "--db", path, "--log-level", "loud", "books")
	assert.ErrorContains(t, err, "invalid log level")
}
