package roster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	tbl, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Empty(t, tbl.Names())
}

func TestReadEmptyInput(t *testing.T) {
	tbl, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestReadCoercesFlags(t *testing.T) {
	data := `name,short_name,is_quandela_employee,notes,extra
Jane Doe,jane_doe,1,CTO,x
John Roe,,,,
Ann Lee,ann,nan,,
Bob Ray,bob,1.0,,
Jane Doe,dup,0,ignored,
`
	tbl, err := Read(strings.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Len(), "duplicate name dropped")

	jane, ok := tbl.Lookup("Jane Doe")
	require.True(t, ok)
	assert.Equal(t, Author{Name: "Jane Doe", ShortName: "jane_doe", IsEmployee: true, Notes: "CTO"}, jane)

	john, ok := tbl.Lookup("John Roe")
	require.True(t, ok)
	assert.False(t, john.IsEmployee)

	ann, _ := tbl.Lookup("Ann Lee")
	assert.False(t, ann.IsEmployee)

	bob, _ := tbl.Lookup("Bob Ray")
	assert.True(t, bob.IsEmployee)

	assert.Equal(t, []string{"Jane Doe", "John Roe", "Ann Lee", "Bob Ray"}, tbl.Names())
}

func TestReadRejectsGarbageFlag(t *testing.T) {
	_, err := Read(strings.NewReader("name,short_name,is_quandela_employee,notes\nJane,j,maybe,\n"))
	require.Error(t, err)
}

func TestLookupIsExact(t *testing.T) {
	tbl := NewTable([]Author{{Name: "Jane Doe"}})
	_, ok := tbl.Lookup("jane doe")
	assert.False(t, ok)
	_, ok = tbl.Lookup("Jane Doe")
	assert.True(t, ok)
}

func TestAddRejectsBlankAndDuplicate(t *testing.T) {
	tbl := NewTable(nil)
	assert.True(t, tbl.Add(Author{Name: "Jane Doe"}))
	assert.False(t, tbl.Add(Author{Name: "Jane Doe", Notes: "again"}))
	assert.False(t, tbl.Add(Author{Name: "  "}))
	assert.Equal(t, 1, tbl.Len())
}

func TestDeriveShortName(t *testing.T) {
	assert.Equal(t, "cassandre_notton", DeriveShortName("Cassandre Notton"))
	assert.Equal(t, "jean-loup_van_damme", DeriveShortName("Jean-Loup Van Damme"))
}

func TestAppendCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")

	stored, added, err := Append(path, Author{Name: "  Cassandre Notton ", IsEmployee: true, Notes: " team "})
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, Author{Name: "Cassandre Notton", ShortName: "cassandre_notton", IsEmployee: true, Notes: "team"}, stored)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,short_name,is_quandela_employee,notes\nCassandre Notton,cassandre_notton,1,team\n", string(data))
}

func TestAppendDuplicateIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")
	_, _, err := Append(path, Author{Name: "Jane Doe", ShortName: "jd"})
	require.NoError(t, err)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	stored, added, err := Append(path, Author{Name: "Jane Doe", ShortName: "other", IsEmployee: true})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "jd", stored.ShortName)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAppendPreservesExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,short_name,is_quandela_employee,notes\nJane Doe,jd,1,\n"), 0644))

	_, added, err := Append(path, Author{Name: "John Roe"})
	require.NoError(t, err)
	assert.True(t, added)

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jane Doe", "John Roe"}, tbl.Names())
	jane, _ := tbl.Lookup("Jane Doe")
	assert.True(t, jane.IsEmployee)
}

func TestAppendEmptyName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")
	_, _, err := Append(path, Author{Name: "   "})
	require.ErrorIs(t, err, ErrEmptyName)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authors.csv")
	tbl := NewTable([]Author{
		{Name: "Jane Doe", ShortName: "jd", IsEmployee: true, Notes: "Lead, optics"},
		{Name: "John Roe", ShortName: "jr"},
	})
	require.NoError(t, Save(path, tbl))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Authors(), got.Authors())
}

func TestWriteEmptyTableHasHeader(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Write(&sb, NewTable(nil)))
	assert.Equal(t, "name,short_name,is_quandela_employee,notes\n", sb.String())
}
