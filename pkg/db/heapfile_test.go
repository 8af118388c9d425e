package db

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minidb/pkg/buffer"
	"minidb/pkg/storage/disk"
)

func TestInsertTupleOnePagePerTuple(t *testing.T) {
	path := "test_insert.tbl"
	os.Remove(path)
	defer os.Remove(path)

	f, err := disk.Create(path)
	require.NoError(t, err)
	defer f.Close()
	pool := buffer.NewBufferPoolManager(8)

	rid0 := InsertTuple("r\tr0\t0", f, pool)
	rid1 := InsertTuple("r\tr1\t1", f, pool)

	assert.NotEqual(t, rid0.PageNum, rid1.PageNum, "each tuple must land on its own fresh page")

	scanner := NewTableScanner(f, pool)
	var got []string
	require.NoError(t, scanner.Each(func(rec string) error {
		got = append(got, rec)
		return nil
	}))
	assert.Equal(t, []string{"r\tr0\t0", "r\tr1\t1"}, got)
}

func TestDeleteTupleTombstones(t *testing.T) {
	path := "test_delete.tbl"
	os.Remove(path)
	defer os.Remove(path)

	f, err := disk.Create(path)
	require.NoError(t, err)
	defer f.Close()
	pool := buffer.NewBufferPoolManager(8)

	rid := InsertTuple("r\tr0\t0", f, pool)
	DeleteTuple(rid, f, pool)

	scanner := NewTableScanner(f, pool)
	var got []string
	require.NoError(t, scanner.Each(func(rec string) error {
		got = append(got, rec)
		return nil
	}))
	assert.Empty(t, got)
}
