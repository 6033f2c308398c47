package storage

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

var tempDir, _ = ioutil.TempDir("", "storage")

func TestMain(m *testing.M) {
	code := m.Run()
	os.RemoveAll(tempDir)
	os.Exit(code)
}

func TestOpenFile_CreateThenReadWrite(t *testing.T) {
	path := filepath.Join(tempDir, "a.dat")

	f, err := OpenFile(path, "w+", Exclusive)
	assert.Nil(t, err)

	_, err = f.Write([]byte("hello"))
	assert.Nil(t, err)
	assert.Nil(t, f.Sync())
	assert.Nil(t, f.Close())

	f, err = OpenFile(path, "r+", Exclusive)
	assert.Nil(t, err)
	defer f.Close()

	buf := make([]byte, 5)
	n, err := f.Read(buf)
	assert.Nil(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(buf))
}

func TestOpenFile_MissingWithMustExistMode(t *testing.T) {
	path := filepath.Join(tempDir, "missing.dat")
	_, err := OpenFile(path, "r+", Exclusive)
	assert.Error(t, err)
}

func TestOpenFile_ExclusiveDeniesSecondOpen(t *testing.T) {
	path := filepath.Join(tempDir, "b.dat")

	f, err := OpenFile(path, "w+", Exclusive)
	assert.Nil(t, err)
	defer f.Close()

	_, err = OpenFile(path, "r+", Exclusive)
	assert.Error(t, err)
}

func TestFile_ReadByteWriteByte(t *testing.T) {
	path := filepath.Join(tempDir, "c.dat")

	f, err := OpenFile(path, "w+", Exclusive)
	assert.Nil(t, err)
	defer f.Close()

	assert.Nil(t, f.WriteByte('X'))
	_, err = f.Seek(0, 0)
	assert.Nil(t, err)

	b, err := f.ReadByte()
	assert.Nil(t, err)
	assert.Equal(t, byte('X'), b)

	_, err = f.ReadByte()
	assert.NotNil(t, err)
}

func TestFile_Offset(t *testing.T) {
	path := filepath.Join(tempDir, "d.dat")

	f, err := OpenFile(path, "w+", Exclusive)
	assert.Nil(t, err)
	defer f.Close()

	_, err = f.Write([]byte("0123456789"))
	assert.Nil(t, err)

	off, err := f.Offset()
	assert.Nil(t, err)
	assert.EqualValues(t, 10, off)
}
