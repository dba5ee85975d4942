package pms

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallInstance = `2 2
0 3
4 5
6 7
SSD M0
1 2
3 4
SSD M1
5 6
7 8
`

func assertSameInstance(t *testing.T, want, got *Instance) {
	t.Helper()
	require.Equal(t, want.NumJobs(), got.NumJobs())
	require.Equal(t, want.NumMachines(), got.NumMachines())
	for j := 0; j < want.NumJobs(); j++ {
		assert.Equal(t, want.ReleaseDate(j), got.ReleaseDate(j))
		for m := 0; m < want.NumMachines(); m++ {
			assert.Equal(t, want.ProcessingTime(j, m), got.ProcessingTime(j, m))
			for k := 0; k < want.NumJobs(); k++ {
				assert.Equal(t, want.SetupTime(j, k, m), got.SetupTime(j, k, m))
			}
		}
	}
}

func TestReadInstance(t *testing.T) {
	inst, err := ReadInstance(strings.NewReader(smallInstance))
	require.NoError(t, err)

	assert.Equal(t, 2, inst.NumJobs())
	assert.Equal(t, 2, inst.NumMachines())
	assert.Equal(t, 3, inst.ReleaseDate(1))
	assert.Equal(t, 7, inst.ProcessingTime(1, 1))
	assert.Equal(t, 2, inst.SetupTime(0, 1, 0))
	assert.Equal(t, 7, inst.SetupTime(1, 0, 1))
}

func TestReadInstance_BlankSeparators(t *testing.T) {
	in := "\n2 2\n\n0 3\n4 5\n6 7\n\n1 2\n3 4\n\n\n5 6\n7 8\n"
	inst, err := ReadInstance(strings.NewReader(in))
	require.NoError(t, err)

	want, err := ReadInstance(strings.NewReader(smallInstance))
	require.NoError(t, err)
	assertSameInstance(t, want, inst)
}

func TestReadInstance_DashSeparator(t *testing.T) {
	in := strings.ReplaceAll(smallInstance, "SSD M0", "----")
	inst, err := ReadInstance(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 1, inst.SetupTime(0, 0, 0))
}

func TestReadInstance_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"bad dimensions", "two 2\n"},
		{"zero jobs", "0 2\n"},
		{"short release row", "2 1\n0\n"},
		{"short processing row", "2 2\n0 0\n1\n"},
		{"missing header", "1 1\n0\n4\n1\n"},
		{"truncated setup", "2 1\n0 0\n1\n1\nM0\n1 1\n"},
		{"negative time", "1 1\n0\n-4\nM0\n1\n"},
		{"huge machine count", "2 2000000000000000\n0 0\n1 2\n"},
		{"huge job count", "2000000000000000 2\n0 0\n"},
		{"size overflow", "4000000000 4000000000\n0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadInstance(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestReadInstance_ErrorKinds(t *testing.T) {
	_, err := ReadInstance(strings.NewReader("2 1\n0 0\n1\n"))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	_, err = ReadInstance(strings.NewReader("1 1\n0\n-4\nM0\n1\n"))
	assert.ErrorIs(t, err, ErrInvalidInstance)

	_, err = ReadInstance(strings.NewReader("4000000000 4000000000\n0\n"))
	assert.ErrorIs(t, err, ErrInvalidInstance)

	// заголовок обещает больше значений, чем есть в файле
	_, err = ReadInstance(strings.NewReader("2 2000000000000000\n0 0\n1 2\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processing times of job 0")
}

func TestWriteInstance_RoundTrip(t *testing.T) {
	want := PaperInstance()

	var buf bytes.Buffer
	require.NoError(t, WriteInstance(&buf, want))
	assert.True(t, strings.HasPrefix(buf.String(), "5 2\n3 5 1 0 3\n"))
	assert.Contains(t, buf.String(), "M1\n1 10 8 3 4\n")

	got, err := ReadInstance(&buf)
	require.NoError(t, err)
	assertSameInstance(t, want, got)
}

func TestLoadInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inst.txt")
	require.NoError(t, os.WriteFile(path, []byte(smallInstance), 0o644))

	inst, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, 2, inst.NumJobs())

	_, err = LoadInstance(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRandomInstance(t *testing.T) {
	a := RandomInstance(12, 3, 20, 10, 0.5, rand.New(rand.NewSource(42)))
	b := RandomInstance(12, 3, 20, 10, 0.5, rand.New(rand.NewSource(42)))
	assertSameInstance(t, a, b)

	for j := 0; j < a.NumJobs(); j++ {
		for m := 0; m < a.NumMachines(); m++ {
			p := a.ProcessingTime(j, m)
			assert.True(t, p >= 1 && p <= 20, "p=%d", p)
			for k := 0; k < a.NumJobs(); k++ {
				s := a.SetupTime(j, k, m)
				assert.True(t, s >= 1 && s <= 10, "s=%d", s)
			}
		}
		// L = ceil(12 * rho * 0.5 / 3) <= ceil(2 * 20) = 40
		r := a.ReleaseDate(j)
		assert.True(t, r >= 0 && r <= 40, "r=%d", r)
	}
}

func TestRandomInstance_ZeroReleaseFactor(t *testing.T) {
	inst := RandomInstance(5, 2, 9, 9, 0, rand.New(rand.NewSource(1)))
	for j := 0; j < inst.NumJobs(); j++ {
		assert.Equal(t, 0, inst.ReleaseDate(j))
	}
}

func TestRandomInstance_Panics(t *testing.T) {
	assert.Panics(t, func() { RandomInstance(5, 2, 9, 9, 0.5, nil) })
	assert.Panics(t, func() { RandomInstance(0, 2, 9, 9, 0.5, rand.New(rand.NewSource(1))) })
}
