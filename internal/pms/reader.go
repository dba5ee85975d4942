package pms

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
)

// ReadInstance читает экземпляр в текстовом формате:
//
//	n m
//	r_0 ... r_{n-1}
//	n строк по m времён обработки
//	для каждой машины: строка-заголовок и n строк по n времён переналадки
func ReadInstance(r io.Reader) (*Instance, error) {
	lr := &lineReader{sc: bufio.NewScanner(r)}

	dims, err := lr.ints(2)
	if err != nil {
		return nil, fmt.Errorf("dimensions: %w", err)
	}
	jobs, machines := dims[0], dims[1]
	if jobs <= 0 || machines <= 0 {
		return nil, fmt.Errorf("%w: line %d: jobs and machines must be > 0", ErrInvalidInstance, lr.line)
	}
	// n*n*m значений переналадки должны помещаться в int
	if jobs > math.MaxInt/jobs/machines {
		return nil, fmt.Errorf("%w: line %d: instance too large (%d jobs, %d machines)", ErrInvalidInstance, lr.line, jobs, machines)
	}

	release, err := lr.ints(jobs)
	if err != nil {
		return nil, fmt.Errorf("release dates: %w", err)
	}

	var proc []int
	for j := 0; j < jobs; j++ {
		row, err := lr.ints(machines)
		if err != nil {
			return nil, fmt.Errorf("processing times of job %d: %w", j, err)
		}
		proc = append(proc, row...)
	}

	var setup []int
	for m := 0; m < machines; m++ {
		if err := lr.skipHeader(); err != nil {
			return nil, fmt.Errorf("setup header of machine %d: %w", m, err)
		}
		for i := 0; i < jobs; i++ {
			row, err := lr.ints(jobs)
			if err != nil {
				return nil, fmt.Errorf("setup times of machine %d row %d: %w", m, i, err)
			}
			setup = append(setup, row...)
		}
	}

	return NewInstance(jobs, machines, release, proc, setup)
}

func LoadInstance(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inst, err := ReadInstance(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// WriteInstance записывает экземпляр в том же формате, что читает ReadInstance.
func WriteInstance(w io.Writer, inst *Instance) error {
	bw := bufio.NewWriter(w)
	n, m := inst.NumJobs(), inst.NumMachines()

	fmt.Fprintf(bw, "%d %d\n", n, m)
	row := make([]int, 0, max(n, m))
	for j := 0; j < n; j++ {
		row = append(row, inst.ReleaseDate(j))
	}
	writeRow(bw, row)

	for j := 0; j < n; j++ {
		row = row[:0]
		for k := 0; k < m; k++ {
			row = append(row, inst.ProcessingTime(j, k))
		}
		writeRow(bw, row)
	}

	for k := 0; k < m; k++ {
		fmt.Fprintf(bw, "M%d\n", k)
		for i := 0; i < n; i++ {
			row = row[:0]
			for j := 0; j < n; j++ {
				row = append(row, inst.SetupTime(i, j, k))
			}
			writeRow(bw, row)
		}
	}
	return bw.Flush()
}

// RandomInstance генерирует экземпляр по протоколу статьи: p и s равномерно в [1, max],
// даты готовности равномерно в [0, L], L = ceil(n * rho * releaseFactor / m).
func RandomInstance(jobs, machines, maxProcessing, maxSetup int, releaseFactor float64, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if jobs <= 0 || machines <= 0 || maxProcessing <= 0 || maxSetup <= 0 || releaseFactor < 0 {
		panic("invalid random instance parameters")
	}

	// rho - среднее время обработки по пробной таблице
	rho := 0.0
	for i := 0; i < jobs*machines; i++ {
		rho += float64(rng.Intn(maxProcessing) + 1)
	}
	rho /= float64(jobs * machines)
	L := int(math.Ceil(float64(jobs) * rho * releaseFactor / float64(machines)))

	release := make([]int, jobs)
	for j := range release {
		if L > 0 {
			release[j] = rng.Intn(L + 1)
		}
	}
	proc := make([]int, jobs*machines)
	for i := range proc {
		proc[i] = rng.Intn(maxProcessing) + 1
	}
	setup := make([]int, machines*jobs*jobs)
	for i := range setup {
		setup[i] = rng.Intn(maxSetup) + 1
	}

	inst, err := NewInstance(jobs, machines, release, proc, setup)
	if err != nil {
		panic(err)
	}
	return inst
}

// PaperInstance - пример из статьи: 5 работ, 2 машины (таблицы 1 и 2).
func PaperInstance() *Instance {
	inst, err := FromMatrices(
		[]int{3, 5, 1, 0, 3},
		[][]int{
			{2, 2},
			{1, 4},
			{2, 5},
			{6, 2},
			{4, 1},
		},
		[][][]int{
			{
				{9, 5, 1, 2, 3},
				{7, 3, 5, 1, 6},
				{3, 5, 7, 2, 7},
				{5, 3, 3, 1, 2},
				{1, 1, 2, 2, 3},
			},
			{
				{1, 10, 8, 3, 4},
				{4, 2, 2, 1, 5},
				{2, 1, 2, 5, 2},
				{5, 2, 1, 4, 3},
				{4, 6, 1, 3, 1},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return inst
}

type lineReader struct {
	sc     *bufio.Scanner
	line   int
	peeked *string
}

// next возвращает следующую непустую строку.
func (lr *lineReader) next() (string, error) {
	if lr.peeked != nil {
		s := *lr.peeked
		lr.peeked = nil
		if s != "" {
			return s, nil
		}
	}
	for lr.sc.Scan() {
		lr.line++
		s := strings.TrimSpace(lr.sc.Text())
		if s != "" {
			return s, nil
		}
	}
	if err := lr.sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("line %d: %w", lr.line+1, io.ErrUnexpectedEOF)
}

// skipHeader пропускает разделитель перед матрицей машины: пустые строки
// и строки, не начинающиеся с числа. Должна быть пропущена хотя бы одна строка.
func (lr *lineReader) skipHeader() error {
	skipped := 0
	for {
		if lr.peeked == nil {
			if !lr.sc.Scan() {
				if err := lr.sc.Err(); err != nil {
					return err
				}
				if skipped == 0 {
					return fmt.Errorf("line %d: %w", lr.line+1, io.ErrUnexpectedEOF)
				}
				return nil
			}
			lr.line++
			s := strings.TrimSpace(lr.sc.Text())
			lr.peeked = &s
		}
		s := *lr.peeked
		if startsWithNumber(s) {
			if skipped == 0 {
				return fmt.Errorf("line %d: expected setup matrix header", lr.line)
			}
			return nil
		}
		lr.peeked = nil
		skipped++
	}
}

func (lr *lineReader) ints(n int) ([]int, error) {
	s, err := lr.next()
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(s)
	if len(fields) < n {
		return nil, fmt.Errorf("line %d: expected %d values (got %d)", lr.line, n, len(fields))
	}
	out := make([]int, n)
	for i := 0; i < n; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lr.line, err)
		}
		out[i] = v
	}
	return out, nil
}

func startsWithNumber(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func writeRow(w *bufio.Writer, row []int) {
	for i, v := range row {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strconv.Itoa(v))
	}
	w.WriteByte('\n')
}
