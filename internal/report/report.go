// Package report выводит решение в текстовом виде, диаграммой Ганта и в YAML.
package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"lahcPMS/internal/pms"
)

// Detailed печатает makespan и для каждой машины интервалы обработки работ.
func Detailed(w io.Writer, sol *pms.Solution) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Makespan (Cmax): %d\n\n", sol.Makespan())

	for m := 0; m < sol.NumMachines(); m++ {
		s := sol.MustSchedule(m)
		fmt.Fprintf(bw, "Machine %d (Completion: %d):\n", m, s.CompletionTime())
		if s.Len() == 0 {
			bw.WriteString("  [Empty]\n\n")
			continue
		}
		fmt.Fprintf(bw, "  Sequence: %s\n", sequence(s.Jobs()))
		for _, job := range s.Jobs() {
			start, end := s.StartTime(job).OrElse(0), s.EndTime(job).OrElse(0)
			fmt.Fprintf(bw, "    J%d: [%d -> %d] (duration: %d)\n", job, start, end, end-start)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

const ganttWidth = 50

// Gantt печатает диаграмму: · ожидание даты готовности, ░ переналадка, ▓ обработка.
func Gantt(w io.Writer, sol *pms.Solution) error {
	bw := bufio.NewWriter(w)
	inst := sol.Instance()
	makespan := sol.Makespan()
	scale := max(1, makespan/ganttWidth)

	bw.WriteString("Legend: ░=setup | ▓=processing | ·=release wait\n\n")
	for m := 0; m < sol.NumMachines(); m++ {
		s := sol.MustSchedule(m)
		fmt.Fprintf(bw, "M%d: ", m)

		t := 0
		prev := pms.NoJob
		for _, job := range s.Jobs() {
			setupStart := max(t, inst.ReleaseDate(job))
			if wait := setupStart - t; wait > 0 {
				bw.WriteString(strings.Repeat("·", cells(wait, scale)))
			}
			setup := inst.SetupTime(prev, job, m)
			bw.WriteString(strings.Repeat("░", cells(setup, scale)))

			p := inst.ProcessingTime(job, m)
			fmt.Fprintf(bw, "[J%d:%s]", job, strings.Repeat("▓", cells(p, scale)))

			t = setupStart + setup + p
			prev = job
		}

		fmt.Fprintf(bw, " (C=%d)", s.CompletionTime())
		if s.CompletionTime() == makespan {
			bw.WriteString(" <- BOTTLENECK")
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "\nMakespan (Cmax) = %d\n", makespan)
	return bw.Flush()
}

type yamlJob struct {
	Job   int `yaml:"job"`
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

type yamlMachine struct {
	Machine    int       `yaml:"machine"`
	Completion int       `yaml:"completion"`
	Bottleneck bool      `yaml:"bottleneck"`
	Jobs       []yamlJob `yaml:"jobs"`
}

type yamlSolution struct {
	Makespan int           `yaml:"makespan"`
	Complete bool          `yaml:"complete"`
	Machines []yamlMachine `yaml:"machines"`
}

// WriteYAML сериализует решение в YAML.
func WriteYAML(w io.Writer, sol *pms.Solution) error {
	makespan := sol.Makespan()
	doc := yamlSolution{
		Makespan: makespan,
		Complete: sol.IsComplete(),
		Machines: make([]yamlMachine, 0, sol.NumMachines()),
	}
	for m := 0; m < sol.NumMachines(); m++ {
		s := sol.MustSchedule(m)
		ym := yamlMachine{
			Machine:    m,
			Completion: s.CompletionTime(),
			Bottleneck: s.CompletionTime() == makespan,
			Jobs:       make([]yamlJob, 0, s.Len()),
		}
		for _, job := range s.Jobs() {
			ym.Jobs = append(ym.Jobs, yamlJob{
				Job:   job,
				Start: s.StartTime(job).OrElse(0),
				End:   s.EndTime(job).OrElse(0),
			})
		}
		doc.Machines = append(doc.Machines, ym)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func sequence(jobs []int) string {
	parts := make([]string, len(jobs))
	for i, j := range jobs {
		parts[i] = fmt.Sprintf("J%d", j)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// cells - ширина интервала в символах; ненулевой интервал занимает хотя бы один.
func cells(d, scale int) int {
	if d <= 0 {
		return 0
	}
	return max(1, d/scale)
}
