// Package storage persists solve runs for later inspection: one directory
// per run holding metadata.json and iterations.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/armkin/internal/ik"
	"github.com/san-kum/armkin/internal/kinematics"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunMetadata summarizes one stored solve.
type RunMetadata struct {
	ID         string     `json:"id"`
	Profile    string     `json:"profile"`
	Timestamp  time.Time  `json:"timestamp"`
	Target     [6]float64 `json:"target"`
	Mask       [6]int     `json:"mask"`
	Seed       [6]float64 `json:"seed"`
	Success    bool       `json:"success"`
	Reason     string     `json:"reason,omitempty"`
	Iterations int        `json:"iterations"`
	Residual   float64    `json:"residual"`
	Joints     [6]float64 `json:"joints,omitempty"`
}

// Save persists a solve and its trace, returning the run id.
func (s *Store) Save(profile string, target kinematics.Pose, mask ik.AxisMask, seed [6]float64, res ik.Result, trace *ik.Trace) (string, error) {
	runID := fmt.Sprintf("solve_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Profile:    profile,
		Timestamp:  time.Now(),
		Target:     target.Array(),
		Mask:       mask.Ints(),
		Seed:       seed,
		Success:    res.Success,
		Iterations: res.Iterations,
		Residual:   res.Residual,
	}
	if res.Success {
		meta.Joints = res.Joints
	} else {
		meta.Reason = res.Reason.String()
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if trace == nil || len(trace.Samples) == 0 {
		return runID, nil
	}

	csvFile, err := os.Create(filepath.Join(runDir, "iterations.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"iteration", "residual", "pos_error", "cond", "clamped"}); err != nil {
		return "", err
	}
	for _, sample := range trace.Samples {
		row := []string{
			strconv.Itoa(sample.Iteration),
			strconv.FormatFloat(sample.Residual, 'f', 6, 64),
			strconv.FormatFloat(sample.PosError, 'f', 6, 64),
			strconv.FormatFloat(sample.Cond, 'g', 6, 64),
			strconv.Itoa(sample.Clamped),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

// Load reads one run's metadata.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns every stored run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.Load(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

// LoadTrace reads a run's per-iteration samples. Runs saved without a trace
// return an empty slice.
func (s *Store) LoadTrace(runID string) ([]ik.IterSample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "iterations.csv"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	samples := make([]ik.IterSample, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != 5 {
			return nil, fmt.Errorf("storage: malformed trace row in %s", runID)
		}
		it, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, err
		}
		residual, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, err
		}
		posErr, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, err
		}
		cond, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, err
		}
		clamped, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, err
		}
		samples = append(samples, ik.IterSample{
			Iteration: it,
			Residual:  residual,
			PosError:  posErr,
			Cond:      cond,
			Clamped:   clamped,
		})
	}
	return samples, nil
}
