package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/rigid2d/internal/body"
	"github.com/san-kum/rigid2d/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
	energyFile   = "energy.csv"
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

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Gravity   float64            `json:"gravity"`
	Bodies    int                `json:"bodies"`
	Steps     int                `json:"steps"`
	Metrics   map[string]float64 `json:"metrics"`
}

// TraceRow is one body in one recorded frame.
type TraceRow struct {
	Step int     `csv:"step"`
	Time float64 `csv:"time"`
	ID   uint64  `csv:"id"`
	Kind string  `csv:"kind"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
	VX   float64 `csv:"vx"`
	VY   float64 `csv:"vy"`
}

type EnergyRow struct {
	Time   float64 `csv:"time"`
	Energy float64 `csv:"energy"`
}

// Save writes meta and result into a new run directory and returns the run
// id. The ID, Timestamp and Steps fields of meta are filled in.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Scene, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	if meta.Metrics == nil {
		meta.Metrics = result.Metrics
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, traceFile), TraceRows(result)); err != nil {
		return "", fmt.Errorf("writing trace: %w", err)
	}
	if err := writeCSV(filepath.Join(runDir, energyFile), EnergyRows(result)); err != nil {
		return "", fmt.Errorf("writing energy: %w", err)
	}

	return meta.ID, nil
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(rows, f)
}

// TraceRows flattens the recorded frames of result.
func TraceRows(result *sim.Result) []*TraceRow {
	rows := make([]*TraceRow, 0)
	for _, f := range result.Frames {
		for _, b := range f.Bodies {
			rows = append(rows, &TraceRow{
				Step: f.Step,
				Time: f.Time,
				ID:   b.ID,
				Kind: b.Kind.String(),
				X:    b.X,
				Y:    b.Y,
				VX:   b.VX,
				VY:   b.VY,
			})
		}
	}
	return rows
}

func EnergyRows(result *sim.Result) []*EnergyRow {
	rows := make([]*EnergyRow, 0, len(result.Times))
	for i, t := range result.Times {
		rows = append(rows, &EnergyRow{Time: t, Energy: result.Energy[i]})
	}
	return rows
}

// List returns the stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]*TraceRow, error) {
	rows := []*TraceRow{}
	if err := readCSV(filepath.Join(s.baseDir, runID, traceFile), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadEnergy returns the energy series of a run as parallel slices.
func (s *Store) LoadEnergy(runID string) (times, energy []float64, err error) {
	rows := []*EnergyRow{}
	if err := readCSV(filepath.Join(s.baseDir, runID, energyFile), &rows); err != nil {
		return nil, nil, err
	}

	times = make([]float64, len(rows))
	energy = make([]float64, len(rows))
	for i, r := range rows {
		times[i] = r.Time
		energy[i] = r.Energy
	}
	return times, energy, nil
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.UnmarshalFile(f, out)
}

// LoadResult rebuilds a Result from the stored series. Frames carry only
// the traced fields.
func (s *Store) LoadResult(runID string) (*RunMetadata, *sim.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	times, energy, err := s.LoadEnergy(runID)
	if err != nil {
		return nil, nil, err
	}
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}

	result := &sim.Result{
		Times:      times,
		Energy:     energy,
		Metrics:    meta.Metrics,
		StepsTaken: meta.Steps,
	}
	for _, r := range trace {
		kind, err := body.ParseKind(r.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("trace step %d: %w", r.Step, err)
		}
		n := len(result.Frames)
		if n == 0 || result.Frames[n-1].Step != r.Step {
			result.Frames = append(result.Frames, sim.Frame{Step: r.Step, Time: r.Time})
			n++
		}
		f := &result.Frames[n-1]
		f.Bodies = append(f.Bodies, body.Snapshot{ID: r.ID, Kind: kind, X: r.X, Y: r.Y, VX: r.VX, VY: r.VY})
	}
	return meta, result, nil
}

type ExportData struct {
	Meta   RunMetadata `json:"meta"`
	Times  []float64   `json:"times"`
	Energy []float64   `json:"energy"`
	Frames []sim.Frame `json:"frames"`
}

// WriteJSON encodes a run as indented JSON.
func WriteJSON(w io.Writer, meta RunMetadata, result *sim.Result) error {
	data := ExportData{
		Meta:   meta,
		Times:  result.Times,
		Energy: result.Energy,
		Frames: result.Frames,
	}
	if data.Meta.Metrics == nil {
		data.Meta.Metrics = result.Metrics
	}
	if data.Meta.Steps == 0 {
		data.Meta.Steps = result.StepsTaken
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSON writes a run to path, or to stdout when path is "-".
func ExportJSON(path string, meta RunMetadata, result *sim.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, meta, result)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result)
}
