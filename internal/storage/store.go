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

	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/sim"
)

const (
	metadataFile = "metadata.json"
	framesFile   = "frames.csv"
)

var framesHeader = []string{"step", "time", "id", "x", "y", "vx", "vy", "r"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo is what the caller knows about a run before it is saved.
type RunInfo struct {
	Name     string        `json:"name"`
	Seed     int64         `json:"seed"`
	Dt       float64       `json:"dt"`
	Duration float64       `json:"duration"`
	Policy   string        `json:"policy"`
	Order    string        `json:"order"`
	Bounds   dynamo.Bounds `json:"bounds"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	Steps      int                `json:"steps"`
	Frames     int                `json:"frames"`
	Particles  int                `json:"particles"`
	Contacts   int                `json:"contacts"`
	Degenerate int                `json:"degenerate"`
	WallHits   int                `json:"wall_hits"`
	Metrics    map[string]float64 `json:"metrics"`
}

func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(info.Name, now)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Timestamp:  now,
		RunInfo:    info,
		Steps:      result.StepsTaken,
		Frames:     len(result.Frames),
		Particles:  len(result.Final),
		Contacts:   result.Totals.Contacts,
		Degenerate: result.Totals.Degenerate,
		WallHits:   result.Totals.WallHits,
		Metrics:    result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeFrames(filepath.Join(runDir, framesFile), result.Frames); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(name string, now time.Time) (string, string, error) {
	if name == "" {
		name = "run"
	}
	base := fmt.Sprintf("%s_%d", name, now.Unix())
	runID := base
	for n := 2; ; n++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if os.IsNotExist(err) {
			if err := s.Init(); err != nil {
				return "", "", err
			}
			continue
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s_%d", base, n)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeFrames(path string, frames []sim.Frame) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(framesHeader); err != nil {
		return err
	}

	for _, fr := range frames {
		step := strconv.Itoa(fr.Step)
		t := strconv.FormatFloat(fr.Time, 'f', 6, 64)
		if len(fr.Particles) == 0 {
			if err := w.Write(emptyFrameRow(step, t)); err != nil {
				return err
			}
			continue
		}
		for _, p := range fr.Particles {
			row := []string{
				step,
				t,
				strconv.FormatUint(uint64(p.ID), 10),
				formatFloat(p.Position.X),
				formatFloat(p.Position.Y),
				formatFloat(p.Velocity.X),
				formatFloat(p.Velocity.Y),
				formatFloat(p.Radius()),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// emptyFrameRow marks a frame with no particles: step and time with every
// particle field left blank.
func emptyFrameRow(step, t string) []string {
	row := make([]string, len(framesHeader))
	row[0], row[1] = step, t
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
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

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// Latest returns the most recent run, or an error if there is none.
func (s *Store) Latest() (*RunMetadata, error) {
	runs, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs in %s", s.baseDir)
	}
	return &runs[len(runs)-1], nil
}

// LoadFrames reads the recorded frames back. Radii come back as BaseRadius
// with a Scale of 1.
func (s *Store) LoadFrames(runID string) ([]sim.Frame, error) {
	csvPath := filepath.Join(s.baseDir, runID, framesFile)
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(framesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	frames := make([]sim.Frame, 0)
	for i := 1; i < len(records); i++ {
		rec := records[i]
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
		}
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
		}
		if len(frames) == 0 || frames[len(frames)-1].Step != step {
			frames = append(frames, sim.Frame{Step: step, Time: t})
		}
		if rec[2] == "" {
			continue
		}

		id, err := strconv.ParseUint(rec[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
		}
		vals := make([]float64, 0, 5)
		for _, field := range rec[3:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", framesFile, i+1, err)
			}
			vals = append(vals, v)
		}

		fr := &frames[len(frames)-1]
		fr.Particles = append(fr.Particles, dynamo.Particle{
			ID:         dynamo.ID(id),
			Position:   dynamo.Vec3{X: vals[0], Y: vals[1]},
			Velocity:   dynamo.Vec3{X: vals[2], Y: vals[3]},
			BaseRadius: vals[4],
			Scale:      1,
		})
	}

	return frames, nil
}
