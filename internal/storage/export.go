package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/radialsim/internal/sim"
)

type ExportFrame struct {
	Step      int              `json:"step"`
	Time      float64          `json:"time"`
	Particles []ExportParticle `json:"particles"`
}

type ExportParticle struct {
	ID     uint64  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"r"`
}

type ExportData struct {
	RunMetadata
	Trajectory []ExportFrame `json:"trajectory"`
}

func exportFrames(frames []sim.Frame) []ExportFrame {
	out := make([]ExportFrame, len(frames))
	for i, fr := range frames {
		ps := make([]ExportParticle, len(fr.Particles))
		for j, p := range fr.Particles {
			ps[j] = ExportParticle{
				ID:     uint64(p.ID),
				X:      p.Position.X,
				Y:      p.Position.Y,
				VX:     p.Velocity.X,
				VY:     p.Velocity.Y,
				Radius: p.Radius(),
			}
		}
		out[i] = ExportFrame{Step: fr.Step, Time: fr.Time, Particles: ps}
	}
	return out
}

// ExportJSON writes a saved run, metadata and frames, as one JSON document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: *meta, Trajectory: exportFrames(frames)})
}

func (s *Store) ExportJSONFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.ExportJSON(runID, file)
}
