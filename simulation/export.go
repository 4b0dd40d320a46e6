package simulation

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

var csvHeader = []string{"train", "edge", "timestep", "position", "speed", "orientation"}

// WriteCSV 以CSV格式写出全部采样点
// 功能：每个采样点一行，列车按集合顺序，采样点按时间顺序
func (s *TrainTrajectorySet) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, name := range s.trains {
		t := s.trajectories[name]
		for _, et := range t.edges {
			edge := et.Edge().Name
			for _, st := range et.states {
				if err := cw.Write([]string{
					name,
					edge,
					strconv.FormatFloat(st.Timestep, 'f', -1, 64),
					strconv.FormatFloat(st.Position, 'f', -1, 64),
					strconv.FormatFloat(st.Speed, 'f', -1, 64),
					strconv.FormatBool(st.Orientation),
				}); err != nil {
					return err
				}
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV 将全部采样点写入文件
func (s *TrainTrajectorySet) ExportCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := s.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Infof("exported %d samples to %s", s.SampleCount(), path)
	return nil
}
