package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type IterationRecord struct {
	Iteration int
	IterationMetric
}

type GameRecord struct {
	ID int
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of dir named by the current timestamp.
func NewWriter(dir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(dir, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteIterationRecords(records []IterationRecord) error {
	header := []string{"iteration", "selection_depth", "simulation_plies", "outcome", "truncated"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Iteration),
			strconv.Itoa(record.SelectionDepth),
			strconv.Itoa(record.SimulationPlies),
			record.Outcome.String(),
			strconv.FormatBool(record.Truncated),
		})
	}
	return w.write("iteration_records.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "outcome", "plies", "start_time", "end_time", "duration"}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.ID),
			record.Outcome.String(),
			strconv.Itoa(record.Plies),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		})
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{
		"game", "ply", "player", "move", "visits", "duration", "iterations",
		"full_playouts", "truncated", "mean_plies", "stddev_plies", "max_depth", "is_tree_reset",
	}
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Ply),
			record.Player.String(),
			record.Move.String(),
			strconv.Itoa(record.Visits),
			record.Duration.String(),
			strconv.Itoa(record.Iterations),
			strconv.Itoa(record.FullPlayouts),
			strconv.Itoa(record.Truncated),
			strconv.FormatFloat(record.MeanPlies, 'f', 2, 64),
			strconv.FormatFloat(record.StdDevPlies, 'f', 2, 64),
			strconv.Itoa(record.MaxDepth),
			strconv.FormatBool(record.IsTreeReset),
		})
	}
	return w.write("move_records.csv", header, rows)
}

// WriteGame stores the PGN of game id next to the CSV files.
func (w *Writer) WriteGame(id int, pgn string) error {
	path := filepath.Join(w.baseDir, fmt.Sprintf("game_%03d.pgn", id))
	if err := os.WriteFile(path, []byte(pgn), 0644); err != nil {
		return fmt.Errorf("failed to write game %d: %w", id, err)
	}
	return nil
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
