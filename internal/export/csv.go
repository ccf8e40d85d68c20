package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/campustasks/internal/task"
)

// CSVHeader matches the column layout the seed loader reads back.
var CSVHeader = []string{
	"task_id", "title", "description", "category", "difficulty", "status",
	"latitude", "longitude", "location_name", "rewards", "estimated_duration",
	"course_code", "created_at", "due_date",
}

func ToCSV(tasks []task.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, tasks); err != nil {
		return err
	}
	return f.Close()
}

func WriteCSV(out io.Writer, tasks []task.Task) error {
	w := csv.NewWriter(out)

	if err := w.Write(CSVHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		minutes := ""
		if t.EstimatedMinutes != nil {
			minutes = strconv.Itoa(*t.EstimatedMinutes)
		}
		row := []string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Category),
			string(t.Difficulty),
			string(t.Status),
			strconv.FormatFloat(t.Location.Lat, 'f', -1, 64),
			strconv.FormatFloat(t.Location.Lng, 'f', -1, 64),
			t.Location.Name,
			strings.Join(t.Rewards, "、"),
			minutes,
			t.CourseName(),
			formatTime(t.CreatedAt),
			formatTime(t.DueAt),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(time.RFC3339)
}
