package context

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/user/brainassist/internal/types"
)

// OrganizationBlock formats the timetable and task list for first-turn
// injection in organization mode.
func OrganizationBlock(tt types.Timetable, tasks []types.Task) string {
	timetable := tt.Content
	if timetable == "" {
		timetable = "No fixed timetable provided."
	}

	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		status := "TODO"
		if t.IsCompleted {
			status = "COMPLETED"
		}
		due := t.DueDate
		if due == "" {
			due = "N/A"
		}
		note := ""
		if t.Comment != "" {
			note = "Note: " + t.Comment
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (Due: %s) %s", status, t.Title, due, note))
	}

	return "\n[SYSTEM DATA INJECTION - STRICT CONTEXT]\n" +
		"The user has provided the following personal data. USE THIS to generate the response.\n\n" +
		"CURRENT TIMETABLE:\n" + timetable + "\n\n" +
		"CURRENT TASK LIST:\n" + strings.Join(lines, "\n") + "\n\n" +
		"INSTRUCTION: Analyze this data to provide a concrete, realistic plan.\n"
}

// ProfileBlock is appended to the mode instruction when personalization is on.
func ProfileBlock(p types.UserProfile) string {
	return "\n[SYSTEM CONTEXT: USER PROFILE]\n" +
		"User Name: " + p.Name + "\n" +
		"User Bio: " + p.Bio + "\n\n" +
		"INSTRUCTION: Address the user by their name occasionally. Adapt your tone to be personalized, encouraging, and relevant to their bio.\n"
}

// AnalyticsBlock summarizes study sessions and grades for analytics mode.
// Hours are rounded, not floored, so 90 minutes reads "2h 30m".
func AnalyticsBlock(sessions []types.StudySession, grades []types.SubjectGrade) string {
	total := 0
	bySubject := make(map[string]int)
	for _, s := range sessions {
		total += s.DurationMinutes
		bySubject[s.Subject] += s.DurationMinutes
	}
	if grades == nil {
		grades = []types.SubjectGrade{}
	}
	subjectJSON, _ := json.Marshal(bySubject)
	gradesJSON, _ := json.Marshal(grades)

	hours := int(math.Round(float64(total) / 60))
	return "\n[SYSTEM DATA INJECTION - ANALYTICS]\n" +
		"RAW STUDY DATA:\n" +
		fmt.Sprintf("- Total Study Time: %dh %dm\n", hours, total%60) +
		fmt.Sprintf("- Sessions Count: %d\n", len(sessions)) +
		"- Time per Subject: " + string(subjectJSON) + "\n" +
		"- Grades/Performance: " + string(gradesJSON) + "\n\n" +
		"INSTRUCTION: Act as an expert data analyst. Use these numbers to derive insights. Highlight strengths and weaknesses. Warn if study time doesn't correlate with grades.\n"
}

// Inject prefixes a user request with a context block.
func Inject(block, text string) string {
	return block + "\n\nUser Request: " + text
}
