package report

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/survey-tally/model"
)

// NoAnswer fills table cells of questions a response left unanswered.
const NoAnswer = "No answer provided"

type Row struct {
	ResponseID  int64     `json:"response"`
	SubmittedAt time.Time `json:"submitted_at"`
	Cells       []string  `json:"cells"`
}

type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// BuildTable lays out one row per response with one cell per question, in
// survey order.
func BuildTable(survey model.Survey, responses []model.Response) Table {
	l := newAnswerLookup(survey, responses)

	t := Table{
		Columns: append([]string{"Response ID", "Submitted At"}, questionTexts(survey)...),
		Rows:    make([]Row, len(responses)),
	}
	for ri, r := range responses {
		cells := make([]string, len(survey.Questions))
		for qi := range survey.Questions {
			text, ok := l.cell(ri, qi)
			if !ok {
				text = NoAnswer
			}
			cells[qi] = text
		}
		t.Rows[ri] = Row{ResponseID: r.ID, SubmittedAt: r.SubmittedAt, Cells: cells}
	}
	return t
}

// WriteCSV writes the responses as comma separated values: a header row with
// "Response ID" and the question texts, then one row per response. Every
// written cell is quoted; a question the response did not answer is an empty
// cell.
func WriteCSV(w io.Writer, survey model.Survey, responses []model.Response) error {
	l := newAnswerLookup(survey, responses)
	bw := bufio.NewWriter(w)

	header := append([]string{"Response ID"}, questionTexts(survey)...)
	for i, h := range header {
		writeCell(bw, i, h, true)
	}
	bw.WriteByte('\n')

	for ri, r := range responses {
		writeCell(bw, 0, strconv.FormatInt(r.ID, 10), true)
		for qi := range survey.Questions {
			text, ok := l.cell(ri, qi)
			writeCell(bw, qi+1, text, ok)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// CSV returns the output of WriteCSV as a string.
func CSV(survey model.Survey, responses []model.Response) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = WriteCSV(&sb, survey, responses)
	return sb.String()
}

var reSpaces = regexp.MustCompile(`\s+`)

// ExportFilename derives the download name for a survey's CSV export.
func ExportFilename(title string) string {
	return reSpaces.ReplaceAllLiteralString(title, "_") + "_responses.csv"
}

func writeCell(w *bufio.Writer, col int, text string, quoted bool) {
	if col > 0 {
		w.WriteByte(',')
	}
	if !quoted {
		return
	}
	w.WriteByte('"')
	w.WriteString(strings.ReplaceAll(text, `"`, `""`))
	w.WriteByte('"')
}

func questionTexts(survey model.Survey) []string {
	texts := make([]string, len(survey.Questions))
	for i, q := range survey.Questions {
		texts[i] = q.Text
	}
	return texts
}
