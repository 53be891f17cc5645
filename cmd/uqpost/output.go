package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vecma/uqpost/internal/pipeline"
	"github.com/vecma/uqpost/internal/reporting"
)

const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatMarkdown, formatJSON:
		return nil
	default:
		return fmt.Errorf("unsupported format %q: must be text, markdown or json", format)
	}
}

func writeReport(w io.Writer, report *reporting.Report, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatMarkdown:
		_, err := io.WriteString(w, report.Markdown())
		return err
	default:
		_, err := io.WriteString(w, report.Text())
		return err
	}
}

// reportingErr attributes a presentation failure to the reporting stage.
func reportingErr(err error) error {
	if err == nil {
		return nil
	}
	return &pipeline.StageError{Stage: pipeline.StageReporting, Err: err}
}
