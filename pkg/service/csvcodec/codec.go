package csvcodec

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/sanitize"
	"github.com/secmon-lab/riskregister/pkg/service/scoring"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// ErrInjectionDetected signals that an import payload matched a formula
// injection pattern. The whole import is aborted; nothing is parsed.
var ErrInjectionDetected = goerr.New("csv payload matches formula injection pattern")

// columns is the fixed export column order. Import is header-driven and
// does not depend on this order.
var columns = []string{
	"id",
	"title",
	"description",
	"probability",
	"impact",
	"riskScore",
	"category",
	"status",
	"mitigationPlan",
	"creationDate",
	"lastModified",
}

// Codec serializes risk collections to CSV and parses CSV payloads back
// into validated risk records.
type Codec struct {
	defaultCategory string
}

// New creates a Codec. defaultCategory is assigned to imported rows whose
// category is empty after sanitization.
func New(defaultCategory string) *Codec {
	return &Codec{defaultCategory: defaultCategory}
}

// quote wraps a free-text field in double quotes, doubling internal ones
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Export emits a header row followed by one row per risk, preserving
// collection order. Free-text fields are always quoted; numeric, status
// and category fields are not.
func (x *Codec) Export(risks []*model.Risk) string {
	rows := make([]string, 0, len(risks)+1)
	rows = append(rows, strings.Join(columns, ","))

	for _, r := range risks {
		rows = append(rows, strings.Join([]string{
			r.ID.String(),
			quote(r.Title),
			quote(r.Description),
			strconv.Itoa(r.Probability),
			strconv.Itoa(r.Impact),
			strconv.Itoa(r.RiskScore),
			r.Category,
			r.Status.String(),
			quote(r.MitigationPlan),
			r.CreationDate.UTC().Format(time.RFC3339Nano),
			r.LastModified.UTC().Format(time.RFC3339Nano),
		}, ","))
	}

	return strings.Join(rows, "\n")
}

// Import parses a CSV payload into risk records. Column order is resolved
// from the header row. Rows missing a title or description are dropped
// with a warning. Probability and impact default to 1 when unparsable and
// are clamped; the score is always recomputed, never trusted from the
// file. Text fields are re-sanitized. Returns ErrInjectionDetected and no
// records when the payload fails the injection guard.
func (x *Codec) Import(ctx context.Context, payload string) ([]*model.Risk, error) {
	if !sanitize.ValidateCSVContent(payload) {
		return nil, goerr.Wrap(ErrInjectionDetected, "rejecting csv import")
	}

	reader := csv.NewReader(strings.NewReader(payload))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read csv header")
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}

	field := func(record []string, name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	now := time.Now().UTC()
	var risks []*model.Risk

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				logging.From(ctx).Warn("skipping malformed csv row",
					"line", pe.Line, "error", err.Error())
				continue
			}
			return risks, goerr.Wrap(err, "failed to read csv payload")
		}

		title := sanitize.Text(field(record, "title"))
		description := sanitize.Text(field(record, "description"))
		if title == "" || description == "" {
			logging.From(ctx).Warn("dropping csv row without title or description")
			continue
		}

		probability := parseLevel(field(record, "probability"))
		impact := parseLevel(field(record, "impact"))

		id := types.RiskID(field(record, "id"))
		if id == "" {
			id = types.NewRiskID()
		}

		category := sanitize.Text(field(record, "category"))
		if category == "" {
			category = x.defaultCategory
		}

		risks = append(risks, &model.Risk{
			ID:             id,
			Title:          title,
			Description:    description,
			Probability:    scoring.Clamp(probability),
			Impact:         scoring.Clamp(impact),
			RiskScore:      scoring.Score(probability, impact),
			Category:       category,
			Status:         types.RiskStatus(field(record, "status")).Normalize(),
			MitigationPlan: sanitize.Text(field(record, "mitigationPlan")),
			CreationDate:   parseTime(field(record, "creationDate"), now),
			LastModified:   parseTime(field(record, "lastModified"), now),
		})
	}

	return risks, nil
}

// parseLevel parses a probability/impact cell, defaulting to 1 for empty,
// unparsable or zero values. Clamping happens at the caller.
func parseLevel(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n == 0 {
		return 1
	}
	return n
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fallback
	}
	return ts.UTC()
}
