package sanitize

import (
	"context"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

// Per-field maximum lengths (in runes). Oversized input is truncated, not
// rejected.
const (
	TitleMaxLen          = 200
	DescriptionMaxLen    = 5000
	MitigationPlanMaxLen = 5000
	CategoryMaxLen       = 100
)

// policy allows a small safelist of formatting elements and nothing else:
// no attributes, no scripts, forms, embeds or frames. Disallowed tags are
// stripped; script and style contents are removed entirely.
var policy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "strong", "em", "b", "i", "u",
		"ol", "ul", "li",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "code",
	)
	return p
}()

// Text strips unsafe markup from free text and trims surrounding
// whitespace. Idempotent: sanitizing already-sanitized text is a no-op.
func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}

func truncate(ctx context.Context, field, s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	logging.From(ctx).Warn("input exceeds maximum length, truncating",
		"field", field,
		"length", len(runes),
		"max", maxLen,
	)
	return string(runes[:maxLen])
}

// RiskInput sanitizes and truncates every text field of a create payload.
// Non-text fields pass through unchanged. The input is not mutated; a
// sanitized copy is returned.
func RiskInput(ctx context.Context, in model.RiskInput) model.RiskInput {
	in.Title = Text(truncate(ctx, "title", in.Title, TitleMaxLen))
	in.Description = Text(truncate(ctx, "description", in.Description, DescriptionMaxLen))
	in.Category = Text(truncate(ctx, "category", in.Category, CategoryMaxLen))
	in.MitigationPlan = Text(truncate(ctx, "mitigationPlan", in.MitigationPlan, MitigationPlanMaxLen))
	return in
}

// Category sanitizes and truncates a standalone category name
func Category(ctx context.Context, s string) string {
	return Text(truncate(ctx, "category", s, CategoryMaxLen))
}

// RiskUpdate sanitizes the text fields that are present on a partial
// update, leaving absent fields nil. The input is not mutated.
func RiskUpdate(ctx context.Context, u model.RiskUpdate) model.RiskUpdate {
	u.Title = sanitizeField(ctx, "title", u.Title, TitleMaxLen)
	u.Description = sanitizeField(ctx, "description", u.Description, DescriptionMaxLen)
	u.Category = sanitizeField(ctx, "category", u.Category, CategoryMaxLen)
	u.MitigationPlan = sanitizeField(ctx, "mitigationPlan", u.MitigationPlan, MitigationPlanMaxLen)
	return u
}

func sanitizeField(ctx context.Context, field string, v *string, maxLen int) *string {
	if v == nil {
		return nil
	}
	cleaned := Text(truncate(ctx, field, *v, maxLen))
	return &cleaned
}

// csvInjectionPattern matches any line that, after leading whitespace,
// begins with a spreadsheet formula trigger character.
var csvInjectionPattern = regexp.MustCompile(`(?m)^\s*[=+\-@]`)

// ValidateCSVContent reports whether a CSV payload is free of formula
// injection patterns. It is applied once to the whole payload before
// parsing; a false result must abort the import entirely.
func ValidateCSVContent(csv string) bool {
	return !csvInjectionPattern.MatchString(csv)
}
