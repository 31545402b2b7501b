package sanitize_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/service/sanitize"
)

func TestText(t *testing.T) {
	t.Run("keeps safelisted formatting tags", func(t *testing.T) {
		gt.Value(t, sanitize.Text("<b>bold</b> and <em>emphasis</em>")).
			Equal("<b>bold</b> and <em>emphasis</em>")
	})

	t.Run("removes script elements and their content", func(t *testing.T) {
		out := sanitize.Text("Hello <script>alert(1)</script>world")
		gt.B(t, strings.Contains(out, "script")).False()
		gt.B(t, strings.Contains(out, "alert")).False()
		gt.B(t, strings.Contains(out, "Hello")).True()
	})

	t.Run("strips disallowed tags but keeps their text", func(t *testing.T) {
		gt.Value(t, sanitize.Text(`<a href="https://evil.example">click</a>`)).Equal("click")
	})

	t.Run("drops attributes on allowed tags", func(t *testing.T) {
		gt.Value(t, sanitize.Text(`<p onclick="steal()">hi</p>`)).Equal("<p>hi</p>")
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		gt.Value(t, sanitize.Text("  padded value \n")).Equal("padded value")
	})

	t.Run("idempotent", func(t *testing.T) {
		inputs := []string{
			"plain text",
			"a &amp; b",
			"<b>kept</b>",
			"stripped <iframe>frame</iframe> text",
		}
		for _, in := range inputs {
			once := sanitize.Text(in)
			gt.Value(t, sanitize.Text(once)).Equal(once)
		}
	})
}

func TestRiskInput(t *testing.T) {
	ctx := context.Background()

	t.Run("sanitizes all text fields", func(t *testing.T) {
		in := model.RiskInput{
			Title:          "  <script>x</script>Outage  ",
			Description:    "<iframe>bad</iframe>details",
			Category:       " Security ",
			MitigationPlan: "<b>plan</b>",
			Probability:    3,
			Impact:         4,
		}
		out := sanitize.RiskInput(ctx, in)

		gt.Value(t, out.Title).Equal("Outage")
		gt.Value(t, out.Description).Equal("details")
		gt.Value(t, out.Category).Equal("Security")
		gt.Value(t, out.MitigationPlan).Equal("<b>plan</b>")
		gt.Number(t, out.Probability).Equal(3)
		gt.Number(t, out.Impact).Equal(4)

		// input itself is untouched
		gt.Value(t, in.Title).Equal("  <script>x</script>Outage  ")
	})

	t.Run("truncates oversized fields", func(t *testing.T) {
		in := model.RiskInput{
			Title:       strings.Repeat("a", sanitize.TitleMaxLen+50),
			Description: strings.Repeat("b", sanitize.DescriptionMaxLen+1),
			Category:    strings.Repeat("c", sanitize.CategoryMaxLen+1),
		}
		out := sanitize.RiskInput(ctx, in)

		gt.Number(t, len(out.Title)).Equal(sanitize.TitleMaxLen)
		gt.Number(t, len(out.Description)).Equal(sanitize.DescriptionMaxLen)
		gt.Number(t, len(out.Category)).Equal(sanitize.CategoryMaxLen)
	})
}

func TestRiskUpdate(t *testing.T) {
	ctx := context.Background()

	title := "  <u>new title</u>  "
	u := model.RiskUpdate{Title: &title}
	out := sanitize.RiskUpdate(ctx, u)

	gt.Value(t, *out.Title).Equal("<u>new title</u>")
	gt.Value(t, out.Description == nil).Equal(true)
	gt.Value(t, out.Probability == nil).Equal(true)

	// original pointer target untouched
	gt.Value(t, title).Equal("  <u>new title</u>  ")
}

func TestValidateCSVContent(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		ok   bool
	}{
		{"clean payload", "id,title\n1,Server outage", true},
		{"formula at start", "=cmd|'/C calc'!A0", false},
		{"formula after leading whitespace", "   =1+2", false},
		{"plus at line start", "+1234", false},
		{"minus at line start", "-1234", false},
		{"at sign at line start", "@SUM(A1)", false},
		{"formula on later line", "id,title\n=cmd|x,evil", false},
		{"formula mid-field is allowed", "id,note\n1,total=5", true},
		{"empty payload", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok {
				gt.B(t, sanitize.ValidateCSVContent(tt.csv)).True()
			} else {
				gt.B(t, sanitize.ValidateCSVContent(tt.csv)).False()
			}
		})
	}
}
