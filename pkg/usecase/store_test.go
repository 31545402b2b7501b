package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func addRisk(t *testing.T, store *usecase.RiskStore, title string, probability, impact int) *model.Risk {
	t.Helper()
	risk, err := store.AddRisk(context.Background(), model.RiskInput{
		Title:       title,
		Description: "Description of " + title,
		Probability: probability,
		Impact:      impact,
		Category:    "Security",
	})
	gt.NoError(t, err).Required()
	return risk
}

func TestAddRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("derives score, id and timestamps", func(t *testing.T) {
		store := usecase.New()
		risk, err := store.AddRisk(ctx, model.RiskInput{
			Title:       "Data center flood",
			Description: "Rack room is below the waterline",
			Probability: 3,
			Impact:      4,
		})
		gt.NoError(t, err).Required()

		gt.Number(t, risk.RiskScore).Equal(12)
		gt.Value(t, risk.Status).Equal(types.RiskStatusOpen)
		gt.B(t, risk.ID.String() == "").False()
		gt.B(t, risk.CreationDate.IsZero()).False()
		gt.Value(t, risk.LastModified).Equal(risk.CreationDate)
	})

	t.Run("clamps out-of-range levels", func(t *testing.T) {
		store := usecase.New()
		risk := addRisk(t, store, "Extreme", 10, 0)

		gt.Number(t, risk.Probability).Equal(5)
		gt.Number(t, risk.Impact).Equal(1)
		gt.Number(t, risk.RiskScore).Equal(5)
	})

	t.Run("newest risk is first", func(t *testing.T) {
		store := usecase.New()
		addRisk(t, store, "Older", 2, 2)
		newer := addRisk(t, store, "Newer", 2, 2)

		risks := store.Risks()
		gt.A(t, risks).Length(2)
		gt.Value(t, risks[0].ID).Equal(newer.ID)
	})

	t.Run("sanitizes text before validation", func(t *testing.T) {
		store := usecase.New()
		_, err := store.AddRisk(ctx, model.RiskInput{
			Title:       "<script>alert(1)</script>",
			Description: "Only markup in the title",
		})
		gt.Error(t, err).Is(usecase.ErrEmptyTitle)
	})

	t.Run("rejects empty title and description", func(t *testing.T) {
		store := usecase.New()

		_, err := store.AddRisk(ctx, model.RiskInput{Description: "no title"})
		gt.Error(t, err).Is(usecase.ErrEmptyTitle)

		_, err = store.AddRisk(ctx, model.RiskInput{Title: "no description"})
		gt.Error(t, err).Is(usecase.ErrEmptyDescription)

		gt.A(t, store.Risks()).Length(0)
	})

	t.Run("empty category falls back to default", func(t *testing.T) {
		store := usecase.New()
		risk, err := store.AddRisk(ctx, model.RiskInput{
			Title:       "Uncategorized",
			Description: "No category given",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, risk.Category).Equal(usecase.DefaultCategories[0])
	})

	t.Run("returned risk is a copy", func(t *testing.T) {
		store := usecase.New()
		risk := addRisk(t, store, "Original", 2, 2)
		risk.Title = "mutated by caller"

		gt.Value(t, store.Risks()[0].Title).Equal("Original")
	})
}

func TestUpdateRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("recomputes score from changed probability", func(t *testing.T) {
		store := usecase.New()
		risk := addRisk(t, store, "Scaling", 2, 3)

		p := 4
		updated, err := store.UpdateRisk(ctx, risk.ID, model.RiskUpdate{Probability: &p})
		gt.NoError(t, err).Required()
		gt.Number(t, updated.Probability).Equal(4)
		gt.Number(t, updated.Impact).Equal(3)
		gt.Number(t, updated.RiskScore).Equal(12)
	})

	t.Run("unknown id returns nil without mutation", func(t *testing.T) {
		store := usecase.New()
		addRisk(t, store, "Existing", 2, 2)

		title := "never applied"
		updated, err := store.UpdateRisk(ctx, types.NewRiskID(), model.RiskUpdate{Title: &title})
		gt.NoError(t, err)
		gt.B(t, updated == nil).True()
		gt.Value(t, store.Risks()[0].Title).Equal("Existing")
	})

	t.Run("nil fields keep current values", func(t *testing.T) {
		store := usecase.New()
		risk := addRisk(t, store, "Stable", 3, 3)

		status := types.RiskStatusMitigated
		updated, err := store.UpdateRisk(ctx, risk.ID, model.RiskUpdate{Status: &status})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("Stable")
		gt.Number(t, updated.RiskScore).Equal(9)
		gt.Value(t, updated.Status).Equal(types.RiskStatusMitigated)
	})

	t.Run("empty title is ignored, empty mitigation plan clears", func(t *testing.T) {
		store := usecase.New()
		risk := addRisk(t, store, "Keep my title", 2, 2)

		plan := "temporary plan"
		_, err := store.UpdateRisk(ctx, risk.ID, model.RiskUpdate{MitigationPlan: &plan})
		gt.NoError(t, err).Required()

		empty := ""
		updated, err := store.UpdateRisk(ctx, risk.ID, model.RiskUpdate{
			Title:          &empty,
			MitigationPlan: &empty,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Title).Equal("Keep my title")
		gt.Value(t, updated.MitigationPlan).Equal("")
	})

	t.Run("touches lastModified but not creationDate", func(t *testing.T) {
		store := usecase.New()
		risk := addRisk(t, store, "Timed", 2, 2)

		i := 5
		updated, err := store.UpdateRisk(ctx, risk.ID, model.RiskUpdate{Impact: &i})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.CreationDate).Equal(risk.CreationDate)
		gt.B(t, updated.LastModified.Before(risk.LastModified)).False()
	})
}

func TestDeleteRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the risk and refreshes derived state", func(t *testing.T) {
		store := usecase.New()
		keep := addRisk(t, store, "Keeper", 2, 2)
		doomed := addRisk(t, store, "Doomed", 5, 5)

		store.DeleteRisk(ctx, doomed.ID)

		risks := store.Risks()
		gt.A(t, risks).Length(1)
		gt.Value(t, risks[0].ID).Equal(keep.ID)
		gt.Number(t, store.Stats().MaxScore).Equal(4)
	})

	t.Run("double delete is a no-op", func(t *testing.T) {
		store := usecase.New()
		risk := addRisk(t, store, "Once", 2, 2)

		store.DeleteRisk(ctx, risk.ID)
		store.DeleteRisk(ctx, risk.ID)
		gt.A(t, store.Risks()).Length(0)
	})
}

func TestSetFilters(t *testing.T) {
	ctx := context.Background()

	t.Run("merge keeps unspecified fields", func(t *testing.T) {
		store := usecase.New()
		search := "outage"
		filters := store.SetFilters(ctx, model.FiltersUpdate{Search: &search})

		gt.Value(t, filters.Search).Equal("outage")
		gt.Value(t, filters.Category).Equal(model.FilterAll)

		status := "open"
		filters = store.SetFilters(ctx, model.FiltersUpdate{Status: &status})
		gt.Value(t, filters.Search).Equal("outage")
		gt.Value(t, filters.Status).Equal("open")
	})

	t.Run("refreshes the filtered view only", func(t *testing.T) {
		store := usecase.New()
		addRisk(t, store, "Server outage", 4, 4)
		addRisk(t, store, "Paper cut", 1, 1)

		before := store.Stats().UpdatedAt

		severity := "high"
		store.SetFilters(ctx, model.FiltersUpdate{Severity: &severity})

		filtered := store.FilteredRisks()
		gt.A(t, filtered).Length(1)
		gt.Value(t, filtered[0].Title).Equal("Server outage")
		gt.A(t, store.Risks()).Length(2)
		gt.Value(t, store.Stats().UpdatedAt).Equal(before)
	})
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("fires once per mutation with fresh derived state", func(t *testing.T) {
		store := usecase.New()

		var calls int
		var observedTotal int
		unsubscribe := store.Subscribe(func() {
			calls++
			observedTotal = store.Stats().Total
		})
		defer unsubscribe()

		addRisk(t, store, "First", 2, 2)
		gt.Number(t, calls).Equal(1)
		gt.Number(t, observedTotal).Equal(1)

		addRisk(t, store, "Second", 2, 2)
		gt.Number(t, calls).Equal(2)
		gt.Number(t, observedTotal).Equal(2)
	})

	t.Run("unsubscribe stops notifications", func(t *testing.T) {
		store := usecase.New()

		var calls int
		unsubscribe := store.Subscribe(func() { calls++ })
		addRisk(t, store, "Counted", 2, 2)
		unsubscribe()
		addRisk(t, store, "Not counted", 2, 2)

		gt.Number(t, calls).Equal(1)
	})

	t.Run("failed mutation does not notify", func(t *testing.T) {
		store := usecase.New()

		var calls int
		defer store.Subscribe(func() { calls++ })()

		_, err := store.AddRisk(ctx, model.RiskInput{Description: "no title"})
		gt.Error(t, err)
		gt.Number(t, calls).Equal(0)
	})
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()

	t.Run("export then import round-trips", func(t *testing.T) {
		store := usecase.New()
		addRisk(t, store, "Exported risk", 3, 4)

		other := usecase.New()
		count, err := other.ImportCSV(ctx, store.ExportCSV())
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(1)

		imported := other.Risks()[0]
		gt.Value(t, imported.Title).Equal("Exported risk")
		gt.Number(t, imported.RiskScore).Equal(12)
	})

	t.Run("imported records are prepended", func(t *testing.T) {
		store := usecase.New()
		existing := addRisk(t, store, "Existing", 2, 2)

		count, err := store.ImportCSV(ctx, "title,description\nImported,From file")
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(1)

		risks := store.Risks()
		gt.A(t, risks).Length(2)
		gt.Value(t, risks[0].Title).Equal("Imported")
		gt.Value(t, risks[1].ID).Equal(existing.ID)
	})

	t.Run("injection guard imports nothing", func(t *testing.T) {
		store := usecase.New()
		addRisk(t, store, "Untouched", 2, 2)

		count, err := store.ImportCSV(ctx, "title,description\n=cmd|'/C calc'!A0,evil")
		gt.Error(t, err)
		gt.Number(t, count).Equal(0)
		gt.A(t, store.Risks()).Length(1)
	})

	t.Run("export contains header and data rows", func(t *testing.T) {
		store := usecase.New()
		addRisk(t, store, "Row one", 2, 2)

		out := store.ExportCSV()
		gt.B(t, strings.HasPrefix(out, "id,title,description")).True()
		gt.B(t, strings.Contains(out, "Row one")).True()
	})
}

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()

	t.Run("seeds an empty store", func(t *testing.T) {
		store := usecase.New()
		count := store.SeedDemoData(ctx)

		gt.Number(t, count).Equal(3)
		gt.A(t, store.Risks()).Length(3)

		for _, risk := range store.Risks() {
			gt.B(t, risk.ID.String() == "").False()
			gt.Number(t, risk.RiskScore).Equal(risk.Probability * risk.Impact)
		}
	})

	t.Run("does nothing on a non-empty store", func(t *testing.T) {
		store := usecase.New()
		addRisk(t, store, "Already here", 2, 2)

		count := store.SeedDemoData(ctx)
		gt.Number(t, count).Equal(0)
		gt.A(t, store.Risks()).Length(1)
	})
}

func TestCategories(t *testing.T) {
	ctx := context.Background()

	t.Run("starts with defaults", func(t *testing.T) {
		store := usecase.New()
		gt.Value(t, store.Categories()).Equal(usecase.DefaultCategories)
	})

	t.Run("add appends a sanitized name", func(t *testing.T) {
		store := usecase.New()
		categories, err := store.AddCategory(ctx, "  Reputational ")
		gt.NoError(t, err).Required()
		gt.Value(t, categories[len(categories)-1]).Equal("Reputational")
	})

	t.Run("duplicates are case-insensitive no-ops", func(t *testing.T) {
		store := usecase.New()
		categories, err := store.AddCategory(ctx, "security")
		gt.NoError(t, err).Required()
		gt.A(t, categories).Length(len(usecase.DefaultCategories))
	})

	t.Run("blank name errors", func(t *testing.T) {
		store := usecase.New()
		_, err := store.AddCategory(ctx, "   ")
		gt.Error(t, err).Is(usecase.ErrEmptyCategory)
	})

	t.Run("custom list via option", func(t *testing.T) {
		store := usecase.New(usecase.WithCategories([]string{"Alpha", "Beta"}))
		gt.Value(t, store.Categories()).Equal([]string{"Alpha", "Beta"})

		risk, err := store.AddRisk(ctx, model.RiskInput{
			Title:       "Defaulted",
			Description: "Falls back to the first custom category",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, risk.Category).Equal("Alpha")
	})
}

func TestStats(t *testing.T) {
	t.Run("recomputed after every mutation", func(t *testing.T) {
		store := usecase.New()
		gt.Number(t, store.Stats().Total).Equal(0)

		risk := addRisk(t, store, "Tracked", 4, 4)
		s := store.Stats()
		gt.Number(t, s.Total).Equal(1)
		gt.Number(t, s.BySeverity[types.SeverityHigh]).Equal(1)
		gt.Number(t, s.MaxScore).Equal(16)

		store.DeleteRisk(context.Background(), risk.ID)
		gt.Number(t, store.Stats().Total).Equal(0)
	})
}
