package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/csvcodec"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
)

func (s *Server) listFilteredRisks(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.store.FilteredRisks())
}

func (s *Server) listAllRisks(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.store.Risks())
}

func (s *Server) createRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var input model.RiskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid risk payload"), http.StatusBadRequest)
		return
	}

	risk, err := s.store.AddRisk(ctx, input)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyTitle) || errors.Is(err, usecase.ErrEmptyDescription) {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, risk)
}

func (s *Server) updateRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := types.RiskID(chi.URLParam(r, "id"))

	var update model.RiskUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid update payload"), http.StatusBadRequest)
		return
	}

	risk, err := s.store.UpdateRisk(ctx, id, update)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}
	if risk == nil {
		errutil.HandleHTTP(ctx, w, goerr.New("risk not found", goerr.V("id", id)), http.StatusNotFound)
		return
	}

	writeJSON(ctx, w, http.StatusOK, risk)
}

func (s *Server) deleteRisk(w http.ResponseWriter, r *http.Request) {
	s.store.DeleteRisk(r.Context(), types.RiskID(chi.URLParam(r, "id")))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) setFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var update model.FiltersUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid filters payload"), http.StatusBadRequest)
		return
	}

	writeJSON(ctx, w, http.StatusOK, s.store.SetFilters(ctx, update))
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.store.Stats())
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string][]string{
		"categories": s.store.Categories(),
	})
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "invalid category payload"), http.StatusBadRequest)
		return
	}

	categories, err := s.store.AddCategory(ctx, payload.Name)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, map[string][]string{
		"categories": categories,
	})
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="risks.csv"`)
	w.Write([]byte(s.store.ExportCSV())) //nolint:errcheck // header already committed
}

func (s *Server) importCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, s.importBodyLimit))
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read import body"), http.StatusBadRequest)
		return
	}

	count, err := s.store.ImportCSV(ctx, string(body))
	if err != nil {
		if errors.Is(err, csvcodec.ErrInjectionDetected) {
			errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
			return
		}
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, w, http.StatusOK, map[string]int{"imported": count})
}

func (s *Server) seedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(ctx, w, http.StatusOK, map[string]int{"seeded": s.store.SeedDemoData(ctx)})
}
