package handler

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/utils"
)

func (h *Handler) CreateCohort(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name        string  `json:"name" validate:"required"`
		GroupCount  int32   `json:"groupCount" validate:"required,min=1"`
		MaleCount   int32   `json:"maleCount" validate:"min=0"`
		FemaleCount int32   `json:"femaleCount" validate:"min=0"`
		DayCount    int32   `json:"dayCount" validate:"required,min=1"`
		ImmovableM  []int32 `json:"immovableM"`
		ImmovableF  []int32 `json:"immovableF"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateCohortGeometry(req.GroupCount, req.MaleCount, req.FemaleCount, req.DayCount); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if int64(req.MaleCount+req.FemaleCount) > int64(h.config.Annealing.MaxPopulation) {
		h.badRequest(w, r, errors.New("人群规模超出上限"))
		return
	}

	if req.ImmovableM == nil {
		req.ImmovableM = make([]int32, req.GroupCount)
	}
	if req.ImmovableF == nil {
		req.ImmovableF = make([]int32, req.GroupCount)
	}
	if err := utils.ValidateImmovableVector(req.ImmovableM, req.GroupCount, req.MaleCount/req.GroupCount); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateImmovableVector(req.ImmovableF, req.GroupCount, req.FemaleCount/req.GroupCount); err != nil {
		h.badRequest(w, r, err)
		return
	}

	cohort := &domain.Cohort{
		Name:        req.Name,
		GroupCount:  req.GroupCount,
		MaleCount:   req.MaleCount,
		FemaleCount: req.FemaleCount,
		DayCount:    req.DayCount,
		ImmovableM:  req.ImmovableM,
		ImmovableF:  req.ImmovableF,
		OwnerID:     myInfo.ID,
	}

	if err := h.repository.CreateCohort(cohort); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "cohorts_name_owner_id_key":
				h.errorResponse(w, r, "该名称的人群已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建人群成功", cohort)
}

func (h *Handler) GetCohortByID(w http.ResponseWriter, r *http.Request) {
	cohort := r.Context().Value(CohortCtx).(*domain.Cohort)
	h.successResponse(w, r, "获取人群成功", cohort)
}

func (h *Handler) GetAllCohorts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	cohorts, err := h.repository.GetAllCohortsByOwnerID(myInfo.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取人群列表成功", cohorts)
}

func (h *Handler) DeleteCohort(w http.ResponseWriter, r *http.Request) {
	cohort := r.Context().Value(CohortCtx).(*domain.Cohort)

	if err := h.repository.DeleteCohort(cohort.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除人群成功", nil)
}

// UpdateCohortImmovables is the only mutation an existing cohort
// supports: the immovable-slot vectors, re-validated against the
// cohort's fixed geometry.
func (h *Handler) UpdateCohortImmovables(w http.ResponseWriter, r *http.Request) {
	cohort := r.Context().Value(CohortCtx).(*domain.Cohort)

	var req struct {
		ImmovableM []int32 `json:"immovableM" validate:"required"`
		ImmovableF []int32 `json:"immovableF" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := utils.ValidateImmovableVector(req.ImmovableM, cohort.GroupCount, cohort.MaleCount/cohort.GroupCount); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := utils.ValidateImmovableVector(req.ImmovableF, cohort.GroupCount, cohort.FemaleCount/cohort.GroupCount); err != nil {
		h.badRequest(w, r, err)
		return
	}

	cohort.ImmovableM = req.ImmovableM
	cohort.ImmovableF = req.ImmovableF

	if err := h.repository.UpdateCohortImmovables(cohort); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新固定人数成功", cohort)
}
