package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/annealing"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/utils"
)

// buildState materializes the annealing core's State from a cohort's
// persisted geometry, a pure translation with no I/O of its own.
func buildState(cohort *domain.Cohort) (*annealing.State, error) {
	groupCount := int(cohort.GroupCount)
	state, err := annealing.NewState(groupCount, int(cohort.MaleCount)/groupCount, int(cohort.FemaleCount)/groupCount, int(cohort.DayCount))
	if err != nil {
		return nil, err
	}

	immM := make([]int, len(cohort.ImmovableM))
	for i, v := range cohort.ImmovableM {
		immM[i] = int(v)
	}
	immF := make([]int, len(cohort.ImmovableF))
	for i, v := range cohort.ImmovableF {
		immF[i] = int(v)
	}
	if err := state.SetImmovableM(immM); err != nil {
		return nil, err
	}
	if err := state.SetImmovableF(immF); err != nil {
		return nil, err
	}

	return state, nil
}

func scheduleFromState(state *annealing.State) json.RawMessage {
	male, female := state.Schedule()
	raw, _ := json.Marshal(domain.RunSchedule{Male: male, Female: female})
	return raw
}

func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	cohort := r.Context().Value(CohortCtx).(*domain.Cohort)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Iterations int64 `json:"iterations"`
	}
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if req.Iterations <= 0 {
		req.Iterations = h.config.Annealing.DefaultIterations
	}

	run := &domain.Run{
		CohortID:   cohort.ID,
		Status:     domain.RunStatusPending,
		Iterations: int32(req.Iterations),
	}
	if err := h.repository.CreateRun(run); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if req.Iterations <= h.config.Annealing.MaxSyncIterations {
		h.executeRun(cohort, myInfo, run)
		h.successResponse(w, r, "运行已完成", run)
		return
	}

	go h.executeRun(cohort, myInfo, run)
	h.successResponse(w, r, "运行已开始", run)
}

// executeRun drives the annealing core to completion and persists its
// terminal state. The core itself never touches the database or the
// queue — that is this function's job. (The core does read the wall
// clock, to seed its shuffles and the driver's PRNG.)
func (h *Handler) executeRun(cohort *domain.Cohort, owner *domain.User, run *domain.Run) {
	if err := h.repository.MarkRunStarted(run); err != nil {
		slog.Error("无法将运行标记为进行中", "runID", run.ID, "error", err)
		return
	}

	state, err := buildState(cohort)
	if err != nil {
		slog.Error("无法构建退火状态", "runID", run.ID, "error", err)
		_ = h.repository.MarkRunFailed(run)
		return
	}

	driver := annealing.NewDriver(state, h.config.Annealing.TStart, h.config.Annealing.TEnd)
	driver.Anneal(int(run.Iterations))

	run.Score = int32(state.Score())
	run.AverageContacts = state.AverageContactsPerPerson()
	run.Schedule = scheduleFromState(state)

	if err := h.repository.CompleteRun(run); err != nil {
		slog.Error("无法保存运行结果", "runID", run.ID, "error", err)
		return
	}

	if err := h.redisClient.Set(context.Background(), fmt.Sprintf("cohort_%d_best_score", cohort.ID), run.Score, 24*time.Hour).Err(); err != nil {
		slog.Error("无法缓存最佳分数", "runID", run.ID, "error", err)
	}

	h.publishRunCompleted(owner, cohort, run)
}

func (h *Handler) publishRunCompleted(owner *domain.User, cohort *domain.Cohort, run *domain.Run) {
	mailMessage := domain.MailMessage{
		Type: domain.MailTypeRunCompleted,
		To:   owner.Email,
		Data: domain.RunCompletedMailData{
			FullName:        owner.FullName,
			CohortName:      cohort.Name,
			Score:           run.Score,
			AverageContacts: run.AverageContacts,
			Iterations:      run.Iterations,
		},
	}

	mailData, err := json.Marshal(mailMessage)
	if err != nil {
		slog.Error("无法序列化通知邮件", "runID", run.ID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.mailChannel.PublishWithContext(
		ctx,
		"",
		"annealing_notifications",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        mailData,
		},
	); err != nil {
		slog.Error("无法发布运行完成通知", "runID", run.ID, "error", err, "owner", utils.Slug(owner.FullName))
	}
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	cohort := r.Context().Value(CohortCtx).(*domain.Cohort)
	run := r.Context().Value(RunCtx).(*domain.Run)

	// 运行记录已由 run 中间件从数据库读出；运行进行中时，用 redis 中缓存的
	// 该人群最近一次完成运行的分数代替尚未产生的分数
	if run.Status == domain.RunStatusRunning {
		ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.Redis.OperationExpiration)*time.Second)
		defer cancel()

		cached, err := h.redisClient.Get(ctx, fmt.Sprintf("cohort_%d_best_score", cohort.ID)).Int()
		if err == nil {
			run.Score = int32(cached)
		}
	}

	h.successResponse(w, r, "获取运行状态成功", run)
}

func (h *Handler) GetLatestRunForCohort(w http.ResponseWriter, r *http.Request) {
	cohort := r.Context().Value(CohortCtx).(*domain.Cohort)

	run, err := h.repository.GetLatestRunForCohort(cohort.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "该人群还没有运行记录", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取最新运行记录成功", run)
}

func (h *Handler) GetAllRunsForCohort(w http.ResponseWriter, r *http.Request) {
	cohort := r.Context().Value(CohortCtx).(*domain.Cohort)

	runs, err := h.repository.GetAllRunsForCohort(cohort.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取运行记录列表成功", runs)
}
