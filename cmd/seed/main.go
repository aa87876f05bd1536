package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/annealing"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-manager/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机负责人, 2: 插入随机人群并运行一次退火)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的负责人数量")
		} else {
			cnt := n
			for i := 0; i < n; i++ {
				owner, err := utils.GenerateRandomOwner(cfg.Seed.User.Password, cfg.Email.UserDomain)
				if err != nil {
					slog.Error("无法生成随机负责人", slog.String("error", err.Error()))
					continue
				}

				if err := repo.CreateUser(owner); err != nil {
					slog.Error("无法插入负责人", slog.String("error", err.Error()))
					continue
				}

				cnt--
			}

			slog.Info("插入负责人成功", slog.Int("count", n-cnt))
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的人群数量")
			return
		}

		owner, err := utils.GenerateRandomOwner(cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("无法生成随机负责人", slog.String("error", err.Error()))
			return
		}
		if err := repo.CreateUser(owner); err != nil {
			slog.Error("无法插入负责人", slog.String("error", err.Error()))
			return
		}

		cnt := n
		for i := 0; i < n; i++ {
			cohort := utils.GenerateRandomCohort(owner.ID)
			if err := repo.CreateCohort(cohort); err != nil {
				slog.Error("无法插入人群", slog.String("error", err.Error()))
				continue
			}

			if err := seedOneRun(repo, cohort, cfg); err != nil {
				slog.Error("无法为人群生成运行记录", slog.String("error", err.Error()))
				continue
			}

			cnt--
		}

		slog.Info("插入人群成功", slog.Int("count", n-cnt))
	default:
		slog.Error("指定的操作非法")
	}
}

// seedOneRun runs a short annealing pass against a freshly created
// cohort and persists its terminal state, so seeded data always has a
// non-trivial run attached to it.
func seedOneRun(repo *repository.Repository, cohort *domain.Cohort, cfg *config.Config) error {
	immM := make([]int, len(cohort.ImmovableM))
	for i, v := range cohort.ImmovableM {
		immM[i] = int(v)
	}
	immF := make([]int, len(cohort.ImmovableF))
	for i, v := range cohort.ImmovableF {
		immF[i] = int(v)
	}

	groupCount := int(cohort.GroupCount)
	state, err := annealing.NewState(groupCount, int(cohort.MaleCount)/groupCount, int(cohort.FemaleCount)/groupCount, int(cohort.DayCount))
	if err != nil {
		return err
	}
	if err := state.SetImmovableM(immM); err != nil {
		return err
	}
	if err := state.SetImmovableF(immF); err != nil {
		return err
	}

	run := &domain.Run{
		CohortID:   cohort.ID,
		Status:     domain.RunStatusPending,
		Iterations: 50_000,
	}
	if err := repo.CreateRun(run); err != nil {
		return err
	}
	if err := repo.MarkRunStarted(run); err != nil {
		return err
	}

	driver := annealing.NewDriver(state, cfg.Annealing.TStart, cfg.Annealing.TEnd)
	driver.Anneal(int(run.Iterations))

	run.Score = int32(state.Score())
	run.AverageContacts = state.AverageContactsPerPerson()
	male, female := state.Schedule()
	schedule := domain.RunSchedule{Male: male, Female: female}
	raw, err := json.Marshal(schedule)
	if err != nil {
		return err
	}
	run.Schedule = raw

	return repo.CompleteRun(run)
}
