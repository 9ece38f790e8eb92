package services

import (
	"context"
	"sort"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

const logsPath = "/logs"

type LogService struct {
	backend Backend
}

func NewLogService(b Backend) *LogService {
	return &LogService{backend: b}
}

func (s *LogService) List(ctx context.Context) ([]domain.SendLog, error) {
	out := []domain.SendLog{}
	if err := s.backend.Get(ctx, logsPath, &out); err != nil {
		return nil, toFailure(err)
	}
	return out, nil
}

// Recent returns the n newest logs.
func (s *LogService) Recent(ctx context.Context, n int) ([]domain.SendLog, error) {
	logs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].CreatedAt.After(logs[j].CreatedAt)
	})
	if len(logs) > n {
		logs = logs[:n]
	}
	return logs, nil
}

func (s *LogService) Stats(ctx context.Context) (*domain.LogStats, error) {
	var out domain.LogStats
	if err := s.backend.Get(ctx, logsPath+"/stats", &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *LogService) Get(ctx context.Context, id string) (*domain.SendLog, error) {
	var out domain.SendLog
	if err := s.backend.Get(ctx, itemPath(logsPath, id), &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}
