package service

import (
	"context"
	"errors"
	"time"

	"skill_matrix_backend/internal/repository"
	"skill_matrix_backend/internal/util"
	"skill_matrix_backend/pkg/logger"
	"skill_matrix_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// AutoSubmitService sweeps for timed sessions whose clock has run out
// and finalizes them, so a candidate who walks away still gets scored.
type AutoSubmitService struct {
	assessmentRepo    *repository.AssessmentRepository
	assessmentService *AssessmentService
	interval          time.Duration
}

func NewAutoSubmitService(assessmentRepo *repository.AssessmentRepository,
	assessmentService *AssessmentService, interval time.Duration) *AutoSubmitService {
	return &AutoSubmitService{
		assessmentRepo:    assessmentRepo,
		assessmentService: assessmentService,
		interval:          interval,
	}
}

// Run sweeps on a fixed interval until the context is canceled.
func (s *AutoSubmitService) Run(ctx context.Context) {
	logger.Log.Info("Assessment expiry sweep started",
		zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Assessment expiry sweep stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep finalizes every expired open session it can find. One bad
// session must not stall the rest, so failures are logged and skipped.
func (s *AutoSubmitService) Sweep() {
	assessments, err := s.assessmentRepo.FindInProgressWithTimeLimit()
	if err != nil {
		logger.Log.Error("Expiry sweep query failed", zap.Error(err))
		return
	}

	for i := range assessments {
		a := &assessments[i]
		finalized, err := s.assessmentService.FinalizeExpired(a)
		if errors.Is(err, util.ErrAssessmentNotInProgress) {
			// The candidate submitted between the query and this pass.
			monitoring.AutoSubmitCounter.WithLabelValues("lost_race").Inc()
			continue
		}
		if err != nil {
			monitoring.AutoSubmitCounter.WithLabelValues("error").Inc()
			logger.Log.Error("Failed to auto-submit expired assessment",
				zap.String("assessmentId", a.ID), zap.Error(err))
			continue
		}
		if finalized {
			monitoring.AutoSubmitCounter.WithLabelValues("submitted").Inc()
			logger.Log.Info("Expired assessment auto-submitted",
				zap.String("assessmentId", a.ID),
				zap.String("employeeId", a.EmployeeID))
		}
	}
}
