package util

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrEmailRegistered         = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrPermissionDenied        = errors.New("permission denied")
	ErrSkillNotFound           = errors.New("skill not found")
	ErrTemplateNotFound        = errors.New("test template not found or inactive")
	ErrSectionNotFound         = errors.New("test section not found")
	ErrQuestionNotFound        = errors.New("question not found")
	ErrAssessmentNotFound      = errors.New("assessment not found")
	ErrAssessmentNotInProgress = errors.New("assessment is not in progress")
	ErrAssessmentNotCompleted  = errors.New("assessment has not been completed")
)
