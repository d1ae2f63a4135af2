package dto

import "assess-console/backend/internal/model"

// ── 评估参数模块 DTO ──

// StateResponse 前端消费的完整状态
type StateResponse struct {
	Data              []model.DisplayRecord    `json:"data"`
	SubjectOptions    []model.SubjectOption    `json:"subject_options"`
	StandardOptions   []model.StandardOption   `json:"standard_options"`
	AssessmentOptions []model.AssessmentOption `json:"assessment_options"`
	Loading           bool                     `json:"loading"`
	Error             string                   `json:"error,omitempty"`
}

// CreateParameterRequest 创建评估参数请求（对话框路径）
type CreateParameterRequest struct {
	SubjectID        *int   `json:"subject_id"`
	Actual           string `json:"actual"            binding:"omitempty,max=500"`
	Target           string `json:"target"            binding:"omitempty,max=500"`
	FulfilmentStatus string `json:"fulfilment_status" binding:"omitempty,max=50"`
	AssessmentID     *int   `json:"assessment_id"`
}

// UpdateParameterRequest 部分更新请求；nil 字段不变
type UpdateParameterRequest struct {
	SubjectID        *int    `json:"subject_id"`
	Actual           *string `json:"actual"            binding:"omitempty,max=500"`
	Target           *string `json:"target"            binding:"omitempty,max=500"`
	FulfilmentStatus *string `json:"fulfilment_status" binding:"omitempty,max=50"`
	AssessmentID     *int    `json:"assessment_id"`
}

// QuickAddResponse 快捷添加响应：临时 ID 在下一次完整拉取后被远端 ID 取代
type QuickAddResponse struct {
	ProvisionalID int `json:"provisional_id"`
}
