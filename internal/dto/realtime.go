package dto

// ── 变更推送模块 DTO ──

// UpdateStatusResponse 活性指示响应
// connected 是启发式信号：距上次事件超过阈值即视为离线，
// 并非传输层连通性检查
type UpdateStatusResponse struct {
	Connected  bool   `json:"connected"`
	LastUpdate string `json:"last_update,omitempty"` // RFC3339，尚无事件时为空
}

// ChangeEventResponse SSE 推送的变更事件
type ChangeEventResponse struct {
	Table  string `json:"table"`  // courses | course_files | assignments
	Action string `json:"action"` // insert | update | delete
	RowID  string `json:"row_id"`
	Title  string `json:"title,omitempty"` // 提示文案用
	At     string `json:"at"`              // RFC3339
}
