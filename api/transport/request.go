package transport

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TaskCreateRequest struct {
	Title       string `json:"task_title"`
	Description string `json:"task_description"`
}

type TaskUpdateRequest struct {
	ID          int64  `json:"task_id"`
	Title       string `json:"task_title"`
	Description string `json:"task_description"`
}

type TaskDeleteRequest struct {
	ID int64 `json:"task_id"`
}
