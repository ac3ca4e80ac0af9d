package transport

import "github.com/tasknest/backend/domain"

// TaskPayload is the wire form of a task.
type TaskPayload struct {
	ID          int64  `json:"task_id"`
	Title       string `json:"task_title"`
	Description string `json:"task_description"`
}

// Envelope is the full-state response returned by every operation: outcome
// metadata plus the caller's identity and their complete current task list.
// Clients never reconcile deltas.
type Envelope struct {
	UserID   int64         `json:"user_id"`
	Username string        `json:"username"`
	Tasks    []TaskPayload `json:"tasks"`
	Success  bool          `json:"success"`
	Message  string        `json:"message"`
}

// NewAnon builds the unauthenticated envelope carrying the sentinel identity.
func NewAnon(success bool, message string) Envelope {
	return Envelope{
		UserID:   domain.AnonUserID,
		Username: domain.AnonUsername,
		Tasks:    []TaskPayload{},
		Success:  success,
		Message:  message,
	}
}

// NewAuthenticated builds the envelope for a resolved identity.
func NewAuthenticated(identity domain.Identity, tasks []domain.Task, success bool, message string) Envelope {
	payload := make([]TaskPayload, 0, len(tasks))
	for _, t := range tasks {
		payload = append(payload, TaskPayload{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
		})
	}
	return Envelope{
		UserID:   identity.UserID,
		Username: identity.Username,
		Tasks:    payload,
		Success:  success,
		Message:  message,
	}
}
