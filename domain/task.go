package domain

// Task is a user-owned to-do item. The id is assigned by storage on creation
// and the owner never changes afterwards. Titles are unique across all tasks,
// not per owner.
type Task struct {
	ID          int64  `json:"task_id"`
	OwnerID     int64  `json:"-"`
	Title       string `json:"task_title"`
	Description string `json:"task_description"`
}
