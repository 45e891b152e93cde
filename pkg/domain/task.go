package domain

import "fmt"

// TaskStatus is the lifecycle state of a remote task. It is owned by the
// remote scheduler; clients only request transitions.
type TaskStatus string

const (
	TaskWaiting  TaskStatus = "waiting"
	TaskRunning  TaskStatus = "running"
	TaskComplete TaskStatus = "complete"
	TaskError    TaskStatus = "error"
	TaskInvalid  TaskStatus = "invalid"
	TaskDeleted  TaskStatus = "deleted"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{TaskComplete, TaskRunning, TaskWaiting, TaskError, TaskInvalid, TaskDeleted}

// ParseTaskStatus validates a status string.
func ParseTaskStatus(s string) (TaskStatus, error) {
	for _, st := range TaskStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// NetworkStatus counts the tasks of a network per status.
type NetworkStatus map[TaskStatus]int

// Total returns the number of tasks across all statuses.
func (s NetworkStatus) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}
