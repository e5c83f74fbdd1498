package models

import (
	"fmt"
	"sync"

	"gitlab.com/ghwlabs/gotradebot/helpers"
)

// NotificationQueue is a bounded FIFO of human-readable alerts. Past
// the cap the oldest messages are preserved and the newest dropped.
type NotificationQueue struct {
	mtx      sync.Mutex
	cap      int
	messages []string
}

func NewNotificationQueue(cap int) *NotificationQueue {
	return &NotificationQueue{cap: cap}
}

func (q *NotificationQueue) Queue(msg string) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if q.cap > 0 && len(q.messages) >= q.cap {
		helpers.Logger.Warnln(fmt.Sprintf("Notification backlog full, dropping: %s", msg))
		return
	}
	q.messages = append(q.messages, msg)
}

func (q *NotificationQueue) Peek() (string, bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if len(q.messages) == 0 {
		return "", false
	}
	return q.messages[0], true
}

func (q *NotificationQueue) Pop() (string, bool) {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	if len(q.messages) == 0 {
		return "", false
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, true
}

func (q *NotificationQueue) Len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()
	return len(q.messages)
}
