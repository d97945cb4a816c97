package scheduler

import (
	"encoding/json"

	"spartan_estimator/internal/leads/domain"

	"github.com/hibiken/asynq"
)

const TaskLeadNotification = "leads.notify"

type LeadNotificationPayload struct {
	To   string      `json:"to"`
	Lead domain.Lead `json:"lead"`
}

func NewLeadNotificationTask(payload LeadNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadNotification, data), nil
}

func ParseLeadNotificationPayload(task *asynq.Task) (LeadNotificationPayload, error) {
	var payload LeadNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadNotificationPayload{}, err
	}
	return payload, nil
}
