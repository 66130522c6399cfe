package queue

import (
	"encoding/json"

	"github.com/creative-products/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPaymentTimeout 订单支付超时任务
	TaskOrderPaymentTimeout = constants.TaskOrderPaymentTimeout
)

// OrderPaymentTimeoutPayload 订单支付超时任务载荷
type OrderPaymentTimeoutPayload struct {
	OrderID uint `json:"order_id"`
}

// NewOrderPaymentTimeoutTask 创建订单支付超时任务
func NewOrderPaymentTimeoutTask(payload OrderPaymentTimeoutPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPaymentTimeout, body), nil
}
