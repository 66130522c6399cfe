package worker

import (
	"context"
	"encoding/json"

	"github.com/creative-products/internal/logger"
	"github.com/creative-products/internal/provider"
	"github.com/creative-products/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPaymentTimeout, c.handleOrderPaymentTimeout)
}

// handleOrderPaymentTimeout 到点检查订单是否仍未支付，未支付则标记失败。
// 订单此时可能已经支付，条件更新保证不会覆盖已支付状态。
func (c *Consumer) handleOrderPaymentTimeout(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_payment_timeout_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPaymentTimeoutPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_payment_timeout_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_payment_timeout_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}

	expired, err := c.OrderService.MarkExpired(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_payment_timeout_mark_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if expired {
		logger.Infow("worker_payment_timeout_order_failed", "order_id", payload.OrderID)
	} else {
		logger.Debugw("worker_payment_timeout_order_already_settled", "order_id", payload.OrderID)
	}
	return nil
}
