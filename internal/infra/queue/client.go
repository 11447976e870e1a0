package queue

import (
	"encoding/json"
	"fmt"

	"backend/internal/config"
	"backend/internal/worker/tasks"

	"github.com/hibiken/asynq"
)

// Client 任务队列客户端接口
type Client interface {
	EnqueueNotify(payload tasks.NotifySendPayload) error
	Close() error
}

type asynqClient struct {
	client *asynq.Client
	queue  string
}

// NewClient 创建任务队列客户端
func NewClient(cfg config.RedisConfig, queueName string) Client {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if queueName == "" {
		queueName = "notify"
	}
	return &asynqClient{client: client, queue: queueName}
}

// EnqueueNotify 投递一条通知发送任务
func (c *asynqClient) EnqueueNotify(payload tasks.NotifySendPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化通知任务失败: %w", err)
	}

	task := asynq.NewTask(tasks.TypeNotifySend, data)
	if _, err := c.client.Enqueue(task, asynq.Queue(c.queue), asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("投递通知任务失败: %w", err)
	}
	return nil
}

// Close 关闭底层连接
func (c *asynqClient) Close() error {
	return c.client.Close()
}
