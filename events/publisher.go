// Package events 领域事件发布
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fintrack/config"
	"fintrack/logger"

	"github.com/rabbitmq/amqp091-go"
)

// 路由键
const (
	RoutingPlanSaved   = "ai_plan.saved"
	RoutingTransferred = "wallet.transferred"
)

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}

// Envelope 事件外层结构
type Envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// PlanSaved AI 计划保存事件
type PlanSaved struct {
	PlanID   uint   `json:"plan_id"`
	UserID   uint   `json:"user_id"`
	Title    string `json:"title"`
	Template string `json:"template"`
	Model    string `json:"model"`
	Tokens   int    `json:"tokens"`
}

// Transferred 钱包转账事件
type Transferred struct {
	UserID       uint   `json:"user_id"`
	FromWalletID uint   `json:"from_wallet_id"`
	ToWalletID   uint   `json:"to_wallet_id"`
	Amount       string `json:"amount"`
	Date         string `json:"date"`
}

// NewPublisher 未启用时返回 Noop
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}
	return NewAMQPPublisher(cfg.URL, cfg.Exchange)
}

// Noop 不发送任何消息
type Noop struct{}

// Publish 忽略事件
func (Noop) Publish(context.Context, string, any) error { return nil }

// Close 无操作
func (Noop) Close() error { return nil }

// AMQPPublisher 发布到 topic exchange
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

// NewAMQPPublisher 连接并声明 exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接 AMQP 失败: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("打开 channel 失败: %w", err)
	}
	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("声明 exchange 失败: %w", err)
	}
	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

// Publish 以持久化消息发送，超时 5 秒
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := Encode(routingKey, payload, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}
	logger.Component("events").DebugContext(ctx, "事件已发布", "routing_key", routingKey, "exchange", p.exchange)
	return nil
}

// Close 关闭 channel 与连接
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Encode 序列化事件
func Encode(routingKey string, payload any, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Envelope{Type: routingKey, OccurredAt: at.UTC(), Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("序列化事件失败: %w", err)
	}
	return body, nil
}
