package usecase

import (
	"context"
	"errors"

	"audioshop/internal/apperr"
	"audioshop/internal/events"
	"audioshop/internal/logging"
)

// DBの想定外エラーはここでログに出してから包む
func dbError(ctx context.Context, op string, err error) error {
	logging.FromContext(ctx).Error("db error", "op", op, "err", err)
	return apperr.Database(err)
}

// WithinTxの戻り値。fnが返したapperrはそのまま、begin/commitの失敗だけDBエラーにする
func txError(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return dbError(ctx, op, err)
}

// commit後に呼ぶ。失敗はwarnで残すだけ
func publish(ctx context.Context, p events.Publisher, topic string, key string, ev events.Event) {
	if err := p.Publish(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event publish failed", "topic", topic, "type", ev.Type, "err", err)
	}
}
