// util/notification_service.go

package util

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	logger "github.com/notyourkokoro/FDB/logging"
	"github.com/notyourkokoro/FDB/model"
)

// NotificationService publishes record-change notices. This is where a
// broker client would attach to carry invalidation signals to other gateway
// instances; in-process it only logs.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

func (n *NotificationService) NotifyRecordChange(ctx context.Context, changeType string, key model.ResourceKey, commitStamp int64) error {
	switch changeType {
	case "written":
		logger.Info("NOTIFICATION: Record written",
			zap.String("resource", key.String()),
			zap.Int64("commitStamp", commitStamp))
	case "invalidated":
		logger.Info("NOTIFICATION: Record invalidated",
			zap.String("resource", key.String()))
	default:
		return fmt.Errorf("unknown change type: %s", changeType)
	}

	return nil
}
