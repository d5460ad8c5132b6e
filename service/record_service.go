// service/record_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notyourkokoro/FDB/audit"
	"github.com/notyourkokoro/FDB/cache"
	"github.com/notyourkokoro/FDB/client"
	gateway_errors "github.com/notyourkokoro/FDB/errors"
	logger "github.com/notyourkokoro/FDB/logging"
	"github.com/notyourkokoro/FDB/model"
	"github.com/notyourkokoro/FDB/util"
)

const (
	EventRecordWritten = "record.written"
	EventGatewayAccess = "gateway.access"
)

// RecordWrittenEvent is published after a committed write.
type RecordWrittenEvent struct {
	Key         model.ResourceKey
	CommitStamp int64
}

// IRecordService is the gateway's request surface: authenticate, authorize,
// then serve through the cache coordinator.
type IRecordService interface {
	GetRecord(ctx context.Context, credential string, key model.ResourceKey) (*model.Record, error)
	PutRecord(ctx context.Context, credential string, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error)
}

// RecordService runs each request through the gateway state machine:
// Received -> Authenticating -> Authorizing -> Serving -> Responding.
// The authorization check happens strictly before any cache or storage
// access, so a warm cache can never leak a record to a denied identity.
type RecordService struct {
	authClient      client.IAuthClient
	coordinator     *cache.Coordinator
	validationUtil  *util.ValidationUtil
	notificationSvc *util.NotificationService
	eventBus        *util.EventBus
}

// NewRecordService creates a new instance of RecordService
func NewRecordService(
	authClient client.IAuthClient,
	coordinator *cache.Coordinator,
	validationUtil *util.ValidationUtil,
	notificationSvc *util.NotificationService,
	auditSvc audit.Service,
	eventBus *util.EventBus,
) *RecordService {
	service := &RecordService{
		authClient:      authClient,
		coordinator:     coordinator,
		validationUtil:  validationUtil,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
	}

	// Set up event subscriptions
	eventBus.Subscribe(EventRecordWritten, service.handleRecordWritten)
	eventBus.Subscribe(EventGatewayAccess, func(ctx context.Context, event util.Event) error {
		accessLog, ok := event.Payload.(audit.AccessLog)
		if !ok {
			return fmt.Errorf("invalid event payload type: %T", event.Payload)
		}
		return auditSvc.LogAccess(ctx, accessLog)
	})

	return service
}

func (s *RecordService) handleRecordWritten(ctx context.Context, event util.Event) error {
	written, ok := event.Payload.(RecordWrittenEvent)
	if !ok {
		logger.Error("Invalid event payload type", zap.Any("payload", event.Payload))
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}

	return s.notificationSvc.NotifyRecordChange(ctx, "written", written.Key, written.CommitStamp)
}

// authorize resolves the credential and checks the permission for the
// requested key/operation. Both failure classes reject the request before
// the coordinator is ever consulted.
func (s *RecordService) authorize(ctx context.Context, credential string, key model.ResourceKey, op model.Operation) (*model.Identity, error) {
	identity, err := s.authClient.Authorize(ctx, credential)
	if err != nil {
		return nil, err
	}

	granted := s.authClient.CheckPermission(identity, key, op)
	s.publishAccess(ctx, identity, key, op, granted)

	if !granted {
		logger.Warn("Permission denied",
			zap.String("userID", identity.UserID),
			zap.String("resource", key.String()),
			zap.String("operation", string(op)))
		return nil, fmt.Errorf("identity %s may not %s %s: %w",
			identity.UserID, op, key.String(), gateway_errors.ErrForbidden)
	}

	return identity, nil
}

func (s *RecordService) publishAccess(ctx context.Context, identity *model.Identity, key model.ResourceKey, op model.Operation, granted bool) {
	reason := ""
	if !granted {
		reason = "permission denied"
	}
	s.eventBus.Publish(ctx, EventGatewayAccess, audit.AccessLog{
		Timestamp:    time.Now().UTC(),
		UserID:       identity.UserID,
		Operation:    string(op),
		ResourceType: key.Type,
		ResourceID:   key.ID,
		Qualifier:    key.Qualifier,
		Granted:      granted,
		Reason:       reason,
	})
}

// GetRecord serves a read through the cache coordinator.
func (s *RecordService) GetRecord(ctx context.Context, credential string, key model.ResourceKey) (*model.Record, error) {
	if err := s.validationUtil.ValidateResourceKey(key); err != nil {
		return nil, fmt.Errorf("%s: %w", err.Error(), gateway_errors.ErrInvalidRequest)
	}

	if _, err := s.authorize(ctx, credential, key, model.OperationRead); err != nil {
		return nil, err
	}

	record, err := s.coordinator.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	return record, nil
}

// PutRecord commits a write through the coordinator and fans out the
// record-change event after the caller-visible work is done.
func (s *RecordService) PutRecord(ctx context.Context, credential string, key model.ResourceKey, payload json.RawMessage, expectedVersion int64) (int64, error) {
	if err := s.validationUtil.ValidateResourceKey(key); err != nil {
		return 0, fmt.Errorf("%s: %w", err.Error(), gateway_errors.ErrInvalidRequest)
	}
	if err := s.validationUtil.ValidateWritePayload(payload); err != nil {
		return 0, fmt.Errorf("%s: %w", err.Error(), gateway_errors.ErrInvalidRequest)
	}
	if err := s.validationUtil.ValidateExpectedVersion(expectedVersion); err != nil {
		return 0, fmt.Errorf("%s: %w", err.Error(), gateway_errors.ErrInvalidRequest)
	}

	identity, err := s.authorize(ctx, credential, key, model.OperationWrite)
	if err != nil {
		return 0, err
	}

	commitStamp, err := s.coordinator.Put(ctx, key, payload, expectedVersion)
	if err != nil {
		return 0, err
	}

	logger.Info("Record written",
		zap.String("userID", identity.UserID),
		zap.String("resource", key.String()),
		zap.Int64("commitStamp", commitStamp))

	s.eventBus.Publish(ctx, EventRecordWritten, RecordWrittenEvent{
		Key:         key,
		CommitStamp: commitStamp,
	})

	return commitStamp, nil
}
