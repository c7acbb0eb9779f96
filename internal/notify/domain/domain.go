package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

var (
	ErrMalformedPayload  = errors.New("malformed_payload")
	ErrBusinessFailure   = errors.New("business_failure")
	ErrSignatureMismatch = errors.New("signature_mismatch")
	ErrAlreadyProcessed  = errors.New("notification_already_processed")
)

// Result is a verified notification handed back to the caller. Fields carries
// the full decoded payload, sign included, for business processing.
type Result struct {
	TransactionID string
	OutTradeNo    string
	Fields        wire.Values
}

type Service interface {
	// HandleNotification runs one inbound gateway notification through
	// decode, business-result inspection, and signature verification. It
	// returns the verified payload, or one of the sentinel errors above.
	// ErrAlreadyProcessed still carries the verified Result: the gateway is
	// retrying a notification this process has already settled.
	HandleNotification(ctx context.Context, payload []byte) (*Result, error)
}

// NotificationRecord is the ledger row written for every verified
// notification so gateway redeliveries can be answered without reprocessing.
type NotificationRecord struct {
	ID            snowflake.ID
	TransactionID string
	OutTradeNo    string
	ResultCode    string
	Fields        datatypes.JSON
	ReceivedAt    time.Time
	ProcessedAt   *time.Time
}

type Repository interface {
	// Insert stores a record keyed by transaction id. It reports false when
	// a record with the same transaction id already exists.
	Insert(ctx context.Context, db *gorm.DB, record *NotificationRecord) (bool, error)
	Find(ctx context.Context, db *gorm.DB, transactionID string) (*NotificationRecord, error)
	MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error
}
