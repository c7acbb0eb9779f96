package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/smallbiznis/wxgate/internal/notify/domain"
)

type GormRepository struct{}

func Provide() domain.Repository {
	return &GormRepository{}
}

func (r *GormRepository) Insert(ctx context.Context, db *gorm.DB, record *domain.NotificationRecord) (bool, error) {
	if record == nil {
		return false, gorm.ErrInvalidData
	}
	res := db.WithContext(ctx).Exec(
		`INSERT INTO gateway_notifications (id, transaction_id, out_trade_no, result_code, fields, received_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (transaction_id) DO NOTHING`,
		record.ID,
		record.TransactionID,
		record.OutTradeNo,
		record.ResultCode,
		record.Fields,
		record.ReceivedAt,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepository) Find(ctx context.Context, db *gorm.DB, transactionID string) (*domain.NotificationRecord, error) {
	var row struct {
		ID            snowflake.ID `gorm:"column:id"`
		TransactionID string       `gorm:"column:transaction_id"`
		OutTradeNo    string       `gorm:"column:out_trade_no"`
		ResultCode    string       `gorm:"column:result_code"`
		Fields        []byte       `gorm:"column:fields"`
		ReceivedAt    time.Time    `gorm:"column:received_at"`
		ProcessedAt   *time.Time   `gorm:"column:processed_at"`
	}
	res := db.WithContext(ctx).Raw(
		`SELECT id, transaction_id, out_trade_no, result_code, fields, received_at, processed_at
		 FROM gateway_notifications
		 WHERE transaction_id = ?`,
		transactionID,
	).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &domain.NotificationRecord{
		ID:            row.ID,
		TransactionID: row.TransactionID,
		OutTradeNo:    row.OutTradeNo,
		ResultCode:    row.ResultCode,
		Fields:        row.Fields,
		ReceivedAt:    row.ReceivedAt,
		ProcessedAt:   row.ProcessedAt,
	}, nil
}

func (r *GormRepository) MarkProcessed(ctx context.Context, db *gorm.DB, id snowflake.ID, processedAt time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE gateway_notifications
		 SET processed_at = ?
		 WHERE id = ? AND processed_at IS NULL`,
		processedAt,
		id,
	).Error
}
