package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/wxgate/internal/config"
	"github.com/smallbiznis/wxgate/internal/notify/domain"
	"github.com/smallbiznis/wxgate/internal/observability/logger"
	"github.com/smallbiznis/wxgate/internal/wxpay/sign"
	"github.com/smallbiznis/wxgate/internal/wxpay/wire"
)

const (
	returnCodeSuccess = "SUCCESS"
	returnCodeFail    = "FAIL"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Cfg   config.Config
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	apiKey string
}

func NewService(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("notify.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		apiKey: p.Cfg.APIKey,
	}
}

func (s *Service) HandleNotification(ctx context.Context, payload []byte) (*domain.Result, error) {
	values, err := wire.Decode(payload)
	if err != nil {
		s.log.Warn("notification body rejected", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}

	switch values.Get("return_code") {
	case returnCodeSuccess:
	case returnCodeFail:
		// Failure notifications are not signed the same way; there is
		// nothing further to trust, so no hashing happens on this path.
		reason := values.Get("return_msg")
		s.log.Info("gateway reported business failure",
			zap.String("return_msg", reason),
			zap.String("out_trade_no", values.Get("out_trade_no")),
		)
		if reason == "" {
			return nil, domain.ErrBusinessFailure
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrBusinessFailure, reason)
	default:
		return nil, fmt.Errorf("%w: missing or unknown return_code", domain.ErrMalformedPayload)
	}

	if !sign.Verify(values, s.apiKey) {
		s.log.Warn("notification signature mismatch, possible forgery",
			zap.String("out_trade_no", values.Get("out_trade_no")),
			zap.String("transaction_id", values.Get("transaction_id")),
			zap.String("sign", logger.MaskSignature(values.Get(sign.Field))),
		)
		return nil, domain.ErrSignatureMismatch
	}

	result := &domain.Result{
		TransactionID: values.Get("transaction_id"),
		OutTradeNo:    values.Get("out_trade_no"),
		Fields:        values,
	}

	if err := s.record(ctx, result, values); err != nil {
		return result, err
	}
	return result, nil
}

// record writes the notification ledger entry. Redeliveries of a settled
// notification come back as ErrAlreadyProcessed so the HTTP layer can
// acknowledge without reprocessing.
func (s *Service) record(ctx context.Context, result *domain.Result, values wire.Values) error {
	key := result.TransactionID
	if key == "" {
		key = result.OutTradeNo
	}
	if key == "" {
		// Nothing to dedup on; the payload is still verified.
		return nil
	}

	fields, err := json.Marshal(values)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record := &domain.NotificationRecord{
		ID:            s.genID.Generate(),
		TransactionID: key,
		OutTradeNo:    result.OutTradeNo,
		ResultCode:    values.Get("result_code"),
		Fields:        fields,
		ReceivedAt:    now,
	}

	inserted, err := s.repo.Insert(ctx, s.db, record)
	if err != nil {
		return err
	}
	if !inserted {
		stored, err := s.repo.Find(ctx, s.db, key)
		if err != nil {
			return err
		}
		if stored == nil {
			return domain.ErrMalformedPayload
		}
		if stored.ProcessedAt != nil {
			s.log.Info("duplicate notification delivery",
				zap.String("transaction_id", key),
			)
			return domain.ErrAlreadyProcessed
		}
		record.ID = stored.ID
	}

	return s.repo.MarkProcessed(ctx, s.db, record.ID, now)
}
