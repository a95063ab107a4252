package mapping

import (
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/lpgdepot/depot_backend/internal/models"
)

// ToModelTurnoverRecord converts a domain TurnoverRecord to a model TurnoverRecord
func ToModelTurnoverRecord(d domain.TurnoverRecord) models.TurnoverRecord {
	return models.TurnoverRecord{
		TurnoverID:       d.TurnoverID,
		BusinessDate:     d.BusinessDate,
		CashierUserID:    d.CashierUserID,
		AccountantUserID: d.AccountantUserID,
		ExpectedCash:     d.ExpectedCash,
		ExpectedCashless: d.ExpectedCashless,
		ExpectedByMethod: d.ExpectedByMethod,
		CashCounted:      d.CashCounted,
		Note:             d.Note,
		Flagged:          d.Flagged,
		RecordedAt:       d.RecordedAt,
		SavedAt:          d.SavedAt,
		LastPostedCash:   d.LastPostedCash,
		PostedSeq:        d.PostedSeq,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTurnoverRecord converts a model TurnoverRecord to a domain TurnoverRecord
func ToDomainTurnoverRecord(m models.TurnoverRecord) domain.TurnoverRecord {
	return domain.TurnoverRecord{
		TurnoverID:       m.TurnoverID,
		BusinessDate:     m.BusinessDate,
		CashierUserID:    m.CashierUserID,
		AccountantUserID: m.AccountantUserID,
		ExpectedCash:     m.ExpectedCash,
		ExpectedCashless: m.ExpectedCashless,
		ExpectedByMethod: m.ExpectedByMethod,
		CashCounted:      m.CashCounted,
		Note:             m.Note,
		Flagged:          m.Flagged,
		RecordedAt:       m.RecordedAt,
		SavedAt:          m.SavedAt,
		LastPostedCash:   m.LastPostedCash,
		PostedSeq:        m.PostedSeq,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelCashlessTransaction converts a domain CashlessTransaction to a model CashlessTransaction
func ToModelCashlessTransaction(d domain.CashlessTransaction) models.CashlessTransaction {
	return models.CashlessTransaction{
		TransactionID:    d.TransactionID,
		BusinessDate:     d.BusinessDate,
		CashierUserID:    d.CashierUserID,
		MethodKey:        d.MethodKey,
		Amount:           d.Amount,
		Reference:        d.Reference,
		VerifiedAt:       d.VerifiedAt,
		VerifiedByUserID: d.VerifiedByUserID,
		CreatedAt:        d.CreatedAt,
	}
}

// ToDomainCashlessTransaction converts a model CashlessTransaction to a domain CashlessTransaction
func ToDomainCashlessTransaction(m models.CashlessTransaction) domain.CashlessTransaction {
	return domain.CashlessTransaction{
		TransactionID:    m.TransactionID,
		BusinessDate:     m.BusinessDate,
		CashierUserID:    m.CashierUserID,
		MethodKey:        m.MethodKey,
		Amount:           m.Amount,
		Reference:        m.Reference,
		VerifiedAt:       m.VerifiedAt,
		VerifiedByUserID: m.VerifiedByUserID,
		CreatedAt:        m.CreatedAt,
	}
}

// ToDomainDailyClose converts a model DailyClose to a domain DailyClose
func ToDomainDailyClose(m models.DailyClose) domain.DailyClose {
	return domain.DailyClose{
		BusinessDate:      m.BusinessDate,
		FinalizedByUserID: m.FinalizedByUserID,
		FinalizedAt:       m.FinalizedAt,
	}
}

// ToModelDailyClose converts a domain DailyClose to a model DailyClose
func ToModelDailyClose(d domain.DailyClose) models.DailyClose {
	return models.DailyClose{
		BusinessDate:      d.BusinessDate,
		FinalizedByUserID: d.FinalizedByUserID,
		FinalizedAt:       d.FinalizedAt,
	}
}
