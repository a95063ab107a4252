package mapping

import (
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/lpgdepot/depot_backend/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		Code:        d.Code,
		Name:        d.Name,
		AccountType: string(d.AccountType),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		Code:        m.Code,
		Name:        m.Name,
		AccountType: domain.AccountType(m.AccountType),
	}
}

// ToModelLedgerEntry converts a domain LedgerEntry to a model LedgerEntry
func ToModelLedgerEntry(d domain.LedgerEntry) models.LedgerEntry {
	return models.LedgerEntry{
		EntryID:       d.EntryID,
		ReferenceType: string(d.ReferenceType),
		ReferenceID:   d.ReferenceID,
		EntryDate:     d.EntryDate,
		Memo:          d.Memo,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}
}

// ToDomainLedgerEntry converts a model LedgerEntry to a domain LedgerEntry
func ToDomainLedgerEntry(m models.LedgerEntry) domain.LedgerEntry {
	return domain.LedgerEntry{
		EntryID:       m.EntryID,
		ReferenceType: domain.ReferenceType(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		EntryDate:     m.EntryDate,
		Memo:          m.Memo,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

// ToModelLedgerLine converts a domain LedgerLine to a model LedgerLine
func ToModelLedgerLine(d domain.LedgerLine) models.LedgerLine {
	return models.LedgerLine{
		LineID:        d.LineID,
		EntryID:       d.EntryID,
		LineSeq:       d.LineSeq,
		AccountCode:   d.AccountCode,
		Description:   d.Description,
		Debit:         d.Debit,
		Credit:        d.Credit,
		Cleared:       d.Cleared,
		BankRef:       d.BankRef,
		EntryDate:     d.EntryDate,
		ReferenceType: string(d.ReferenceType),
		ReferenceID:   d.ReferenceID,
		AccountName:   d.AccountName,
		CreatedAt:     d.CreatedAt,
		PostedBy:      d.PostedBy,
	}
}

// ToDomainLedgerLine converts a model LedgerLine to a domain LedgerLine
func ToDomainLedgerLine(m models.LedgerLine) domain.LedgerLine {
	return domain.LedgerLine{
		LineID:        m.LineID,
		EntryID:       m.EntryID,
		LineSeq:       m.LineSeq,
		AccountCode:   m.AccountCode,
		Description:   m.Description,
		Debit:         m.Debit,
		Credit:        m.Credit,
		Cleared:       m.Cleared,
		BankRef:       m.BankRef,
		EntryDate:     m.EntryDate,
		ReferenceType: domain.ReferenceType(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		AccountName:   m.AccountName,
		CreatedAt:     m.CreatedAt,
		PostedBy:      m.PostedBy,
	}
}
