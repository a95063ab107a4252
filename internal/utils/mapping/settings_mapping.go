package mapping

import (
	"github.com/lpgdepot/depot_backend/internal/core/domain"
	"github.com/lpgdepot/depot_backend/internal/models"
)

// ToModelVATSettings converts domain VATSettings to model VATSettings
func ToModelVATSettings(d domain.VATSettings) models.VATSettings {
	return models.VATSettings{
		Version:       d.Version,
		Registered:    d.Registered,
		Rate:          d.Rate,
		EffectiveDate: d.EffectiveDate,
		Mode:          d.Mode,
		UpdatedAt:     d.UpdatedAt,
		UpdatedBy:     d.UpdatedBy,
	}
}

// ToDomainVATSettings converts model VATSettings to domain VATSettings
func ToDomainVATSettings(m models.VATSettings) domain.VATSettings {
	return domain.VATSettings{
		Version:       m.Version,
		Registered:    m.Registered,
		Rate:          m.Rate,
		EffectiveDate: m.EffectiveDate,
		Mode:          m.Mode,
		UpdatedAt:     m.UpdatedAt,
		UpdatedBy:     m.UpdatedBy,
	}
}

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:       d.UserID,
		Username:     d.Username,
		Name:         d.Name,
		Role:         string(d.Role),
		PasswordHash: d.PasswordHash,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:       m.UserID,
		Username:     m.Username,
		Name:         m.Name,
		Role:         domain.UserRole(m.Role),
		PasswordHash: m.PasswordHash,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelAuditLog converts a domain AuditLog to a model AuditLog
func ToModelAuditLog(d domain.AuditLog) models.AuditLog {
	return models.AuditLog{
		AuditID:     d.AuditID,
		ActorUserID: d.ActorUserID,
		Action:      d.Action,
		EntityType:  d.EntityType,
		EntityID:    d.EntityID,
		Message:     d.Message,
		After:       d.After,
		CreatedAt:   d.CreatedAt,
	}
}
