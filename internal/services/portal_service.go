package services

import (
	"context"
	"time"

	"portal-api/internal/logger"
	"portal-api/internal/models"
	"portal-api/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PortalService interface {
	CreatePortal(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, name, slug string) (*models.Portal, error)
	GetPortal(ctx context.Context, id uuid.UUID) (*models.Portal, error)
	ListPortals(ctx context.Context, ownerID uuid.UUID) ([]models.Portal, error)
	SetCustomDomain(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, portalID uuid.UUID, domain *string) error
	AttachFile(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, file *models.PortalFile) error
	ListFiles(ctx context.Context, portalID uuid.UUID) ([]models.PortalFile, error)
	DeletePortal(ctx context.Context, ownerID, id uuid.UUID) error
}

type portalService struct {
	portalRepo     repository.PortalRepository
	portalFileRepo repository.PortalFileRepository
	quotaService   QuotaService
	auditLog       AuditLogService
}

func NewPortalService(
	portalRepo repository.PortalRepository,
	portalFileRepo repository.PortalFileRepository,
	quotaService QuotaService,
	auditLog AuditLogService,
) PortalService {
	return &portalService{
		portalRepo:     portalRepo,
		portalFileRepo: portalFileRepo,
		quotaService:   quotaService,
		auditLog:       auditLog,
	}
}

// CreatePortal checks the portal ceiling immediately before the insert.
// The check and the insert are not one transaction; two concurrent creates
// can overrun the ceiling by one, which is accepted.
func (s *portalService) CreatePortal(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, name, slug string) (*models.Portal, error) {
	quota, err := s.quotaService.CheckPortalLimit(ctx, ownerID, plan)
	if err != nil {
		return nil, err
	}
	if !quota.Allowed {
		return nil, &QuotaError{Result: quota}
	}

	portal := &models.Portal{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		Slug:      slug,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.portalRepo.Create(ctx, portal); err != nil {
		return nil, err
	}

	return portal, nil
}

func (s *portalService) GetPortal(ctx context.Context, id uuid.UUID) (*models.Portal, error) {
	return s.portalRepo.GetByID(ctx, id)
}

func (s *portalService) ListPortals(ctx context.Context, ownerID uuid.UUID) ([]models.Portal, error) {
	return s.portalRepo.ListByOwner(ctx, ownerID)
}

// SetCustomDomain gates on the custom-domain ceiling only when assigning a
// domain; clearing one is always allowed.
func (s *portalService) SetCustomDomain(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, portalID uuid.UUID, domain *string) error {
	portal, err := s.portalRepo.GetByID(ctx, portalID)
	if err != nil {
		return err
	}
	if portal.OwnerID != ownerID {
		return ErrNotPortalOwner
	}

	if domain != nil && portal.CustomDomain == nil {
		quota, err := s.quotaService.CheckCustomDomainLimit(ctx, ownerID, plan)
		if err != nil {
			return err
		}
		if !quota.Allowed {
			return &QuotaError{Result: quota}
		}
	}

	return s.portalRepo.SetCustomDomain(ctx, portalID, domain)
}

func (s *portalService) AttachFile(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, file *models.PortalFile) error {
	portal, err := s.portalRepo.GetByID(ctx, file.PortalID)
	if err != nil {
		return err
	}
	if portal.OwnerID != ownerID {
		return ErrNotPortalOwner
	}

	quota, err := s.quotaService.CheckStorageLimit(ctx, ownerID, plan)
	if err != nil {
		return err
	}
	if !quota.Allowed {
		return &QuotaError{Result: quota}
	}

	return s.portalFileRepo.Create(ctx, file)
}

func (s *portalService) ListFiles(ctx context.Context, portalID uuid.UUID) ([]models.PortalFile, error) {
	return s.portalFileRepo.ListByPortal(ctx, portalID)
}

func (s *portalService) DeletePortal(ctx context.Context, ownerID, id uuid.UUID) error {
	portal, err := s.portalRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if portal.OwnerID != ownerID {
		return ErrNotPortalOwner
	}

	if err := s.portalRepo.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.auditLog.CreateAuditLog(ctx, ownerID.String(), "delete", "portal", id.String(), portal.Name); err != nil {
		logger.LogEvent(logrus.WarnLevel, "Failed to write audit log", logrus.Fields{"error": err.Error()})
	}

	return nil
}
