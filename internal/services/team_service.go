package services

import (
	"context"
	"errors"
	"time"

	"portal-api/internal/models"
	"portal-api/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNotPortalOwner = errors.New("portal does not belong to the user")
	ErrNotTeamOwner   = errors.New("team does not belong to the user")
)

type TeamService interface {
	CreateTeam(ctx context.Context, ownerID uuid.UUID, name string) (*models.Team, error)
	ListTeams(ctx context.Context, ownerID uuid.UUID) ([]models.Team, error)
	AddMember(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, teamID, memberID uuid.UUID, role string) error
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	RemoveMember(ctx context.Context, ownerID, teamID, memberID uuid.UUID) error
}

type teamService struct {
	teamRepo     repository.TeamRepository
	quotaService QuotaService
}

func NewTeamService(teamRepo repository.TeamRepository, quotaService QuotaService) TeamService {
	return &teamService{
		teamRepo:     teamRepo,
		quotaService: quotaService,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, ownerID uuid.UUID, name string) (*models.Team, error) {
	team := &models.Team{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      name,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) ListTeams(ctx context.Context, ownerID uuid.UUID) ([]models.Team, error) {
	return s.teamRepo.ListByOwner(ctx, ownerID)
}

// AddMember checks the seat ceiling immediately before the insert. Same
// accepted check-then-act window as portal creation.
func (s *teamService) AddMember(ctx context.Context, ownerID uuid.UUID, plan models.SubscriptionPlan, teamID, memberID uuid.UUID, role string) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != ownerID {
		return ErrNotTeamOwner
	}

	quota, err := s.quotaService.CheckTeamMemberLimit(ctx, ownerID, plan)
	if err != nil {
		return err
	}
	if !quota.Allowed {
		return &QuotaError{Result: quota}
	}

	if role == "" {
		role = "member"
	}

	return s.teamRepo.AddMember(ctx, &models.TeamMember{
		ID:        uuid.New(),
		TeamID:    teamID,
		UserID:    memberID,
		Role:      role,
		CreatedAt: time.Now(),
	})
}

func (s *teamService) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	return s.teamRepo.ListMembers(ctx, teamID)
}

func (s *teamService) RemoveMember(ctx context.Context, ownerID, teamID, memberID uuid.UUID) error {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.OwnerID != ownerID {
		return ErrNotTeamOwner
	}

	return s.teamRepo.RemoveMember(ctx, teamID, memberID)
}
