package repository

import (
	"context"
	"portal-api/internal/models"
	"portal-api/internal/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Team, error)
	AddMember(ctx context.Context, member *models.TeamMember) error
	ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error)
	CountMembersByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error
}

type teamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) Create(ctx context.Context, team *models.Team) error {
	result := r.db.WithContext(ctx).Create(team)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to create team")
	}
	return nil
}

func (r *teamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	var team models.Team
	result := r.db.WithContext(ctx).First(&team, "id = ?", id)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, errors.Wrap(result.Error, "failed to get team by ID")
	}

	return &team, nil
}

func (r *teamRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Team, error) {
	var teams []models.Team

	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&teams).Error

	return teams, err
}

func (r *teamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	result := r.db.WithContext(ctx).Create(member)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to add team member")
	}
	return nil
}

func (r *teamRepository) ListMembers(ctx context.Context, teamID uuid.UUID) ([]models.TeamMember, error) {
	var members []models.TeamMember

	err := r.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at ASC").
		Find(&members).Error

	return members, err
}

// CountMembersByOwner counts members across all teams owned by the user. The
// owner seat is not included here; the quota engine adds it.
func (r *teamRepository) CountMembersByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64

	err := r.db.WithContext(ctx).Model(&models.TeamMember{}).
		Joins("JOIN teams ON teams.id = team_members.team_id").
		Where("teams.owner_id = ? AND teams.deleted_at IS NULL", ownerID).
		Count(&count).Error

	return count, err
}

func (r *teamRepository) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to remove team member")
	}
	if result.RowsAffected == 0 {
		return errors.ErrNotFound
	}
	return nil
}
