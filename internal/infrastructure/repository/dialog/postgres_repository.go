package dialog

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "jan-server/services/dialog-api/internal/domain/dialog"
	"jan-server/services/dialog-api/internal/infrastructure/database/entities"
	"jan-server/services/dialog-api/internal/infrastructure/metrics"
	"jan-server/services/dialog-api/internal/infrastructure/observability"
)

// Repository persists dialogs and their favorites.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a dialog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the dialog record. The pair must already be normalized.
func (r *Repository) Create(ctx context.Context, d *domain.Dialog) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "dialog.create")
	defer span.End()
	defer observe("dialog_create", time.Now(), &err)

	entity := entities.NewSchemaDialog(d)
	if createErr := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; createErr != nil {
		if isUniqueViolation(createErr) {
			metrics.RecordDialogCreateConflict()
			return dialogConflict(ctx, d.ParticipantA, d.ParticipantB, createErr)
		}
		if isCheckViolation(createErr) {
			return invalidPair(ctx, d.ParticipantA, d.ParticipantB, createErr)
		}
		observability.RecordError(span, createErr, "high")
		return databaseError(ctx, "failed to create dialog", createErr, "dialog-create-db-error")
	}

	metrics.RecordDialogCreated()
	d.ID = entity.ID
	d.CreatedAt = entity.CreatedAt
	return nil
}

// FindByID fetches a dialog by its id.
func (r *Repository) FindByID(ctx context.Context, id uint) (d *domain.Dialog, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "dialog.find_by_id", observability.DialogAttributes(id)...)
	defer span.End()
	defer observe("dialog_find", time.Now(), &err)

	var entity entities.Dialog
	if findErr := r.db.WithContext(ctx).Preload("Favorites").First(&entity, id).Error; findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, dialogNotFound(ctx, map[string]any{"dialog_id": id})
		}
		observability.RecordError(span, findErr, "high")
		return nil, databaseError(ctx, "failed to fetch dialog", findErr, "dialog-find-db-error")
	}
	return entity.EtoD(), nil
}

// FindByPair fetches the dialog of a normalized pair.
func (r *Repository) FindByPair(ctx context.Context, a, b domain.UserID) (d *domain.Dialog, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "dialog.find_by_pair")
	defer span.End()
	defer observe("dialog_find_pair", time.Now(), &err)

	var entity entities.Dialog
	if findErr := r.db.WithContext(ctx).
		Preload("Favorites").
		Where("user_a = ? AND user_b = ?", string(a), string(b)).
		First(&entity).Error; findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, dialogNotFound(ctx, map[string]any{"user_a": string(a), "user_b": string(b)})
		}
		observability.RecordError(span, findErr, "high")
		return nil, databaseError(ctx, "failed to fetch dialog", findErr, "dialog-find-pair-db-error")
	}
	return entity.EtoD(), nil
}

// ListForUser returns every dialog the user takes part in, ordered by id.
func (r *Repository) ListForUser(ctx context.Context, user domain.UserID) (result []*domain.Dialog, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "dialog.list_for_user")
	defer span.End()
	defer observe("dialog_list", time.Now(), &err)

	var rows []entities.Dialog
	if findErr := r.db.WithContext(ctx).
		Preload("Favorites").
		Where("user_a = ? OR user_b = ?", string(user), string(user)).
		Order("id ASC").
		Find(&rows).Error; findErr != nil {
		observability.RecordError(span, findErr, "high")
		return nil, databaseError(ctx, "failed to list dialogs", findErr, "dialog-list-db-error")
	}

	result = make([]*domain.Dialog, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// AddFavorite stars the dialog for user. It reports false when the favorite already existed.
func (r *Repository) AddFavorite(ctx context.Context, dialogID uint, user domain.UserID) (added bool, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "dialog.add_favorite", observability.DialogAttributes(dialogID)...)
	defer span.End()
	defer observe("favorite_add", time.Now(), &err)

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.DialogFavorite{DialogID: dialogID, UserID: string(user)})
	if res.Error != nil {
		observability.RecordError(span, res.Error, "high")
		return false, databaseError(ctx, "failed to add favorite", res.Error, "favorite-add-db-error")
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) RemoveFavorite(ctx context.Context, dialogID uint, user domain.UserID) (removed bool, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "dialog.remove_favorite", observability.DialogAttributes(dialogID)...)
	defer span.End()
	defer observe("favorite_remove", time.Now(), &err)

	res := r.db.WithContext(ctx).
		Where("dialog_id = ? AND user_id = ?", dialogID, string(user)).
		Delete(&entities.DialogFavorite{})
	if res.Error != nil {
		observability.RecordError(span, res.Error, "high")
		return false, databaseError(ctx, "failed to remove favorite", res.Error, "favorite-remove-db-error")
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) IsFavorite(ctx context.Context, dialogID uint, user domain.UserID) (ok bool, err error) {
	defer observe("favorite_check", time.Now(), &err)

	var count int64
	if countErr := r.db.WithContext(ctx).
		Model(&entities.DialogFavorite{}).
		Where("dialog_id = ? AND user_id = ?", dialogID, string(user)).
		Count(&count).Error; countErr != nil {
		return false, databaseError(ctx, "failed to check favorite", countErr, "favorite-check-db-error")
	}
	return count > 0, nil
}

func observe(queryType string, start time.Time, err *error) {
	metrics.RecordDBQuery(queryType, time.Since(start).Seconds(), *err)
}
