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

// MessageRepository persists dialog messages and their read state.
type MessageRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMessageRepository builds a message repository.
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db, now: time.Now}
}

// Append stores a message under a row lock on its dialog. Concurrent appends to the same
// dialog are serialized, and CreatedAt never goes below the newest stamp already stored.
func (r *MessageRepository) Append(ctx context.Context, dialogID uint, sender domain.UserID, text string) (msg *domain.Message, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "message.append", observability.DialogAttributes(dialogID)...)
	defer span.End()
	defer observe("message_append", time.Now(), &err)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var d entities.Dialog
		if lockErr := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, dialogID).Error; lockErr != nil {
			if errors.Is(lockErr, gorm.ErrRecordNotFound) {
				return dialogNotFound(ctx, map[string]any{"dialog_id": dialogID})
			}
			return databaseError(ctx, "failed to lock dialog", lockErr, "message-append-lock-error")
		}

		var column string
		switch string(sender) {
		case d.UserA:
			column = "user_a_last_sent_at"
		case d.UserB:
			column = "user_b_last_sent_at"
		default:
			return notParticipant(ctx, dialogID, sender)
		}

		// Both activity columns together hold the newest stamp of the dialog.
		createdAt := r.now().UTC().Truncate(time.Microsecond)
		for _, latest := range []*time.Time{d.UserALastSentAt, d.UserBLastSentAt} {
			if latest != nil && latest.After(createdAt) {
				createdAt = latest.UTC()
			}
		}

		entity := entities.NewSchemaMessage(&domain.Message{
			DialogID:  dialogID,
			SenderID:  sender,
			Text:      text,
			CreatedAt: createdAt,
		})
		if createErr := tx.Omit(clause.Associations).Create(entity).Error; createErr != nil {
			return databaseError(ctx, "failed to insert message", createErr, "message-append-insert-error")
		}
		if updateErr := tx.Model(&entities.Dialog{}).
			Where("id = ?", dialogID).
			Update(column, createdAt).Error; updateErr != nil {
			return databaseError(ctx, "failed to advance dialog activity", updateErr, "message-append-activity-error")
		}

		msg = entity.EtoD()
		return nil
	})
	if err != nil {
		observability.RecordError(span, err, "medium")
		return nil, err
	}

	metrics.RecordMessageSent()
	return msg, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id uint) (msg *domain.Message, err error) {
	defer observe("message_find", time.Now(), &err)

	var entity entities.Message
	if findErr := r.db.WithContext(ctx).First(&entity, id).Error; findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, messageNotFound(ctx, id)
		}
		return nil, databaseError(ctx, "failed to fetch message", findErr, "message-find-db-error")
	}
	return entity.EtoD(), nil
}

// ListOrdered returns the dialog history in (created_at, id) order.
func (r *MessageRepository) ListOrdered(ctx context.Context, dialogID uint) (result []domain.Message, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "message.list_ordered", observability.DialogAttributes(dialogID)...)
	defer span.End()
	defer observe("message_list", time.Now(), &err)

	var rows []entities.Message
	if findErr := r.db.WithContext(ctx).
		Where("dialog_id = ?", dialogID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error; findErr != nil {
		observability.RecordError(span, findErr, "high")
		return nil, databaseError(ctx, "failed to list messages", findErr, "message-list-db-error")
	}
	return toDomainMessages(rows), nil
}

// MarkReadUpTo flips every unread message stamped at or before upTo in a single statement.
func (r *MessageRepository) MarkReadUpTo(ctx context.Context, dialogID uint, upTo *domain.Message) (updated int64, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "message.mark_read", observability.DialogAttributes(dialogID)...)
	defer span.End()
	defer observe("message_mark_read", time.Now(), &err)

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&entities.Message{}).
			Where("dialog_id = ? AND is_read = ? AND created_at <= ?", dialogID, false, upTo.CreatedAt).
			Update("is_read", true)
		if res.Error != nil {
			return databaseError(ctx, "failed to mark messages read", res.Error, "message-mark-read-db-error")
		}
		updated = res.RowsAffected
		return nil
	})
	if err != nil {
		observability.RecordError(span, err, "high")
		return 0, err
	}

	metrics.RecordMessagesRead(updated)
	return updated, nil
}

// ListForUser pages through every message of every dialog user takes part in, newest first.
func (r *MessageRepository) ListForUser(ctx context.Context, user domain.UserID, limit, offset int) (result []domain.Message, total int64, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, "message.list_for_user")
	defer span.End()
	defer observe("message_list_user", time.Now(), &err)

	userDialogs := func() *gorm.DB {
		return r.db.Model(&entities.Dialog{}).
			Select("id").
			Where("user_a = ? OR user_b = ?", string(user), string(user))
	}

	if countErr := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Where("dialog_id IN (?)", userDialogs()).
		Count(&total).Error; countErr != nil {
		observability.RecordError(span, countErr, "high")
		return nil, 0, databaseError(ctx, "failed to count messages", countErr, "message-count-user-db-error")
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	query := r.db.WithContext(ctx).
		Where("dialog_id IN (?)", userDialogs()).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []entities.Message
	if findErr := query.Find(&rows).Error; findErr != nil {
		observability.RecordError(span, findErr, "high")
		return nil, 0, databaseError(ctx, "failed to list messages", findErr, "message-list-user-db-error")
	}
	return toDomainMessages(rows), total, nil
}

// UnreadCounts groups unread messages from the other participant by dialog.
func (r *MessageRepository) UnreadCounts(ctx context.Context, reader domain.UserID, dialogIDs []uint) (counts map[uint]int64, err error) {
	defer observe("message_unread_counts", time.Now(), &err)

	counts = make(map[uint]int64, len(dialogIDs))
	if len(dialogIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		DialogID uint
		Unread   int64
	}
	if scanErr := r.db.WithContext(ctx).
		Model(&entities.Message{}).
		Select("dialog_id, COUNT(*) AS unread").
		Where("dialog_id IN ? AND sender_id <> ? AND is_read = ?", dialogIDs, string(reader), false).
		Group("dialog_id").
		Scan(&rows).Error; scanErr != nil {
		return nil, databaseError(ctx, "failed to count unread messages", scanErr, "message-unread-db-error")
	}
	for _, row := range rows {
		counts[row.DialogID] = row.Unread
	}
	return counts, nil
}

func toDomainMessages(rows []entities.Message) []domain.Message {
	result := make([]domain.Message, len(rows))
	for i := range rows {
		result[i] = *rows[i].EtoD()
	}
	return result
}
