package dialog

import (
	"context"
	"slices"
	"sync"
	"time"

	domain "jan-server/services/dialog-api/internal/domain/dialog"
)

// MemoryStore keeps dialogs, messages and favorites in process memory.
// It backs STORAGE_DRIVER=memory and offers the same ordering and uniqueness
// guarantees as the Postgres repositories.
type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time

	dialogs   map[uint]*domain.Dialog
	pairs     map[[2]domain.UserID]uint
	favorites map[uint]map[domain.UserID]struct{}
	messages  map[uint][]domain.Message
	owners    map[uint]uint // message id -> dialog id

	nextDialogID  uint
	nextMessageID uint
}

// NewMemoryStore builds an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

// NewMemoryStoreWithClock builds an empty store stamping messages with now.
func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		now:       now,
		dialogs:   make(map[uint]*domain.Dialog),
		pairs:     make(map[[2]domain.UserID]uint),
		favorites: make(map[uint]map[domain.UserID]struct{}),
		messages:  make(map[uint][]domain.Message),
		owners:    make(map[uint]uint),
	}
}

// Dialogs exposes the store as a domain.DialogRepository.
func (s *MemoryStore) Dialogs() *InMemoryDialogRepository {
	return &InMemoryDialogRepository{store: s}
}

// Messages exposes the store as a domain.MessageRepository.
func (s *MemoryStore) Messages() *InMemoryMessageRepository {
	return &InMemoryMessageRepository{store: s}
}

// snapshot copies a dialog with its favorites and recomputed activity. Caller holds the lock.
func (s *MemoryStore) snapshot(id uint) *domain.Dialog {
	stored := s.dialogs[id]
	d := *stored
	d.FavoritedBy = make([]domain.UserID, 0, len(s.favorites[id]))
	for user := range s.favorites[id] {
		d.FavoritedBy = append(d.FavoritedBy, user)
	}
	slices.Sort(d.FavoritedBy)
	domain.ComputeActivity(&d, s.messages[id])
	return &d
}

type InMemoryDialogRepository struct {
	store *MemoryStore
}

func (r *InMemoryDialogRepository) Create(ctx context.Context, d *domain.Dialog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]domain.UserID{d.ParticipantA, d.ParticipantB}
	if _, exists := s.pairs[key]; exists {
		return dialogConflict(ctx, d.ParticipantA, d.ParticipantB, nil)
	}

	s.nextDialogID++
	stored := &domain.Dialog{
		ID:           s.nextDialogID,
		ParticipantA: d.ParticipantA,
		ParticipantB: d.ParticipantB,
		CreatedAt:    s.now().UTC(),
	}
	s.dialogs[stored.ID] = stored
	s.pairs[key] = stored.ID

	d.ID = stored.ID
	d.CreatedAt = stored.CreatedAt
	return nil
}

func (r *InMemoryDialogRepository) FindByID(ctx context.Context, id uint) (*domain.Dialog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.dialogs[id]; !ok {
		return nil, dialogNotFound(ctx, map[string]any{"dialog_id": id})
	}
	return s.snapshot(id), nil
}

func (r *InMemoryDialogRepository) FindByPair(ctx context.Context, a, b domain.UserID) (*domain.Dialog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.pairs[[2]domain.UserID{a, b}]
	if !ok {
		return nil, dialogNotFound(ctx, map[string]any{"user_a": string(a), "user_b": string(b)})
	}
	return s.snapshot(id), nil
}

func (r *InMemoryDialogRepository) ListForUser(ctx context.Context, user domain.UserID) ([]*domain.Dialog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]uint, 0)
	for id, d := range s.dialogs {
		if d.HasParticipant(user) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	result := make([]*domain.Dialog, len(ids))
	for i, id := range ids {
		result[i] = s.snapshot(id)
	}
	return result, nil
}

func (r *InMemoryDialogRepository) AddFavorite(ctx context.Context, dialogID uint, user domain.UserID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.dialogs[dialogID]; !ok {
		return false, dialogNotFound(ctx, map[string]any{"dialog_id": dialogID})
	}
	set, ok := s.favorites[dialogID]
	if !ok {
		set = make(map[domain.UserID]struct{})
		s.favorites[dialogID] = set
	}
	if _, exists := set[user]; exists {
		return false, nil
	}
	set[user] = struct{}{}
	return true, nil
}

func (r *InMemoryDialogRepository) RemoveFavorite(ctx context.Context, dialogID uint, user domain.UserID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.favorites[dialogID]
	if _, exists := set[user]; !exists {
		return false, nil
	}
	delete(set, user)
	return true, nil
}

func (r *InMemoryDialogRepository) IsFavorite(ctx context.Context, dialogID uint, user domain.UserID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.favorites[dialogID][user]
	return exists, nil
}

type InMemoryMessageRepository struct {
	store *MemoryStore
}

func (r *InMemoryMessageRepository) Append(ctx context.Context, dialogID uint, sender domain.UserID, text string) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dialogs[dialogID]
	if !ok {
		return nil, dialogNotFound(ctx, map[string]any{"dialog_id": dialogID})
	}
	if !d.HasParticipant(sender) {
		return nil, notParticipant(ctx, dialogID, sender)
	}

	createdAt := s.now().UTC()
	history := s.messages[dialogID]
	if n := len(history); n > 0 && history[n-1].CreatedAt.After(createdAt) {
		createdAt = history[n-1].CreatedAt
	}

	s.nextMessageID++
	msg := domain.Message{
		ID:        s.nextMessageID,
		DialogID:  dialogID,
		SenderID:  sender,
		Text:      text,
		CreatedAt: createdAt,
	}
	s.messages[dialogID] = append(history, msg)
	s.owners[msg.ID] = dialogID

	return &msg, nil
}

func (r *InMemoryMessageRepository) FindByID(ctx context.Context, id uint) (*domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	dialogID, ok := s.owners[id]
	if !ok {
		return nil, messageNotFound(ctx, id)
	}
	for _, m := range s.messages[dialogID] {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, messageNotFound(ctx, id)
}

func (r *InMemoryMessageRepository) ListOrdered(ctx context.Context, dialogID uint) ([]domain.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.messages[dialogID]), nil
}

func (r *InMemoryMessageRepository) MarkReadUpTo(ctx context.Context, dialogID uint, upTo *domain.Message) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int64
	history := s.messages[dialogID]
	for i := range history {
		if !history[i].IsRead && !history[i].CreatedAt.After(upTo.CreatedAt) {
			history[i].IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (r *InMemoryMessageRepository) ListForUser(ctx context.Context, user domain.UserID, limit, offset int) ([]domain.Message, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Message, 0)
	for id, d := range s.dialogs {
		if d.HasParticipant(user) {
			all = append(all, s.messages[id]...)
		}
	}
	slices.SortFunc(all, func(a, b domain.Message) int {
		switch {
		case b.Before(a):
			return -1
		case a.Before(b):
			return 1
		default:
			return 0
		}
	})

	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Message{}, total, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (r *InMemoryMessageRepository) UnreadCounts(ctx context.Context, reader domain.UserID, dialogIDs []uint) (map[uint]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[uint]int64, len(dialogIDs))
	for _, id := range dialogIDs {
		for _, m := range s.messages[id] {
			if !m.IsRead && m.SenderID != reader {
				counts[id]++
			}
		}
	}
	return counts, nil
}

var (
	_ domain.DialogRepository  = (*Repository)(nil)
	_ domain.MessageRepository = (*MessageRepository)(nil)
	_ domain.DialogRepository  = (*InMemoryDialogRepository)(nil)
	_ domain.MessageRepository = (*InMemoryMessageRepository)(nil)
)
