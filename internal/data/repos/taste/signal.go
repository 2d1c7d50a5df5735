package taste

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// TasteSignalRepo is append-only: there is no update or delete.
type TasteSignalRepo interface {
	Create(dbc dbctx.Context, signals []*types.TasteSignal) ([]*types.TasteSignal, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, kinds []types.SignalKind, limit int) ([]*types.TasteSignal, error)
}

type tasteSignalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTasteSignalRepo(db *gorm.DB, baseLog *logger.Logger) TasteSignalRepo {
	return &tasteSignalRepo{
		db:  db,
		log: baseLog.With("repo", "TasteSignalRepo"),
	}
}

func (r *tasteSignalRepo) Create(dbc dbctx.Context, signals []*types.TasteSignal) ([]*types.TasteSignal, error) {
	if len(signals) == 0 {
		return []*types.TasteSignal{}, nil
	}
	if err := dbc.DB(r.db).Create(&signals).Error; err != nil {
		return nil, err
	}
	return signals, nil
}

// ListByUser returns the user's signals newest first. Empty kinds means all
// kinds; limit <= 0 means no limit.
func (r *tasteSignalRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, kinds []types.SignalKind, limit int) ([]*types.TasteSignal, error) {
	var out []*types.TasteSignal
	if userID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).
		Where("user_id = ?", userID)
	if len(kinds) > 0 {
		q = q.Where("kind IN ?", kinds)
	}
	q = q.Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
