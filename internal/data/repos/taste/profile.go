package taste

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/pkg/dbctx"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/logger"
)

// TasteProfileRepo keeps preference edits and embedding writes in separate
// column-scoped updates.
type TasteProfileRepo interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.TasteProfile, error)
	EnsureForUser(dbc dbctx.Context, userID uuid.UUID) (*types.TasteProfile, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error
	UpdateEmbedding(dbc dbctx.Context, userID uuid.UUID, source types.EmbeddingSource, vec []float32, text string, at time.Time) error
}

type tasteProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTasteProfileRepo(db *gorm.DB, baseLog *logger.Logger) TasteProfileRepo {
	return &tasteProfileRepo{
		db:  db,
		log: baseLog.With("repo", "TasteProfileRepo"),
	}
}

// GetByUserID returns (nil, nil) when the user has no profile yet.
func (r *tasteProfileRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.TasteProfile, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var p types.TasteProfile
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *tasteProfileRepo) EnsureForUser(dbc dbctx.Context, userID uuid.UUID) (*types.TasteProfile, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("ensure taste profile: user id required")
	}
	row := &types.TasteProfile{ID: uuid.New(), UserID: userID}
	if err := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(row).Error; err != nil {
		return nil, err
	}
	p, err := r.GetByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("ensure taste profile: row missing after insert")
	}
	return p, nil
}

func (r *tasteProfileRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, updates map[string]interface{}) error {
	if userID == uuid.Nil || len(updates) == 0 {
		return nil
	}
	cols := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		cols[k] = v
	}
	cols["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.TasteProfile{}).
		Where("user_id = ?", userID).
		Updates(cols).Error
}

// UpdateEmbedding writes one slot's vector and source text and nothing else.
func (r *tasteProfileRepo) UpdateEmbedding(dbc dbctx.Context, userID uuid.UUID, source types.EmbeddingSource, vec []float32, text string, at time.Time) error {
	vecCol, textCol := source.Columns()
	if vecCol == "" {
		return fmt.Errorf("update embedding: unknown source %q", source)
	}
	if len(vec) == 0 {
		return fmt.Errorf("update embedding: empty vector for %s", source)
	}
	res := dbc.DB(r.db).
		Model(&types.TasteProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			vecCol:                  pgvector.NewVector(vec),
			textCol:                 text,
			"embeddings_updated_at": at.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update embedding: no profile for user %s", userID)
	}
	return nil
}
