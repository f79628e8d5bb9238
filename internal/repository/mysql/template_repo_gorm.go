package mysql

import (
	"context"
	"errors"

	"order-timeline/internal/domain"
	mmysql "order-timeline/internal/infra/mysql"
	"order-timeline/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type templateRepo struct {
	handle *mmysql.Handle
}

func NewTemplateRepository(h *mmysql.Handle) repository.TemplateRepository {
	return &templateRepo{handle: h}
}

func (r *templateRepo) Active(ctx context.Context) (*domain.EmailTemplate, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	var tpl domain.EmailTemplate
	if err := db.Where("id = ?", domain.ActiveTemplateID).First(&tpl).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tpl, nil
}

// Save upserts the singleton row, so there is never more than one candidate
// template.
func (r *templateRepo) Save(ctx context.Context, tpl *domain.EmailTemplate) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}

	tpl.ID = domain.ActiveTemplateID
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"from_address", "subject", "body", "updated_at"}),
	}).Create(tpl).Error
}
