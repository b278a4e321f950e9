package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/thaimooc/platform/core/institution"
)

type institutionRepository struct {
	db *sqlx.DB
}

var _ institution.Repository = (*institutionRepository)(nil) // interface compliance check

func NewInstitutionRepository(db *sqlx.DB) institution.Repository {
	return &institutionRepository{db: db}
}

func (repo *institutionRepository) CreateInstitution(ctx context.Context, inst institution.Institution) (institution.Institution, error) {
	inst.ID = uuid.New().String()
	_, err := repo.db.NamedExecContext(ctx, `
		INSERT INTO institutions (id, name, name_en, primary_color, secondary_color, logo_ref, banner_ref,
		                          address, phone, email, social_links, microsite_enabled, meta_title,
		                          meta_description, created_at, updated_at)
		VALUES (:id, :name, :name_en, :primary_color, :secondary_color, :logo_ref, :banner_ref,
		        :address, :phone, :email, :social_links, :microsite_enabled, :meta_title,
		        :meta_description, :created_at, :updated_at)`,
		inst,
	)
	if err != nil {
		return institution.Institution{}, errors.Wrap(err, "inserting institution")
	}
	return inst, nil
}

func (repo *institutionRepository) QueryInstitutions(ctx context.Context) ([]institution.Institution, error) {
	var insts []institution.Institution
	err := repo.db.SelectContext(ctx, &insts, `SELECT * FROM institutions ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "querying institutions")
	}
	return insts, nil
}

func (repo *institutionRepository) GetInstitution(ctx context.Context, id string) (institution.Institution, error) {
	var inst institution.Institution
	err := repo.db.GetContext(ctx, &inst, `SELECT * FROM institutions WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return institution.Institution{}, institution.ErrNotFound
		}
		return institution.Institution{}, errors.Wrap(err, "getting institution")
	}
	return inst, nil
}

func (repo *institutionRepository) UpdateInstitution(ctx context.Context, inst institution.Institution) (institution.Institution, error) {
	res, err := repo.db.NamedExecContext(ctx, `
		UPDATE institutions
		SET name = :name, name_en = :name_en, primary_color = :primary_color,
		    secondary_color = :secondary_color, logo_ref = :logo_ref, banner_ref = :banner_ref,
		    address = :address, phone = :phone, email = :email, social_links = :social_links,
		    microsite_enabled = :microsite_enabled, meta_title = :meta_title,
		    meta_description = :meta_description, updated_at = :updated_at
		WHERE id = :id`,
		inst,
	)
	if err != nil {
		return institution.Institution{}, errors.Wrap(err, "updating institution")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return institution.Institution{}, institution.ErrNotFound
	}
	return inst, nil
}

func (repo *institutionRepository) DeleteInstitutionsByID(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM institutions WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building institution delete")
	}
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(query), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting institutions")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo *institutionRepository) QueryMenuItems(ctx context.Context, institutionID, position string) ([]institution.MenuItem, error) {
	var items []institution.MenuItem
	err := repo.db.SelectContext(ctx, &items, `
		SELECT mi.id, mi.label, mi.label_en, mi.target, mi."order"
		FROM menu_items mi
		JOIN menus m ON m.id = mi.menu_id
		WHERE m.institution_id = $1 AND m.position = $2
		ORDER BY mi."order"`,
		institutionID, position,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying menu items")
	}
	return items, nil
}

func (repo *institutionRepository) ReplaceMenuItems(ctx context.Context, institutionID, position string, items []institution.MenuItem) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning menu replace")
	}
	defer func() { _ = tx.Rollback() }()

	var menuID string
	err = tx.GetContext(ctx, &menuID, `SELECT id FROM menus WHERE institution_id = $1 AND position = $2`, institutionID, position)
	if err == sql.ErrNoRows {
		menuID = uuid.New().String()
		if _, err = tx.ExecContext(ctx, `INSERT INTO menus (id, institution_id, position) VALUES ($1, $2, $3)`,
			menuID, institutionID, position); err != nil {
			return errors.Wrap(err, "inserting menu")
		}
	} else if err != nil {
		return errors.Wrap(err, "getting menu")
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM menu_items WHERE menu_id = $1`, menuID); err != nil {
		return errors.Wrap(err, "clearing menu items")
	}
	for _, item := range items {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO menu_items (id, menu_id, label, label_en, target, "order")
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, menuID, item.Label, item.LabelEn, item.Target, item.Order,
		); err != nil {
			return errors.Wrap(err, "inserting menu item")
		}
	}
	return errors.Wrap(tx.Commit(), "committing menu replace")
}
