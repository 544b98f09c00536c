package contact

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const contactColumns = `id, name, email, phone, company, business_type, priority, notes,
	products, photos, owner_id, sales_person, created_at, updated_at`

func (r *postgresRepo) List(ctx context.Context, ownerID string) ([]*Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`
	args := []interface{}{}
	if ownerID != "" {
		query += ` WHERE owner_id=$1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	contacts := []*Contact{}
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *postgresRepo) GetByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id=$1`, id)
	c, err := scanContact(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *postgresRepo) Create(ctx context.Context, c *Contact) error {
	products, photos, err := marshalNested(c)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO contacts
		  (name, email, phone, company, business_type, priority, notes, products, photos, owner_id, sales_person)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Email, c.Phone, c.Company, string(c.BusinessType), c.Priority, c.Notes,
		products, photos, c.OwnerID, c.SalesPerson,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *postgresRepo) Update(ctx context.Context, c *Contact) error {
	products, photos, err := marshalNested(c)
	if err != nil {
		return err
	}
	err = r.db.QueryRowContext(ctx, `
		UPDATE contacts
		SET name=$1, email=$2, phone=$3, company=$4, business_type=$5, priority=$6,
		    notes=$7, products=$8, photos=$9, updated_at=NOW()
		WHERE id=$10
		RETURNING created_at, updated_at`,
		c.Name, c.Email, c.Phone, c.Company, string(c.BusinessType), c.Priority,
		c.Notes, products, photos, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ── helpers ──

func scanContact(scan func(...interface{}) error) (*Contact, error) {
	c := &Contact{}
	var businessType string
	var products, photos []byte
	err := scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &businessType, &c.Priority,
		&c.Notes, &products, &photos, &c.OwnerID, &c.SalesPerson, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.BusinessType = BusinessType(businessType)

	c.Products = []Product{}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &c.Products); err != nil {
			return nil, fmt.Errorf("decode products of contact %s: %w", c.ID, err)
		}
	}
	c.Photos = []PhotoRef{}
	if len(photos) > 0 {
		if err := json.Unmarshal(photos, &c.Photos); err != nil {
			return nil, fmt.Errorf("decode photos of contact %s: %w", c.ID, err)
		}
	}
	return c, nil
}

// marshalNested encodes the jsonb columns. Pending buffers are never stored.
func marshalNested(c *Contact) (products, photos []byte, err error) {
	stored := make([]Product, len(c.Products))
	for i, p := range c.Products {
		p.Pending = nil
		if p.Photos == nil {
			p.Photos = []string{}
		}
		stored[i] = p
	}
	if products, err = json.Marshal(stored); err != nil {
		return nil, nil, fmt.Errorf("encode products: %w", err)
	}
	refs := c.Photos
	if refs == nil {
		refs = []PhotoRef{}
	}
	if photos, err = json.Marshal(refs); err != nil {
		return nil, nil, fmt.Errorf("encode photos: %w", err)
	}
	return products, photos, nil
}
