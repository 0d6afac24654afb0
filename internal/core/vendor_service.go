package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VendorService backs the terminal login picklist. There is no password or
// session token: a vendor is chosen, and their name travels with every sale.
type VendorService interface {
	GetVendors(ctx context.Context) ([]Vendor, error)
	GetVendor(ctx context.Context, id int) (*Vendor, error)
}

type vendorService struct {
	pool *pgxpool.Pool
}

// NewVendorService constructs a VendorService backed by PostgreSQL.
func NewVendorService(pool *pgxpool.Pool) VendorService {
	return &vendorService{pool: pool}
}

func (s *vendorService) GetVendors(ctx context.Context) ([]Vendor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, role, icon, is_active
		FROM vendors
		WHERE is_active = true
		ORDER BY name`)
	if err != nil {
		return nil, storeErr("query vendors", err)
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Role, &v.Icon, &v.IsActive); err != nil {
			return nil, storeErr("scan vendor", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate vendors", err)
	}
	return vendors, nil
}

func (s *vendorService) GetVendor(ctx context.Context, id int) (*Vendor, error) {
	var v Vendor
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, role, icon, is_active
		FROM vendors
		WHERE id = $1`, id,
	).Scan(&v.ID, &v.Name, &v.Role, &v.Icon, &v.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: vendor %d", ErrNotFound, id)
		}
		return nil, storeErr("fetch vendor", err)
	}
	return &v, nil
}
