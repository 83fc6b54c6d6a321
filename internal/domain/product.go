package domain

import (
	"errors"
	"time"
)

var ErrProductNotFound = errors.New("product not found")

type ProductType string

const (
	ProductPhone     ProductType = "phone"
	ProductAccessory ProductType = "accessory"
	ProductOther     ProductType = "other"
)

type Product struct {
	ID           int64
	Name         string
	UnitPrice    float64 // > 0, enforced by a DB check constraint
	UnitsInStock int     // >= 0
	Type         ProductType

	CreatedAt time.Time
	UpdatedAt time.Time
}
