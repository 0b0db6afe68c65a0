package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"

	"filmrate/internal/domain"
)

func dateOrZero(d pgtype.Date) domain.Date {
	if !d.Valid {
		return domain.Date{}
	}
	return domain.Date{Time: d.Time}
}
