package repositories

import (
	"gorm.io/gorm"

	"backoffice/internal/query"
)

// applyConditions translates the composed field conditions into WHERE
// clauses. Fields without a column mapping are ignored, so unknown keys can
// never inject arbitrary column names.
func applyConditions(tx *gorm.DB, conditions map[string]*query.Condition, columns map[string]string) *gorm.DB {
	for field, c := range conditions {
		column, ok := columns[field]
		if !ok {
			continue
		}
		if c.Equals != nil {
			tx = tx.Where(column+" = ?", c.Equals)
		}
		if c.NumberFrom != nil {
			tx = tx.Where(column+" >= ?", *c.NumberFrom)
		}
		if c.NumberTo != nil {
			tx = tx.Where(column+" <= ?", *c.NumberTo)
		}
		if c.TimeFrom != nil {
			tx = tx.Where(column+" >= ?", *c.TimeFrom)
		}
		if c.TimeTo != nil {
			tx = tx.Where(column+" <= ?", *c.TimeTo)
		}
	}
	return tx
}
