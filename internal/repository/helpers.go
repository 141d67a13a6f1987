package repository

import "gorm.io/gorm/clause"

// forUpdate returns a SELECT ... FOR UPDATE locking clause.
func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
