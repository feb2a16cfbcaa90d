package comparer

import (
	"mutualexchange/src/domain/entities"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func IgnoreFieldsFor[T any](fields ...string) cmp.Option {
	var t T
	return cmpopts.IgnoreFields(t, fields...)
}

// IgnoreTimestamps ignora os campos preenchidos pelo relógio do banco.
func IgnoreTimestamps() cmp.Option {
	return cmp.Options{
		IgnoreFieldsFor[entities.Exchange]("CreatedAt", "UpdatedAt"),
		IgnoreFieldsFor[entities.Agreement]("CreatedAt", "UpdatedAt"),
	}
}

// CategorySet compara listas de categorias sem considerar a ordem.
func CategorySet() cmp.Option {
	return cmpopts.SortSlices(func(a, b string) bool { return a < b })
}
