package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refinery/internal/domain"
)

func TestNormalizeCategory(t *testing.T) {
	t.Run("fields_trimmed", func(t *testing.T) {
		got, rej := NormalizeCategory(rawRecord(domain.EntityCategory, map[string]string{
			"id":          " AC_10 ",
			"category":    " Accessories ",
			"subcategory": " Bike Racks ",
			"maintenance": " No ",
		}))
		require.Nil(t, rej)
		assert.Equal(t, "AC_10", got.ID)
		assert.Equal(t, "Accessories", got.Category)
		assert.Equal(t, "Bike Racks", got.Subcategory)
		assert.Equal(t, "No", got.Maintenance)
	})

	t.Run("values_otherwise_untouched", func(t *testing.T) {
		got, rej := NormalizeCategory(rawRecord(domain.EntityCategory, map[string]string{
			"id":       "ac_10",
			"category": "accessories",
		}))
		require.Nil(t, rej)
		assert.Equal(t, "ac_10", got.ID)
		assert.Equal(t, "accessories", got.Category)
		assert.Equal(t, "", got.Subcategory)
	})

	t.Run("missing_id", func(t *testing.T) {
		_, rej := NormalizeCategory(rawRecord(domain.EntityCategory, map[string]string{"id": "  "}))
		require.NotNil(t, rej)
		assert.Equal(t, "id", rej.Field)
		assert.Equal(t, domain.ReasonMissingKey, rej.Reason)
	})
}
