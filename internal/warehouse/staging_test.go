package warehouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refinery/internal/domain"
)

func TestStaging_Snapshot(t *testing.T) {
	db := openTestWarehouse(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `
		INSERT INTO staging.erp_locations (id, country) VALUES
		('AW-00011000', 'US'), ('AW00011001', NULL)`)
	require.NoError(t, err)

	records, err := NewStaging(db).Snapshot(ctx, domain.EntityLocation)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, domain.EntityLocation, records[0].Entity)
	assert.Equal(t, "AW-00011000", records[0].Field("id"))
	assert.Equal(t, "US", records[0].Field("country"))

	// NULL cells come back as blank text.
	assert.Equal(t, "", records[1].Field("country"))
}

func TestStaging_SnapshotEmpty(t *testing.T) {
	db := openTestWarehouse(t)

	records, err := NewStaging(db).Snapshot(context.Background(), domain.EntityCustomer)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStaging_UnknownEntity(t *testing.T) {
	db := openTestWarehouse(t)

	_, err := NewStaging(db).Snapshot(context.Background(), domain.Entity("orders"))
	require.Error(t, err)
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}
