package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopledger/internal/core/entity"
	"shopledger/internal/core/id"
	"shopledger/internal/core/types"
)

type stockItem struct {
	entity.BaseEntity
	entity.ShopScoped
	Name     string      `db:"name"`
	Price    types.Money `db:"price"`
	Computed string      `db:"-"`
	Note     string
}

func TestExtractDBColumns_FlattensEmbedded(t *testing.T) {
	cols := ExtractDBColumns[stockItem]()

	assert.Equal(t, []string{"id", "version", "created_at", "updated_at", "shop_id", "name", "price"}, cols)
}

func TestStructToMap(t *testing.T) {
	item := &stockItem{
		BaseEntity: entity.NewBaseEntity(),
		ShopScoped: entity.ShopScoped{ShopID: id.New()},
		Name:       "Rice 5kg",
		Price:      types.MustMoney("150"),
		Computed:   "ignored",
	}

	m := StructToMap(item)

	assert.Equal(t, item.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, item.ShopID, m["shop_id"])
	assert.Equal(t, "Rice 5kg", m["name"])
	assert.NotContains(t, m, "Computed")
	assert.NotContains(t, m, "-")
	assert.Len(t, m, 7)
}

func TestPickColumns(t *testing.T) {
	data := map[string]any{"id": 1, "version": 2, "name": "x", "extra": true}

	got := PickColumns(data, []string{"id", "version", "name"}, "id", "version")

	assert.Equal(t, map[string]any{"name": "x"}, got)
}
