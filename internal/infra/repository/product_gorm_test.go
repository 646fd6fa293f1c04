package repository

import (
	"context"
	"testing"

	"audioshop/internal/domain/model"
	repo "audioshop/internal/repository"
	"audioshop/internal/testutil"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductGorm_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewProductGormRepository(gdb)

	desc := "closed-back studio headphones"
	created, err := r.Create(ctx, model.Product{
		Name:        "Studio One",
		Price:       decimal.RequireFromString("149.99"),
		Category:    model.CategoryHeadphones,
		Description: &desc,
		Features:    pq.StringArray{"noise cancelling", "foldable"},
	})
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))

	got, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Studio One", got.Name)
	assert.True(t, decimal.RequireFromString("149.99").Equal(got.Price), got.Price.String())
	assert.Equal(t, model.CategoryHeadphones, got.Category)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Equal(t, pq.StringArray{"noise cancelling", "foldable"}, got.Features)
}

func TestProductGorm_CreateWithoutFeatures(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewProductGormRepository(gdb)

	created, err := r.Create(ctx, model.Product{Name: "Buds", Price: decimal.NewFromInt(20), Category: model.CategoryEarphones})
	require.NoError(t, err)

	got, err := r.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Features)
	assert.Nil(t, got.Description)
}

func TestProductGorm_FindByID_NotFound(t *testing.T) {
	r := NewProductGormRepository(testutil.NewDB(t))

	_, err := r.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestProductGorm_ListByCategory(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewProductGormRepository(gdb)

	a := testutil.CreateProduct(t, gdb, "A", "10", model.CategorySpeakers)
	testutil.CreateProduct(t, gdb, "B", "10", model.CategoryHeadphones)
	c := testutil.CreateProduct(t, gdb, "C", "10", model.CategorySpeakers)

	got, err := r.ListByCategory(ctx, model.CategorySpeakers)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, c.ID, got[1].ID)

	none, err := r.ListByCategory(ctx, model.CategoryEarphones)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductGorm_ListTopSelling(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewProductGormRepository(gdb)

	u := testutil.CreateUser(t, gdb, "top@example.com")
	p1 := testutil.CreateProduct(t, gdb, "P1", "10", model.CategorySpeakers)
	p2 := testutil.CreateProduct(t, gdb, "P2", "10", model.CategorySpeakers)
	p3 := testutil.CreateProduct(t, gdb, "P3", "10", model.CategorySpeakers)
	p4 := testutil.CreateProduct(t, gdb, "P4", "10", model.CategorySpeakers)

	//P2: 5, P3: 1+2=3, P1/P4: 0
	testutil.CreateOrder(t, gdb, u.ID, model.OrderStatusComplete,
		model.OrderLine{ProductID: p2.ID, Quantity: 5},
		model.OrderLine{ProductID: p3.ID, Quantity: 1},
	)
	testutil.CreateOrder(t, gdb, u.ID, model.OrderStatusActive,
		model.OrderLine{ProductID: p3.ID, Quantity: 2},
	)

	got, err := r.ListTopSelling(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []int64{p2.ID, p3.ID, p1.ID, p4.ID}, productIDs(got))

	top2, err := r.ListTopSelling(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{p2.ID, p3.ID}, productIDs(top2))
}

func TestProductGorm_Update(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewProductGormRepository(gdb)

	p := testutil.CreateProduct(t, gdb, "Old", "10", model.CategorySpeakers)

	name := "New"
	features := []string{"waterproof"}
	require.NoError(t, r.Update(ctx, p.ID, model.ProductPatch{Name: &name, Features: &features}))

	got, err := r.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, pq.StringArray{"waterproof"}, got.Features)
	assert.Equal(t, model.CategorySpeakers, got.Category)

	err = r.Update(ctx, 999, model.ProductPatch{Name: &name})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestProductGorm_Update_CheckViolation(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewProductGormRepository(gdb)

	p := testutil.CreateProduct(t, gdb, "P", "10", model.CategorySpeakers)

	bad := model.Category("microphones")
	err := r.Update(ctx, p.ID, model.ProductPatch{Category: &bad})
	assert.ErrorIs(t, err, repo.ErrCheckViolation)
}

func TestProductGorm_Delete_CascadesAccessoriesAndLines(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	r := NewProductGormRepository(gdb)
	acc := NewAccessoryGormRepository(gdb)

	u := testutil.CreateUser(t, gdb, "del@example.com")
	p := testutil.CreateProduct(t, gdb, "P", "10", model.CategorySpeakers)
	_, err := acc.CreateBulk(ctx, p.ID, []model.Accessory{{ItemName: "cable", Quantity: 1}})
	require.NoError(t, err)
	testutil.CreateOrder(t, gdb, u.ID, model.OrderStatusActive, model.OrderLine{ProductID: p.ID, Quantity: 1})

	require.NoError(t, r.Delete(ctx, p.ID))

	assert.Zero(t, testutil.Count(t, gdb, "product_accessories", "product_id = ?", p.ID))
	assert.Zero(t, testutil.Count(t, gdb, "order_products", "product_id = ?", p.ID))
	assert.ErrorIs(t, r.Delete(ctx, p.ID), repo.ErrNotFound)
}

func TestAccessoryGorm_ListByProductIDs(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	acc := NewAccessoryGormRepository(gdb)

	p1 := testutil.CreateProduct(t, gdb, "P1", "10", model.CategoryHeadphones)
	p2 := testutil.CreateProduct(t, gdb, "P2", "10", model.CategoryHeadphones)
	p3 := testutil.CreateProduct(t, gdb, "P3", "10", model.CategoryHeadphones)

	created, err := acc.CreateBulk(ctx, p1.ID, []model.Accessory{
		{ItemName: "case", Quantity: 1},
		{ItemName: "ear tips", Quantity: 3},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Equal(t, p1.ID, created[0].ProductID)

	_, err = acc.CreateBulk(ctx, p2.ID, []model.Accessory{{ItemName: "cable", Quantity: 1}})
	require.NoError(t, err)

	got, err := acc.ListByProductIDs(ctx, []int64{p1.ID, p2.ID, p3.ID})
	require.NoError(t, err)

	require.Len(t, got[p1.ID], 2)
	assert.Equal(t, "case", got[p1.ID][0].ItemName)
	assert.Equal(t, "ear tips", got[p1.ID][1].ItemName)
	assert.Equal(t, int64(3), got[p1.ID][1].Quantity)
	require.Len(t, got[p2.ID], 1)
	assert.NotContains(t, got, p3.ID)

	empty, err := acc.ListByProductIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAccessoryGorm_CreateBulk_Errors(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	acc := NewAccessoryGormRepository(gdb)

	_, err := acc.CreateBulk(ctx, 12345, []model.Accessory{{ItemName: "cable", Quantity: 1}})
	assert.ErrorIs(t, err, repo.ErrForeignKey)

	p := testutil.CreateProduct(t, gdb, "P", "10", model.CategoryHeadphones)
	_, err = acc.CreateBulk(ctx, p.ID, []model.Accessory{{ItemName: "cable", Quantity: 0}})
	assert.ErrorIs(t, err, repo.ErrCheckViolation)
}

func productIDs(ps []model.Product) []int64 {
	out := make([]int64, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
