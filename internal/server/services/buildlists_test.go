package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/ownership"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListService_Create(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	g := e.garage(t, alice)

	_, err := e.buildLists.Create(ctx, bob, &models.BuildList{Name: "Mine now", CarID: g.car.ID})
	require.ErrorIs(t, err, common.ErrorForbidden)
	assert.Equal(t, "Not authorized to create a build list for this car", common.Detail(err, ""))

	_, err = e.buildLists.Create(ctx, alice, &models.BuildList{Name: "Nowhere", CarID: 999})
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "Car not found", common.Detail(err, ""))

	bl, err := e.buildLists.Create(ctx, alice, &models.BuildList{Name: "Street", Description: ptr("daily"), CarID: g.car.ID})
	require.NoError(t, err)

	list, err := e.buildLists.ListByCar(ctx, g.car.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, g.bl.ID, list[0].ID)
	assert.Equal(t, bl.ID, list[1].ID)

	_, err = e.buildLists.ListByCar(ctx, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestBuildListService_Reparent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	ga := e.garage(t, alice)
	gb := e.garage(t, bob)

	car2, err := e.cars.Create(ctx, alice, &models.Car{Make: "Mazda", Model: "MX-5", Year: 1990})
	require.NoError(t, err)

	t.Run("to someone else's car", func(t *testing.T) {
		_, err := e.buildLists.Update(ctx, alice, ga.bl.ID, models.BuildListUpdate{CarID: &gb.car.ID})
		require.ErrorIs(t, err, common.ErrorForbidden)
		assert.Equal(t, "Not authorized to associate build list with the new car", common.Detail(err, ""))
	})

	t.Run("someone else's list to own car", func(t *testing.T) {
		_, err := e.buildLists.Update(ctx, alice, gb.bl.ID, models.BuildListUpdate{CarID: &car2.ID})
		require.ErrorIs(t, err, common.ErrorForbidden)
		assert.Equal(t, "Not authorized to update this build list", common.Detail(err, ""))
	})

	t.Run("to missing car", func(t *testing.T) {
		_, err := e.buildLists.Update(ctx, alice, ga.bl.ID, models.BuildListUpdate{CarID: ptr(int64(999))})
		require.ErrorIs(t, err, common.ErrorNotFound)
		assert.Equal(t, "New car with id 999 not found", common.Detail(err, ""))
	})

	t.Run("non-positive car id", func(t *testing.T) {
		_, err := e.buildLists.Update(ctx, alice, ga.bl.ID, models.BuildListUpdate{CarID: ptr(int64(0))})
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("between own cars", func(t *testing.T) {
		bl, err := e.buildLists.Update(ctx, alice, ga.bl.ID, models.BuildListUpdate{CarID: &car2.ID, Name: ptr("Moved")})
		require.NoError(t, err)
		assert.Equal(t, car2.ID, bl.CarID)
		assert.Equal(t, "Moved", bl.Name)
	})
}

func TestBuildListService_Delete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	g := e.garage(t, alice)

	_, err := e.buildLists.Delete(ctx, bob, g.bl.ID)
	require.ErrorIs(t, err, common.ErrorForbidden)
	assert.Equal(t, "Not authorized to delete this build list", common.Detail(err, ""))

	bl, err := e.buildLists.Delete(ctx, alice, g.bl.ID)
	require.NoError(t, err)
	assert.Equal(t, g.bl.ID, bl.ID)

	_, err = e.parts.Get(ctx, g.part.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = e.buildLists.Delete(ctx, alice, g.bl.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "Build List not found", common.Detail(err, ""))
}

func TestBuildListService_OrphanIsInconsistent(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	g := e.garage(t, alice)

	e.orphans.set(ownership.KindBuildList, g.bl.ID, 777)

	_, err := e.buildLists.Update(ctx, alice, g.bl.ID, models.BuildListUpdate{Name: ptr("x")})
	assert.ErrorIs(t, err, common.ErrorInconsistent)
	_, err = e.parts.Delete(ctx, alice, g.part.ID)
	assert.ErrorIs(t, err, common.ErrorInconsistent)
}
