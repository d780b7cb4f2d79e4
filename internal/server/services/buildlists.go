package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/ownership"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
)

const detailBuildListNotFound = "Build List not found"

// BuildListService manages build lists. A build list belongs to whoever
// owns its car.
type BuildListService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	verifier    *ownership.Verifier
	log         logging.Logger
}

func NewBuildListService(runner dbx.Runner, rm repomanager.RepositoryManager, v *ownership.Verifier, log logging.Logger) *BuildListService {
	return &BuildListService{runner: runner, repomanager: rm, verifier: v, log: log.With("module", "buildlists")}
}

func (s *BuildListService) Create(ctx context.Context, actor *models.User, bl *models.BuildList) (*models.BuildList, error) {
	bl.ID = 0

	var created *models.BuildList
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.verifier.Verify(ctx, tx, ownership.KindCar, bl.CarID, actor.ID,
			ownership.WithNotFound(detailCarNotFound),
			ownership.WithForbidden("Not authorized to create a build list for this car"))
		if err != nil {
			return err
		}
		created, err = s.repomanager.BuildLists(tx).Create(ctx, bl)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *BuildListService) Get(ctx context.Context, id int64) (*models.BuildList, error) {
	bl, err := s.repomanager.BuildLists(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundDetail(err, detailBuildListNotFound)
	}
	return bl, nil
}

// ListByCar returns the build lists of an existing car.
func (s *BuildListService) ListByCar(ctx context.Context, carID int64) ([]*models.BuildList, error) {
	db := s.runner.Conn()
	if _, err := s.repomanager.Cars(db).GetByID(ctx, carID); err != nil {
		return nil, notFoundDetail(err, detailCarNotFound)
	}
	return s.repomanager.BuildLists(db).ListByCar(ctx, carID)
}

// Update applies upd. When upd moves the build list to another car the
// actor has to own both cars.
func (s *BuildListService) Update(ctx context.Context, actor *models.User, id int64, upd models.BuildListUpdate) (*models.BuildList, error) {
	var newCarID int64
	if upd.CarID != nil {
		if *upd.CarID <= 0 {
			return nil, common.WithDetail(common.ErrorValidation, "car_id must be positive")
		}
		newCarID = *upd.CarID
	}

	var updated *models.BuildList
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		chain, err := s.verifier.VerifyReparent(ctx, tx, ownership.KindBuildList, id, newCarID, actor.ID, ownership.ReparentOptions{
			Current: []ownership.Option{
				ownership.WithNotFound(detailBuildListNotFound),
				ownership.WithForbidden("Not authorized to update this build list"),
			},
			Target: []ownership.Option{
				ownership.WithNotFound(fmt.Sprintf("New car with id %d not found", newCarID)),
				ownership.WithForbidden("Not authorized to associate build list with the new car"),
			},
		})
		if err != nil {
			return err
		}

		bl := chain.BuildList()
		bl.Apply(upd)
		updated, err = s.repomanager.BuildLists(tx).Update(ctx, bl)
		return notFoundDetail(err, detailBuildListNotFound)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the build list with its parts and returns it.
func (s *BuildListService) Delete(ctx context.Context, actor *models.User, id int64) (*models.BuildList, error) {
	var deleted *models.BuildList
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		chain, err := s.verifier.Verify(ctx, tx, ownership.KindBuildList, id, actor.ID,
			ownership.WithNotFound(detailBuildListNotFound),
			ownership.WithForbidden("Not authorized to delete this build list"))
		if err != nil {
			return err
		}
		if err := s.repomanager.BuildLists(tx).Delete(ctx, id); err != nil {
			return notFoundDetail(err, detailBuildListNotFound)
		}
		deleted = chain.BuildList()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "build list deleted", "build_list_id", id, "user_id", actor.ID)
	return deleted, nil
}
