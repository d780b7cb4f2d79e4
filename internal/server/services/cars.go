package services

import (
	"context"

	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/ownership"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
)

const (
	detailCarNotFound        = "Car not found"
	detailCarUpdateForbidden = "Not authorized to update this car"
)

// CarService manages cars. Reads are public; mutations require the owner.
type CarService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	verifier    *ownership.Verifier
	log         logging.Logger
}

func NewCarService(runner dbx.Runner, rm repomanager.RepositoryManager, v *ownership.Verifier, log logging.Logger) *CarService {
	return &CarService{runner: runner, repomanager: rm, verifier: v, log: log.With("module", "cars")}
}

// Create stores car under the actor.
func (s *CarService) Create(ctx context.Context, actor *models.User, car *models.Car) (*models.Car, error) {
	car.ID = 0
	car.UserID = actor.ID

	var created *models.Car
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = s.repomanager.Cars(tx).Create(ctx, car)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *CarService) Get(ctx context.Context, id int64) (*models.Car, error) {
	car, err := s.repomanager.Cars(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundDetail(err, detailCarNotFound)
	}
	return car, nil
}

// ListByUser returns the cars of a user, oldest first.
func (s *CarService) ListByUser(ctx context.Context, userID int64) ([]*models.Car, error) {
	return s.repomanager.Cars(s.runner.Conn()).ListByUser(ctx, userID)
}

func (s *CarService) Update(ctx context.Context, actor *models.User, id int64, upd models.CarUpdate) (*models.Car, error) {
	var updated *models.Car
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		chain, err := s.verifier.Verify(ctx, tx, ownership.KindCar, id, actor.ID,
			ownership.WithNotFound(detailCarNotFound),
			ownership.WithForbidden(detailCarUpdateForbidden))
		if err != nil {
			return err
		}

		car := chain.Car()
		car.Apply(upd)
		updated, err = s.repomanager.Cars(tx).Update(ctx, car)
		return notFoundDetail(err, detailCarNotFound)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the car with its build lists and parts and returns it.
func (s *CarService) Delete(ctx context.Context, actor *models.User, id int64) (*models.Car, error) {
	var deleted *models.Car
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		chain, err := s.verifier.Verify(ctx, tx, ownership.KindCar, id, actor.ID,
			ownership.WithNotFound(detailCarNotFound),
			ownership.WithForbidden("Not authorized to delete this car"))
		if err != nil {
			return err
		}
		if err := s.repomanager.Cars(tx).Delete(ctx, id); err != nil {
			return notFoundDetail(err, detailCarNotFound)
		}
		deleted = chain.Car()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "car deleted", "car_id", id, "user_id", actor.ID)
	return deleted, nil
}
