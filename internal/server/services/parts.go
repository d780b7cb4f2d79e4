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

const detailPartNotFound = "Part not found"

// PartService manages parts. A part belongs to the owner of the car its
// build list hangs off.
type PartService struct {
	runner      dbx.Runner
	repomanager repomanager.RepositoryManager
	verifier    *ownership.Verifier
	log         logging.Logger
}

func NewPartService(runner dbx.Runner, rm repomanager.RepositoryManager, v *ownership.Verifier, log logging.Logger) *PartService {
	return &PartService{runner: runner, repomanager: rm, verifier: v, log: log.With("module", "parts")}
}

func (s *PartService) Create(ctx context.Context, actor *models.User, p *models.Part) (*models.Part, error) {
	p.ID = 0

	var created *models.Part
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := s.verifier.Verify(ctx, tx, ownership.KindBuildList, p.BuildListID, actor.ID,
			ownership.WithNotFound(detailBuildListNotFound),
			ownership.WithForbidden("Not authorized to add a part to this build list"))
		if err != nil {
			return err
		}
		created, err = s.repomanager.Parts(tx).Create(ctx, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *PartService) Get(ctx context.Context, id int64) (*models.Part, error) {
	p, err := s.repomanager.Parts(s.runner.Conn()).GetByID(ctx, id)
	if err != nil {
		return nil, notFoundDetail(err, detailPartNotFound)
	}
	return p, nil
}

// ListByBuildList returns the parts of an existing build list.
func (s *PartService) ListByBuildList(ctx context.Context, buildListID int64) ([]*models.Part, error) {
	db := s.runner.Conn()
	if _, err := s.repomanager.BuildLists(db).GetByID(ctx, buildListID); err != nil {
		return nil, notFoundDetail(err, detailBuildListNotFound)
	}
	return s.repomanager.Parts(db).ListByBuildList(ctx, buildListID)
}

// Update applies upd. Moving the part to another build list requires
// ownership of both build lists.
func (s *PartService) Update(ctx context.Context, actor *models.User, id int64, upd models.PartUpdate) (*models.Part, error) {
	var newBuildListID int64
	if upd.BuildListID != nil {
		if *upd.BuildListID <= 0 {
			return nil, common.WithDetail(common.ErrorValidation, "build_list_id must be positive")
		}
		newBuildListID = *upd.BuildListID
	}

	var updated *models.Part
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		chain, err := s.verifier.VerifyReparent(ctx, tx, ownership.KindPart, id, newBuildListID, actor.ID, ownership.ReparentOptions{
			Current: []ownership.Option{
				ownership.WithNotFound(detailPartNotFound),
				ownership.WithForbidden("Not authorized to update this part"),
			},
			Target: []ownership.Option{
				ownership.WithNotFound(fmt.Sprintf("New Build List with id %d not found", newBuildListID)),
				ownership.WithForbidden("Not authorized to move part to the new build list"),
			},
		})
		if err != nil {
			return err
		}

		p := chain.Part()
		p.Apply(upd)
		updated, err = s.repomanager.Parts(tx).Update(ctx, p)
		return notFoundDetail(err, detailPartNotFound)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PartService) Delete(ctx context.Context, actor *models.User, id int64) (*models.Part, error) {
	var deleted *models.Part
	err := s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		chain, err := s.verifier.Verify(ctx, tx, ownership.KindPart, id, actor.ID,
			ownership.WithNotFound(detailPartNotFound),
			ownership.WithForbidden("Not authorized to delete this part"))
		if err != nil {
			return err
		}
		if err := s.repomanager.Parts(tx).Delete(ctx, id); err != nil {
			return notFoundDetail(err, detailPartNotFound)
		}
		deleted = chain.Part()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "part deleted", "part_id", id, "user_id", actor.ID)
	return deleted, nil
}
