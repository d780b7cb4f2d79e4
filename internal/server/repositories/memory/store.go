// Package memory implements the user, car, build list and part repositories
// over in-process maps. It mirrors the relational schema: unique usernames
// and emails, and cascading deletes from users down to parts. It backs the
// server when started with the memory:// DSN and the HTTP tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
)

// Store holds all tables behind a single lock.
type Store struct {
	mu sync.RWMutex

	nextID     int64
	users      map[int64]models.User
	cars       map[int64]models.Car
	buildLists map[int64]models.BuildList
	parts      map[int64]models.Part
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int64]models.User),
		cars:       make(map[int64]models.Car),
		buildLists: make(map[int64]models.BuildList),
		parts:      make(map[int64]models.Part),
	}
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

// missingParent is what a foreign key violation looks like here.
func missingParent(table string, id int64) error {
	return fmt.Errorf("%s %d does not exist: %w", table, id, common.ErrorNotFound)
}

func (s *Store) Users() *UserRepository           { return &UserRepository{s: s} }
func (s *Store) Cars() *CarRepository             { return &CarRepository{s: s} }
func (s *Store) BuildLists() *BuildListRepository { return &BuildListRepository{s: s} }
func (s *Store) Parts() *PartRepository           { return &PartRepository{s: s} }

// deleteCarLocked removes a car and everything under it.
func (s *Store) deleteCarLocked(id int64) {
	for blID, bl := range s.buildLists {
		if bl.CarID == id {
			s.deleteBuildListLocked(blID)
		}
	}
	delete(s.cars, id)
}

func (s *Store) deleteBuildListLocked(id int64) {
	for pID, p := range s.parts {
		if p.BuildListID == id {
			delete(s.parts, pID)
		}
	}
	delete(s.buildLists, id)
}

func sortByID[T any](items []*T, id func(*T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

// UserRepository implements users.Repository.
type UserRepository struct{ s *Store }

// conflictLocked reports which unique column of u clashes with another user.
func (r *UserRepository) conflictLocked(u *models.User) error {
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.Username == u.Username {
			return common.ErrUsernameTaken
		}
		if other.Email == u.Email {
			return common.ErrEmailTaken
		}
	}
	return nil
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user.ID = 0
	if err := r.conflictLocked(user); err != nil {
		return nil, err
	}
	user.ID = r.s.newID()
	user.CreatedAt = time.Now().UTC()
	r.s.users[user.ID] = *user
	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *UserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *UserRepository) Update(_ context.Context, user *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.users[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := r.conflictLocked(user); err != nil {
		return nil, err
	}
	user.Disabled = cur.Disabled
	user.CreatedAt = cur.CreatedAt
	r.s.users[user.ID] = *user
	return user, nil
}

func (r *UserRepository) SetDisabled(_ context.Context, id int64, disabled bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.Disabled = disabled
	r.s.users[id] = u
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return common.ErrorNotFound
	}
	for carID, c := range r.s.cars {
		if c.UserID == id {
			r.s.deleteCarLocked(carID)
		}
	}
	delete(r.s.users, id)
	return nil
}

// CarRepository implements cars.Repository.
type CarRepository struct{ s *Store }

func (r *CarRepository) Create(_ context.Context, car *models.Car) (*models.Car, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[car.UserID]; !ok {
		return nil, missingParent("user", car.UserID)
	}
	car.ID = r.s.newID()
	r.s.cars[car.ID] = *car
	return car, nil
}

func (r *CarRepository) GetByID(_ context.Context, id int64) (*models.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cars[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r *CarRepository) ListByUser(_ context.Context, userID int64) ([]*models.Car, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Car{}
	for _, c := range r.s.cars {
		if c.UserID == userID {
			result = append(result, &c)
		}
	}
	sortByID(result, func(c *models.Car) int64 { return c.ID })
	return result, nil
}

func (r *CarRepository) Update(_ context.Context, car *models.Car) (*models.Car, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.cars[car.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	car.UserID = cur.UserID
	r.s.cars[car.ID] = *car
	return car, nil
}

func (r *CarRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cars[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.deleteCarLocked(id)
	return nil
}

// BuildListRepository implements buildlists.Repository.
type BuildListRepository struct{ s *Store }

func (r *BuildListRepository) Create(_ context.Context, bl *models.BuildList) (*models.BuildList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cars[bl.CarID]; !ok {
		return nil, missingParent("car", bl.CarID)
	}
	bl.ID = r.s.newID()
	r.s.buildLists[bl.ID] = *bl
	return bl, nil
}

func (r *BuildListRepository) GetByID(_ context.Context, id int64) (*models.BuildList, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	bl, ok := r.s.buildLists[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &bl, nil
}

func (r *BuildListRepository) ListByCar(_ context.Context, carID int64) ([]*models.BuildList, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.BuildList{}
	for _, bl := range r.s.buildLists {
		if bl.CarID == carID {
			result = append(result, &bl)
		}
	}
	sortByID(result, func(bl *models.BuildList) int64 { return bl.ID })
	return result, nil
}

func (r *BuildListRepository) Update(_ context.Context, bl *models.BuildList) (*models.BuildList, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.buildLists[bl.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.s.cars[bl.CarID]; !ok {
		return nil, missingParent("car", bl.CarID)
	}
	r.s.buildLists[bl.ID] = *bl
	return bl, nil
}

func (r *BuildListRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.buildLists[id]; !ok {
		return common.ErrorNotFound
	}
	r.s.deleteBuildListLocked(id)
	return nil
}

// PartRepository implements parts.Repository.
type PartRepository struct{ s *Store }

func (r *PartRepository) Create(_ context.Context, p *models.Part) (*models.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.buildLists[p.BuildListID]; !ok {
		return nil, missingParent("build list", p.BuildListID)
	}
	p.ID = r.s.newID()
	r.s.parts[p.ID] = *p
	return p, nil
}

func (r *PartRepository) GetByID(_ context.Context, id int64) (*models.Part, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.parts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *PartRepository) ListByBuildList(_ context.Context, buildListID int64) ([]*models.Part, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []*models.Part{}
	for _, p := range r.s.parts {
		if p.BuildListID == buildListID {
			result = append(result, &p)
		}
	}
	sortByID(result, func(p *models.Part) int64 { return p.ID })
	return result, nil
}

func (r *PartRepository) Update(_ context.Context, p *models.Part) (*models.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.parts[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.s.buildLists[p.BuildListID]; !ok {
		return nil, missingParent("build list", p.BuildListID)
	}
	r.s.parts[p.ID] = *p
	return p, nil
}

func (r *PartRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.parts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.s.parts, id)
	return nil
}
