package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/carmodpicker/internal/dbx"
	"github.com/dmitrijs2005/carmodpicker/internal/logging"
	"github.com/dmitrijs2005/carmodpicker/internal/server/auth"
	"github.com/dmitrijs2005/carmodpicker/internal/server/config"
	"github.com/dmitrijs2005/carmodpicker/internal/server/models"
	"github.com/dmitrijs2005/carmodpicker/internal/server/ownership"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/memory"
	"github.com/dmitrijs2005/carmodpicker/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	to         string
	templateID string
	data       map[string]any
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) Send(_ context.Context, to, templateID string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, templateID: templateID, data: data})
	return nil
}

func (m *fakeMailer) last(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent, "no mail sent")
	return m.sent[len(m.sent)-1]
}

// parentOverrides rewrites the parent id a chain step reports for chosen
// rows, standing in for a row whose foreign key points nowhere.
type parentOverrides struct {
	mu sync.Mutex
	m  map[ownership.Kind]map[int64]int64
}

func (o *parentOverrides) set(kind ownership.Kind, id, parentID int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.m == nil {
		o.m = make(map[ownership.Kind]map[int64]int64)
	}
	if o.m[kind] == nil {
		o.m[kind] = make(map[int64]int64)
	}
	o.m[kind][id] = parentID
}

func (o *parentOverrides) wrap(steps ownership.Descriptor) ownership.Descriptor {
	out := make(ownership.Descriptor, len(steps))
	for kind, step := range steps {
		out[kind] = func(ctx context.Context, db dbx.DBTX, id int64) (ownership.Node, error) {
			n, err := step(ctx, db, id)
			if err != nil {
				return n, err
			}
			o.mu.Lock()
			defer o.mu.Unlock()
			if parentID, ok := o.m[kind][id]; ok {
				n.ParentID = parentID
			}
			return n, nil
		}
	}
	return out
}

type testEnv struct {
	store   *memory.Store
	orphans *parentOverrides
	tokens *auth.TokenIssuer
	mailer *fakeMailer
	cfg    *config.Config

	users      *UserService
	auth       *AuthService
	cars       *CarService
	buildLists *BuildListService
	parts      *PartService
	images     *ImageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	rm := repomanager.NewMemoryRepositoryManager(store)
	runner := dbx.NopRunner{}
	log := logging.Nop{}
	orphans := &parentOverrides{}
	v := ownership.NewVerifier(orphans.wrap(ownership.DefaultSteps(rm)), log)

	tokens, err := auth.NewTokenIssuer("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{
		S3Region:       "us-east-1",
		S3AccessKey:    "minioadmin",
		S3SecretKey:    "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "carmodpicker",
	}
	mailer := &fakeMailer{}

	return &testEnv{
		store:      store,
		orphans:    orphans,
		tokens:     tokens,
		mailer:     mailer,
		cfg:        cfg,
		users:      NewUserService(runner, rm, log),
		auth:       NewAuthService(runner, rm, tokens, mailer, "http://localhost:5173/", time.Hour, log),
		cars:       NewCarService(runner, rm, v, log),
		buildLists: NewBuildListService(runner, rm, v, log),
		parts:      NewPartService(runner, rm, v, log),
		images:     NewImageService(runner, rm, v, cfg, log),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@x.com",
		Password: "pw123",
	})
	require.NoError(t, err)
	return u
}

// garage is a car with one build list holding one part.
type garage struct {
	car  *models.Car
	bl   *models.BuildList
	part *models.Part
}

func (e *testEnv) garage(t *testing.T, owner *models.User) garage {
	t.Helper()
	ctx := context.Background()

	car, err := e.cars.Create(ctx, owner, &models.Car{Make: "Honda", Model: "Civic", Year: 2022})
	require.NoError(t, err)
	bl, err := e.buildLists.Create(ctx, owner, &models.BuildList{Name: "Track", CarID: car.ID})
	require.NoError(t, err)
	p, err := e.parts.Create(ctx, owner, &models.Part{Name: "Coilovers", BuildListID: bl.ID})
	require.NoError(t, err)
	return garage{car: car, bl: bl, part: p}
}

func ptr[T any](v T) *T { return &v }
