package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"audioshop/internal/events"
	infra "audioshop/internal/infra/repository"
	repo "audioshop/internal/repository"
	"audioshop/internal/testutil"

	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// 送ったイベントを覚えておくだけのPublisher
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, key string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	p.topics = append(p.topics, topic)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type TxManagerMock struct{ mock.Mock }

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var errBeginFailed = errors.New("begin failed")

type fixture struct {
	db       *gorm.DB
	pub      *recordingPublisher
	orders   *OrderUsecase
	products *ProductUsecase
	users    *UserUsecase
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	gdb := testutil.NewDB(t)
	pub := &recordingPublisher{}
	tm := infra.NewTxManagerGorm(gdb)

	return fixture{
		db:       gdb,
		pub:      pub,
		orders:   NewOrderUsecase(tm, infra.NewOrderGormRepository(gdb), infra.NewOrderLineGormRepository(gdb), pub),
		products: NewProductUsecase(tm, infra.NewProductGormRepository(gdb), infra.NewAccessoryGormRepository(gdb), pub),
		users:    NewUserUsecase(infra.NewUserGormRepository(gdb)),
	}
}
