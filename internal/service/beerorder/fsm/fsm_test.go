package fsm

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"brewery/internal/service/beerorder/domain"
)

// memRepo 是测试用的内存仓储，行为与真实仓储一致：返回副本，写入原子。
type memRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*domain.BeerOrder
}

func newMemRepo() *memRepo {
	return &memRepo{orders: make(map[uuid.UUID]*domain.BeerOrder)}
}

func copyOrder(o *domain.BeerOrder) *domain.BeerOrder {
	clone := *o
	clone.Lines = make([]domain.BeerOrderLine, len(o.Lines))
	copy(clone.Lines, o.Lines)
	return &clone
}

func (r *memRepo) Create(_ context.Context, order *domain.BeerOrder) (*domain.BeerOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = copyOrder(order)
	return copyOrder(order), nil
}

func (r *memRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.BeerOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return copyOrder(order), nil
}

func (r *memRepo) Save(_ context.Context, order *domain.BeerOrder) (*domain.BeerOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = copyOrder(order)
	return copyOrder(order), nil
}

// recordingPublishers 记录所有出站发布，实现三个出站端口。
type recordingPublishers struct {
	mu         sync.Mutex
	validation []*domain.ValidateOrderRequest
	allocation []*domain.AllocateOrderRequest
	failures   []*domain.AllocationFailureEvent
}

func (p *recordingPublishers) PublishValidationRequest(_ context.Context, req *domain.ValidateOrderRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.validation = append(p.validation, req)
	return nil
}

func (p *recordingPublishers) PublishAllocationRequest(_ context.Context, req *domain.AllocateOrderRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allocation = append(p.allocation, req)
	return nil
}

func (p *recordingPublishers) PublishAllocationFailure(_ context.Context, ev *domain.AllocationFailureEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, ev)
	return nil
}

func (p *recordingPublishers) asPublishers() Publishers {
	return Publishers{Validation: p, Allocation: p, AllocationFailure: p}
}

func storedOrder(repo *memRepo, status domain.OrderStatus) *domain.BeerOrder {
	order := &domain.BeerOrder{
		ID:          uuid.New(),
		CustomerRef: "taproom-7",
		Status:      status,
		Lines: []domain.BeerOrderLine{
			{ID: uuid.New(), UPC: "0631234200036", OrderQuantity: 12},
		},
	}
	repo.orders[order.ID] = order
	return order
}
