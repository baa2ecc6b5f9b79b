package deliverymen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/internal/users"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/localdrop-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type queueLister interface {
	ListQueue(ctx context.Context, filter deliveries.QueueFilter) (pagination.Page[deliveries.DeliveryDTO], error)
}

// AssignedQuery selects a courier's approved deliveries.
type AssignedQuery struct {
	CallerID   uuid.UUID
	CallerRole enums.UserRole
	CourierID  uuid.UUID
	Search     string
	Sort       enums.DeliverySort
	Page       pagination.Params
}

// Service exposes courier onboarding and the courier work queue.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*RequestDTO, error)
	ListPending(ctx context.Context) ([]RequestDTO, error)
	Decide(ctx context.Context, id uuid.UUID, decision enums.RequestStatus) (*RequestDTO, error)
	ListAssigned(ctx context.Context, query AssignedQuery) (pagination.Page[deliveries.DeliveryDTO], error)
}

type service struct {
	repo   *Repository
	users  *users.Repository
	queue  queueLister
	tx     txRunner
	outbox outboxPublisher
}

// NewService builds the courier onboarding service.
func NewService(repo *Repository, usersRepo *users.Repository, queue queueLister, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery man repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if queue == nil {
		return nil, fmt.Errorf("delivery queue required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, users: usersRepo, queue: queue, tx: tx, outbox: outbox}, nil
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (*RequestDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	vehicle := input.VehicleType
	if vehicle == "" {
		vehicle = enums.VehicleBicycle
	}
	if !vehicle.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle type")
	}
	if input.Experience < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "experience must not be negative")
	}
	fields := []string{input.Phone, input.Address, input.WorkArea, input.Profession}
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone, address, workArea and profession are required")
		}
	}

	request := &models.DeliveryManRequest{
		ID:          uuid.New(),
		UserID:      userID,
		Phone:       strings.TrimSpace(input.Phone),
		Address:     strings.TrimSpace(input.Address),
		WorkArea:    strings.TrimSpace(input.WorkArea),
		Age:         input.Age,
		Profession:  strings.TrimSpace(input.Profession),
		VehicleType: vehicle,
		Experience:  input.Experience,
		Status:      enums.RequestStatusPending,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		pending, err := repo.HasPending(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending request")
		}
		if pending {
			return pkgerrors.New(pkgerrors.CodeConflict, "You already have a pending request")
		}
		if err := repo.Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery man request")
		}
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "submit delivery man request")
	}
	dto := FromModel(request)
	return &dto, nil
}

func (s *service) ListPending(ctx context.Context) ([]RequestDTO, error) {
	rows, err := s.repo.ListByStatus(ctx, enums.RequestStatusPending)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery man requests")
	}
	out := make([]RequestDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (s *service) Decide(ctx context.Context, id uuid.UUID, decision enums.RequestStatus) (*RequestDTO, error) {
	if !decision.IsDecision() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be approved or rejected")
	}
	var decided *models.DeliveryManRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindByID(ctx, id)
		if err != nil {
			return mapRequestErr(err, "load delivery man request")
		}
		if request.Status != enums.RequestStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "Request already "+request.Status.String())
		}
		if err := repo.Decide(ctx, id, decision); err != nil {
			return mapRequestErr(err, "decide delivery man request")
		}
		request.Status = decision
		decided = request
		if decision != enums.RequestStatusApproved {
			return nil
		}

		if err := s.users.WithTx(tx).UpdateRole(ctx, request.UserID, enums.UserRoleDeliveryMan); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote courier")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDeliveryManApproved,
			AggregateType: enums.AggregateDeliveryManRequest,
			AggregateID:   request.ID,
			Actor:         &outbox.ActorRef{Role: string(enums.UserRoleAdmin)},
			Data: payloads.DeliveryManApprovedEvent{
				RequestID: request.ID,
				UserID:    request.UserID,
			},
		})
	})
	if err != nil {
		return nil, asServiceError(err, "decide delivery man request")
	}
	dto := FromModel(decided)
	return &dto, nil
}

func (s *service) ListAssigned(ctx context.Context, query AssignedQuery) (pagination.Page[deliveries.DeliveryDTO], error) {
	if query.CourierID == uuid.Nil {
		return pagination.Page[deliveries.DeliveryDTO]{}, pkgerrors.New(pkgerrors.CodeValidation, "delivery man id is required")
	}
	if query.CallerRole != enums.UserRoleAdmin && query.CallerID != query.CourierID {
		return pagination.Page[deliveries.DeliveryDTO]{}, pkgerrors.New(pkgerrors.CodeForbidden, "Not authorized")
	}
	courier := query.CourierID
	return s.queue.ListQueue(ctx, deliveries.QueueFilter{
		Statuses:      []enums.DeliveryStatus{enums.DeliveryStatusApproved},
		Search:        query.Search,
		DeliveryManID: &courier,
		Sort:          query.Sort,
		Page:          query.Page,
	})
}

func mapRequestErr(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Request not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func asServiceError(err error, action string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
