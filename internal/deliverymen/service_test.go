package deliverymen

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/internal/users"
	"github.com/angelmondragon/localdrop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/pagination"
	"github.com/angelmondragon/localdrop-backend/pkg/types"
)

type fixture struct {
	svc        Service
	deliveries deliveries.Service
	shops      *shops.Repository
	users      *users.Repository
	conn       *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.NewClient(t)
	usersRepo := users.NewRepository(conn)
	shopRepo := shops.NewRepository(conn)
	events := outbox.NewService(outbox.NewRepository(conn), nil)
	deliverySvc, err := deliveries.NewService(deliveries.NewRepository(conn), shopRepo, usersRepo, client, events, nil)
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), usersRepo, deliverySvc, client, events)
	require.NoError(t, err)
	return fixture{svc: svc, deliveries: deliverySvc, shops: shopRepo, users: usersRepo, conn: conn}
}

func (f fixture) seedUser(t *testing.T, role enums.UserRole) *models.User {
	t.Helper()
	id := uuid.New()
	user, err := f.users.Create(context.Background(), users.CreateUserDTO{
		FullName: "Karim " + id.String()[:6],
		Email:    id.String()[:8] + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func application() SubmitInput {
	return SubmitInput{
		Phone:       "01733333333",
		Address:     "Mirpur 10",
		WorkArea:    "Dhaka University",
		Age:         22,
		Profession:  "Student",
		VehicleType: enums.VehicleMotorcycle,
		Experience:  1,
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestSubmitAllowsOnePendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, enums.UserRoleUser)

	created, err := f.svc.Submit(ctx, user.ID, application())
	require.NoError(t, err)
	require.Equal(t, enums.RequestStatusPending, created.Status)

	_, err = f.svc.Submit(ctx, user.ID, application())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, user.FullName, pending[0].User.FullName)
	require.Equal(t, user.Email, pending[0].User.Email)
}

func TestSubmitValidatesInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, enums.UserRoleUser)

	bad := application()
	bad.VehicleType = "rocket"
	_, err := f.svc.Submit(ctx, user.ID, bad)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	bad = application()
	bad.WorkArea = "  "
	_, err = f.svc.Submit(ctx, user.ID, bad)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Submit(ctx, uuid.Nil, application())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestDecideApprovalPromotesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, enums.UserRoleUser)
	created, err := f.svc.Submit(ctx, user.ID, application())
	require.NoError(t, err)

	decided, err := f.svc.Decide(ctx, created.ID, enums.RequestStatusApproved)
	require.NoError(t, err)
	require.Equal(t, enums.RequestStatusApproved, decided.Status)

	promoted, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleDeliveryMan, promoted.Role)

	var events int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventDeliveryManApproved).Count(&events).Error)
	require.EqualValues(t, 1, events)

	_, err = f.svc.Decide(ctx, created.ID, enums.RequestStatusRejected)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)
}

func TestDecideRejectionKeepsRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.seedUser(t, enums.UserRoleUser)
	created, err := f.svc.Submit(ctx, user.ID, application())
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, created.ID, enums.RequestStatusPending)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.Decide(ctx, created.ID, enums.RequestStatusRejected)
	require.NoError(t, err)
	unchanged, err := f.users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleUser, unchanged.Role)

	again, err := f.svc.Submit(ctx, user.ID, application())
	require.NoError(t, err)
	require.Equal(t, enums.RequestStatusPending, again.Status)

	_, err = f.svc.Decide(ctx, uuid.New(), enums.RequestStatusApproved)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListAssignedReturnsOnlyCourierDeliveries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.seedUser(t, enums.UserRoleShopOwner)
	shop := &models.Shop{
		ID:               uuid.New(),
		ShopName:         "Hall Canteen",
		LocalAreas:       dbtypes.NewAreaList([]string{"Dhaka University"}),
		PermanentAddress: "Road 1",
		ShopCategory:     enums.ShopCategoryFoodDelivery,
		OwnerID:          owner.ID,
		Status:           enums.ShopStatusApproved,
		ContactNumber:    "01711111111",
		ShopPin:          56200,
		TotalSellPrice:   decimal.Zero,
		SellDays:         1,
		IsOpen:           true,
		DeliveryCharge:   types.DecimalList{},
		SelfDelivery:     false,
	}
	require.NoError(t, f.shops.Create(ctx, shop))
	courier := f.seedUser(t, enums.UserRoleDeliveryMan)
	other := f.seedUser(t, enums.UserRoleDeliveryMan)

	order := func(amount int64, txn string) uuid.UUID {
		created, err := f.deliveries.Create(ctx, deliveries.Customer{}, deliveries.CreateDeliveryInput{
			Shop:  shop.ID,
			Items: []types.LineItem{{Name: "Khichuri", Quantity: 1, Price: decimal.NewFromInt(amount), Category: "Lunch", Image: "khichuri.jpg"}},
			DeliveryDetails: deliveries.DeliveryDetailsDTO{
				UniversityOrVillage: "DU", HallOrMoholla: "SM Hall", RoomOrIdentity: "12",
				ContactNumber: 1711111111, DeliveryDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), DeliveryTime: "noon",
			},
			Payment: deliveries.PaymentDTO{
				Method: enums.PaymentMethodBkash, Amount: decimal.NewFromInt(amount),
				PaymentNumber: 1722222222, TransactionID: txn,
			},
		})
		require.NoError(t, err)
		return created.ID
	}
	mine := order(200, "MINE1")
	theirs := order(300, "THEIRS1")
	_, err := f.deliveries.Approve(ctx, deliveries.StaffScope(courier.ID, courier.Role, nil), mine)
	require.NoError(t, err)
	_, err = f.deliveries.Approve(ctx, deliveries.StaffScope(other.ID, other.Role, nil), theirs)
	require.NoError(t, err)

	page, err := f.svc.ListAssigned(ctx, AssignedQuery{CallerID: courier.ID, CallerRole: courier.Role, CourierID: courier.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, mine, page.Items[0].ID)

	page, err = f.svc.ListAssigned(ctx, AssignedQuery{
		CallerID: courier.ID, CallerRole: courier.Role, CourierID: courier.ID,
		Search: "theirs", Page: pagination.Params{Limit: 10},
	})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	_, err = f.svc.ListAssigned(ctx, AssignedQuery{CallerID: courier.ID, CallerRole: courier.Role, CourierID: other.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	admin := f.seedUser(t, enums.UserRoleAdmin)
	page, err = f.svc.ListAssigned(ctx, AssignedQuery{CallerID: admin.ID, CallerRole: admin.Role, CourierID: other.ID})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, theirs, page.Items[0].ID)
}
