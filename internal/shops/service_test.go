package shops

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/localdrop-backend/internal/users"
	"github.com/angelmondragon/localdrop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/localdrop-backend/pkg/errors"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
)

type fixture struct {
	svc   Service
	repo  *Repository
	users *users.Repository
	conn  *gorm.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.NewClient(t)
	repo := NewRepository(conn)
	usersRepo := users.NewRepository(conn)
	svc, err := NewService(repo, usersRepo, client, outbox.NewService(outbox.NewRepository(conn), nil))
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, users: usersRepo, conn: conn}
}

func (f fixture) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := f.users.Create(context.Background(), users.CreateUserDTO{FullName: "Owner " + email, Email: email})
	require.NoError(t, err)
	return user
}

func ownershipInput() OwnershipRequestInput {
	return OwnershipRequestInput{
		ShopName:         "Campus Bites",
		LocalAreas:       []string{" Dhaka University ", "", "Mirpur"},
		PermanentAddress: "Road 1",
		ShopCategory:     enums.ShopCategoryFoodDelivery,
		ContactNumber:    "01711111111",
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil)
	require.Error(t, err)
}

func TestRequestOwnershipAllocatesSequentialPins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createUser(t, "a@example.com")
	second := f.createUser(t, "b@example.com")

	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: first.ID, Role: enums.UserRoleUser}, ownershipInput())
	require.NoError(t, err)
	require.Equal(t, FirstShopPin, shop.ShopPin)
	require.Equal(t, []string{"Dhaka University", "Mirpur"}, shop.LocalAreas)
	require.Equal(t, enums.ShopStatusPending, shop.Status)
	require.Equal(t, 1, shop.SellDays)
	require.True(t, shop.IsOpen)
	require.True(t, shop.SelfDelivery)

	next, err := f.svc.RequestOwnership(ctx, Actor{UserID: second.ID, Role: enums.UserRoleUser}, ownershipInput())
	require.NoError(t, err)
	require.Equal(t, FirstShopPin+1, next.ShopPin)
}

func TestRequestOwnershipRejectsDuplicatesAndMissingAreas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "dup@example.com")
	actor := Actor{UserID: owner.ID, Role: enums.UserRoleUser}

	input := ownershipInput()
	input.LocalAreas = []string{"  ", ""}
	_, err := f.svc.RequestOwnership(ctx, actor, input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	shop, err := f.svc.RequestOwnership(ctx, actor, ownershipInput())
	require.NoError(t, err)

	_, err = f.svc.RequestOwnership(ctx, actor, ownershipInput())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, "You already have a pending request", pkgerrors.As(err).Message())

	_, err = f.svc.ApproveOwnership(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, shop.ID)
	require.NoError(t, err)

	_, err = f.svc.RequestOwnership(ctx, actor, ownershipInput())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, "You are already a shop owner", pkgerrors.As(err).Message())
}

func TestApproveOwnershipPromotesOwnerAndEmits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "owner@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)

	approved, err := f.svc.ApproveOwnership(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, shop.ID)
	require.NoError(t, err)
	require.Equal(t, enums.ShopStatusApproved, approved.Status)

	reloaded, err := f.users.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleShopOwner, reloaded.Role)
	require.NotNil(t, reloaded.ShopID)
	require.Equal(t, shop.ID, *reloaded.ShopID)

	var events []models.OutboxEvent
	require.NoError(t, f.conn.Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, enums.EventShopApproved, events[0].EventType)

	requests, err := f.svc.ListOwnershipRequests(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.NotNil(t, requests[0].OwnerInfo)
	require.Equal(t, "owner@example.com", requests[0].OwnerInfo.Email)

	_, err = f.svc.ApproveOwnership(ctx, Actor{Role: enums.UserRoleAdmin}, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRejectOwnershipDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "r@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.RejectOwnership(ctx, shop.ID))
	_, err = f.svc.Get(ctx, shop.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.True(t, pkgerrors.IsCode(f.svc.RejectOwnership(ctx, shop.ID), pkgerrors.CodeNotFound))
}

func TestListByLocalAreaMatchesApprovedSubstring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "area@example.com")
	other := f.createUser(t, "pending@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)
	_, err = f.svc.RequestOwnership(ctx, Actor{UserID: other.ID}, ownershipInput())
	require.NoError(t, err)
	_, err = f.svc.ApproveOwnership(ctx, Actor{Role: enums.UserRoleAdmin}, shop.ID)
	require.NoError(t, err)

	found, err := f.svc.ListByLocalArea(ctx, "dhaka")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, shop.ID, found[0].ID)

	none, err := f.svc.ListByLocalArea(ctx, "100%")
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = f.svc.ListByLocalArea(ctx, " ")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestToggleStatusHonoursBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "toggle@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)
	actor := Actor{UserID: owner.ID, Role: enums.UserRoleShopOwner, ShopID: &shop.ID}

	res, err := f.svc.ToggleStatus(ctx, actor, shop.ID)
	require.NoError(t, err)
	require.False(t, res.IsOpen)
	require.Equal(t, "Shop is now closed", res.Message)

	res, err = f.svc.ToggleStatus(ctx, actor, shop.ID)
	require.NoError(t, err)
	require.True(t, res.IsOpen)

	blocked := true
	_, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{IsBlock: &blocked})
	require.NoError(t, err)
	res, err = f.svc.ToggleStatus(ctx, actor, shop.ID)
	require.NoError(t, err)
	require.False(t, res.IsOpen)

	stranger := Actor{UserID: uuid.New(), Role: enums.UserRoleShopOwner, ShopID: ptr(uuid.New())}
	_, err = f.svc.ToggleStatus(ctx, stranger, shop.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateFormatsPhonesAndAreas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "update@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)

	contact := PhoneInput("1711000000")
	bkash := PhoneInput("01811000000")
	areas := AreaInput{"Uttara", " Banani "}
	updated, err := f.svc.Update(ctx, shop.ID, UpdateShopInput{
		ContactNumber: &contact,
		BkashNumber:   &bkash,
		LocalAreas:    &areas,
	})
	require.NoError(t, err)
	require.Equal(t, "01711000000", updated.ContactNumber)
	require.Equal(t, "01811000000", *updated.BkashNumber)
	require.Equal(t, []string{"Uttara", "Banani"}, updated.LocalAreas)

	reloaded, err := f.repo.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	require.Equal(t, "|uttara|banani|", reloaded.AreaIndex)

	_, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateKeepsBlockedShopClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "blocked@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)

	yes, no := true, false
	_, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{IsBlock: &yes, IsOpen: &yes})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	updated, err := f.svc.Update(ctx, shop.ID, UpdateShopInput{IsBlock: &yes})
	require.NoError(t, err)
	require.False(t, updated.IsOpen)

	_, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{IsOpen: &yes})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	reloaded, err := f.repo.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	require.False(t, reloaded.IsOpen)

	updated, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{IsBlock: &no, IsOpen: &yes})
	require.NoError(t, err)
	require.True(t, updated.IsOpen)
}

func TestUpdateKeepsChargesParallelToAreas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "parallel@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)
	require.Len(t, shop.LocalAreas, 2)

	one := ChargeInput{decimal.NewFromInt(20)}
	_, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{DeliveryCharge: &one})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	two := ChargeInput{decimal.NewFromInt(20), decimal.NewFromInt(30)}
	_, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{DeliveryCharge: &two})
	require.NoError(t, err)

	three := AreaInput{"Uttara", "Banani", "Gulshan"}
	_, err = f.svc.Update(ctx, shop.ID, UpdateShopInput{LocalAreas: &three})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	reloaded, err := f.repo.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.LocalAreas, 2)

	threeCharges := ChargeInput{decimal.NewFromInt(20), decimal.NewFromInt(30), decimal.NewFromInt(40)}
	updated, err := f.svc.Update(ctx, shop.ID, UpdateShopInput{LocalAreas: &three, DeliveryCharge: &threeCharges})
	require.NoError(t, err)
	require.Len(t, updated.LocalAreas, 3)
	require.Len(t, updated.DeliveryCharge, 3)
}

func TestUpdateDeliveryChargeRequiresOwnershipAndLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "charge@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)
	actor := Actor{UserID: owner.ID, Role: enums.UserRoleShopOwner, ShopID: &shop.ID}

	_, err = f.svc.UpdateDeliveryCharge(ctx, actor, shop.ID, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = f.svc.UpdateDeliveryCharge(ctx, actor, shop.ID, []decimal.Decimal{decimal.NewFromInt(20)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	charges := []decimal.Decimal{decimal.NewFromInt(20), decimal.RequireFromString("35.5")}
	updated, err := f.svc.UpdateDeliveryCharge(ctx, actor, shop.ID, charges)
	require.NoError(t, err)
	require.Len(t, updated.DeliveryCharge, 2)

	front, err := f.svc.GetStorefront(ctx, shop.ID)
	require.NoError(t, err)
	require.True(t, front.DeliveryCharge[1].Equal(decimal.RequireFromString("35.5")))

	_, err = f.svc.UpdateDeliveryCharge(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleUser}, shop.ID, charges)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.UpdateDeliveryCharge(ctx, Actor{UserID: uuid.New(), Role: enums.UserRoleAdmin}, shop.ID, charges)
	require.NoError(t, err)
}

func TestResetDeliveryCountAndPinLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "reset@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)
	require.NoError(t, f.repo.IncrementDeliveryCount(ctx, shop.ID))
	require.NoError(t, f.repo.IncrementDeliveryCount(ctx, shop.ID))

	before := time.Now().UTC().Add(-time.Second)
	reset, err := f.svc.ResetDeliveryCount(ctx, shop.ID)
	require.NoError(t, err)
	require.Zero(t, reset.DeliveryCount)
	require.NotNil(t, reset.LastResetDate)
	require.True(t, reset.LastResetDate.After(before))

	byPin, err := f.svc.GetByPin(ctx, shop.ShopPin)
	require.NoError(t, err)
	require.Equal(t, shop.ID, byPin.ID)

	_, err = f.svc.GetByPin(ctx, 1)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestRepositoryAccrueSellDaysTouchesOpenShops(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	open := f.createUser(t, "open@example.com")
	closed := f.createUser(t, "closed@example.com")
	openShop, err := f.svc.RequestOwnership(ctx, Actor{UserID: open.ID}, ownershipInput())
	require.NoError(t, err)
	closedShop, err := f.svc.RequestOwnership(ctx, Actor{UserID: closed.ID}, ownershipInput())
	require.NoError(t, err)
	require.NoError(t, f.repo.UpdateColumns(ctx, closedShop.ID, map[string]any{"is_open": false}))

	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	dayStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	touched, err := f.repo.AccrueSellDays(ctx, now, dayStart)
	require.NoError(t, err)
	require.EqualValues(t, 1, touched)

	got, err := f.repo.FindByID(ctx, openShop.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.SellDays)
	require.NotNil(t, got.LastResetDate)
	require.True(t, got.LastResetDate.Equal(now))

	got, err = f.repo.FindByID(ctx, closedShop.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.SellDays)
}

func TestRepositoryAccrueSellDaysOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "daily@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)

	dayStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	touched, err := f.repo.AccrueSellDays(ctx, first, dayStart)
	require.NoError(t, err)
	require.EqualValues(t, 1, touched)

	touched, err = f.repo.AccrueSellDays(ctx, first.Add(30*time.Second), dayStart)
	require.NoError(t, err)
	require.EqualValues(t, 0, touched)

	got, err := f.repo.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.SellDays)
	require.True(t, got.LastResetDate.Equal(first))

	nextDay := dayStart.Add(24 * time.Hour)
	touched, err = f.repo.AccrueSellDays(ctx, nextDay.Add(12*time.Hour), nextDay)
	require.NoError(t, err)
	require.EqualValues(t, 1, touched)
	got, err = f.repo.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.SellDays)
}

func TestRepositorySellPriceAndResetStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.createUser(t, "stats@example.com")
	shop, err := f.svc.RequestOwnership(ctx, Actor{UserID: owner.ID}, ownershipInput())
	require.NoError(t, err)

	require.NoError(t, f.repo.AddSellPrice(ctx, shop.ID, decimal.NewFromInt(300)))
	require.NoError(t, f.repo.AddSellPrice(ctx, shop.ID, decimal.NewFromInt(150)))
	got, err := f.repo.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	require.True(t, got.TotalSellPrice.Equal(decimal.NewFromInt(450)))

	require.NoError(t, f.repo.ResetStats(ctx, shop.ID))
	got, err = f.repo.FindByID(ctx, shop.ID)
	require.NoError(t, err)
	require.True(t, got.TotalSellPrice.IsZero())
	require.Zero(t, got.SellDays)
	require.Nil(t, got.LastResetDate)

	require.ErrorIs(t, f.repo.ResetStats(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestPhoneAndAreaInputDecoding(t *testing.T) {
	var in UpdateShopInput
	require.NoError(t, json.Unmarshal([]byte(`{"contactNumber":1711000000,"localAreas":"A, B","deliveryCharge":"10, 20.5"}`), &in))
	require.Equal(t, PhoneInput("1711000000"), *in.ContactNumber)
	require.Equal(t, AreaInput{"A", " B"}, *in.LocalAreas)
	require.Len(t, *in.DeliveryCharge, 2)
	require.Equal(t, "0123", EnsureLeadingZero("123"))
	require.Equal(t, "0123", EnsureLeadingZero("0123"))
}

func ptr[T any](v T) *T { return &v }
