package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/localdrop-backend/internal/catalog"
	"github.com/angelmondragon/localdrop-backend/internal/deliveries"
	"github.com/angelmondragon/localdrop-backend/internal/deliverymen"
	"github.com/angelmondragon/localdrop-backend/internal/shops"
	"github.com/angelmondragon/localdrop-backend/internal/users"
	pkgAuth "github.com/angelmondragon/localdrop-backend/pkg/auth"
	"github.com/angelmondragon/localdrop-backend/pkg/config"
	"github.com/angelmondragon/localdrop-backend/pkg/db/dbtest"
	"github.com/angelmondragon/localdrop-backend/pkg/db/models"
	dbtypes "github.com/angelmondragon/localdrop-backend/pkg/db/types"
	"github.com/angelmondragon/localdrop-backend/pkg/enums"
	"github.com/angelmondragon/localdrop-backend/pkg/logger"
	"github.com/angelmondragon/localdrop-backend/pkg/metrics"
	"github.com/angelmondragon/localdrop-backend/pkg/outbox"
	"github.com/angelmondragon/localdrop-backend/pkg/pagination"
	"github.com/angelmondragon/localdrop-backend/pkg/types"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error {
	return s.err
}

type testServer struct {
	handler http.Handler
	cfg     *config.Config
	users   *users.Repository
	shops   *shops.Repository
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	client, conn := dbtest.NewClient(t)
	cfg := &config.Config{
		App:  config.AppConfig{Env: "test"},
		JWT:  config.JWTConfig{Secret: "secret", Issuer: "localdrop-test", ExpirationMinutes: 30},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
	}

	usersRepo := users.NewRepository(conn)
	shopRepo := shops.NewRepository(conn)
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), nil)
	registry := prometheus.NewRegistry()

	shopSvc, err := shops.NewService(shopRepo, usersRepo, client, outboxSvc)
	require.NoError(t, err)
	deliverySvc, err := deliveries.NewService(deliveries.NewRepository(conn), shopRepo, usersRepo, client, outboxSvc, metrics.NewDeliveryMetrics(registry))
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn), shopRepo)
	require.NoError(t, err)
	courierSvc, err := deliverymen.NewService(deliverymen.NewRepository(conn), usersRepo, deliverySvc, client, outboxSvc)
	require.NoError(t, err)
	userSvc, err := users.NewService(usersRepo)
	require.NoError(t, err)

	logg := logger.New(logger.Options{ServiceName: "router-test", Level: zerolog.Disabled, Output: io.Discard})
	handler := NewRouter(cfg, logg, stubPinger{}, nil, registry, metrics.NewHTTPMetrics(registry),
		usersRepo, deliverySvc, shopSvc, catalogSvc, courierSvc, userSvc)
	return testServer{handler: handler, cfg: cfg, users: usersRepo, shops: shopRepo}
}

func (s testServer) seedUser(t *testing.T, role enums.UserRole) *models.User {
	t.Helper()
	id := uuid.NewString()
	user, err := s.users.Create(context.Background(), users.CreateUserDTO{
		FullName: "Karim " + id[:4],
		Email:    id[:8] + "@example.com",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

func (s testServer) seedOwnerWithShop(t *testing.T) (*models.User, *models.Shop) {
	t.Helper()
	return s.seedShop(t, 56200, true)
}

func (s testServer) seedShop(t *testing.T, pin int, selfDelivery bool) (*models.User, *models.Shop) {
	t.Helper()
	owner := s.seedUser(t, enums.UserRoleShopOwner)
	shop := &models.Shop{
		ID:               uuid.New(),
		ShopName:         "Hall Canteen " + strconv.Itoa(pin),
		LocalAreas:       dbtypes.NewAreaList([]string{"Dhaka University"}),
		PermanentAddress: "Nilkhet",
		ShopCategory:     enums.ShopCategoryFoodDelivery,
		OwnerID:          owner.ID,
		Status:           enums.ShopStatusApproved,
		ContactNumber:    "01700000000",
		ShopPin:          pin,
		TotalSellPrice:   decimal.Zero,
		SellDays:         1,
		IsOpen:           true,
		DeliveryCharge:   types.DecimalList{decimal.NewFromInt(20)},
		SelfDelivery:     selfDelivery,
	}
	require.NoError(t, s.shops.Create(context.Background(), shop))
	require.NoError(t, s.users.AssignShop(context.Background(), owner.ID, shop.ID))
	return owner, shop
}

func (s testServer) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(s.cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: user.ID, Role: user.Role})
	require.NoError(t, err)
	return token
}

func (s testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func errorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func orderBody(shopID uuid.UUID, guestKey string) map[string]any {
	return map[string]any{
		"shop":     shopID,
		"guestKey": guestKey,
		"items": []map[string]any{
			{"name": "Khichuri", "quantity": 2, "price": "60", "category": "Lunch", "image": "khichuri.jpg"},
		},
		"deliveryDetails": map[string]any{
			"universityOrVillage": "Dhaka University",
			"hallOrMoholla":       "Zia Hall",
			"roomOrIdentity":      "Room 204",
			"contactNumber":       "01711111111",
			"deliveryDate":        "2026-03-02T00:00:00Z",
			"deliveryTime":        "13:30",
		},
		"payment": map[string]any{
			"method":        "bkash",
			"amount":        "120",
			"paymentNumber": "01722222222",
			"transactionId": "TXN9001",
		},
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "test", resp.Header().Get("X-LocalDrop-Env"))

	resp = srv.do(t, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = srv.do(t, http.MethodGet, "/api/public/ping", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestDeliveryLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	owner, shop := srv.seedOwnerWithShop(t)
	ownerToken := srv.token(t, owner)

	resp := srv.do(t, http.MethodPost, "/api/deliveries", "", orderBody(shop.ID, "guest-abc"))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodeData[deliveries.DeliveryDTO](t, resp)
	require.Equal(t, enums.DeliveryStatusPending, created.Status)
	require.Nil(t, created.DeliveryPin)

	resp = srv.do(t, http.MethodGet, "/api/deliveries/pending", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, decodeData[[]deliveries.DeliveryDTO](t, resp), 1)

	resp = srv.do(t, http.MethodPut, "/api/deliveries/"+created.ID.String()+"/approve", ownerToken, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	approved := decodeData[deliveries.DeliveryDTO](t, resp)
	require.NotNil(t, approved.DeliveryPin)
	pin := *approved.DeliveryPin
	require.GreaterOrEqual(t, pin, 1000)
	require.LessOrEqual(t, pin, 9999)

	wrong := 1000
	if pin == wrong {
		wrong = 1001
	}
	resp = srv.do(t, http.MethodPut, "/api/deliveries/"+created.ID.String()+"/verify", ownerToken, map[string]any{"pin": wrong})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "INVALID_PIN", errorCode(t, resp))

	resp = srv.do(t, http.MethodPut, "/api/deliveries/"+created.ID.String()+"/verify", ownerToken, map[string]any{"pin": pin})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Equal(t, enums.DeliveryStatusDelivered, decodeData[deliveries.DeliveryDTO](t, resp).Status)

	resp = srv.do(t, http.MethodGet, "/api/deliveries/user?guestKey=guest-abc", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	mine := decodeData[[]deliveries.DeliveryDTO](t, resp)
	require.Len(t, mine, 1)
	require.Equal(t, enums.DeliveryStatusDelivered, mine[0].Status)
}

func TestCreateDeliveryRequiresItemSnapshot(t *testing.T) {
	srv := newTestServer(t)
	_, shop := srv.seedOwnerWithShop(t)

	body := orderBody(shop.ID, "guest-snapshot")
	body["items"] = []map[string]any{{"name": "Khichuri", "quantity": 1, "price": "60"}}
	resp := srv.do(t, http.MethodPost, "/api/deliveries", "", body)
	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))
	require.Contains(t, resp.Body.String(), "image")
	require.Contains(t, resp.Body.String(), "category")
}

func TestStaffVerifyChecksShop(t *testing.T) {
	srv := newTestServer(t)
	_, shop := srv.seedShop(t, 56300, false)
	_, other := srv.seedShop(t, 56301, false)
	adminToken := srv.token(t, srv.seedUser(t, enums.UserRoleAdmin))

	resp := srv.do(t, http.MethodPost, "/api/deliveries", "", orderBody(shop.ID, "guest-hall"))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	created := decodeData[deliveries.DeliveryDTO](t, resp)

	resp = srv.do(t, http.MethodPut, "/api/deliveries/admin/"+created.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	approved := decodeData[deliveries.DeliveryDTO](t, resp)
	require.NotNil(t, approved.DeliveryPin)
	pin := *approved.DeliveryPin
	verifyPath := "/api/deliveries/" + created.ID.String() + "/verify"

	resp = srv.do(t, http.MethodPut, verifyPath, adminToken, map[string]any{"pin": pin})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))

	resp = srv.do(t, http.MethodPut, verifyPath, adminToken, map[string]any{"pin": pin, "shopId": other.ID})
	require.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())

	resp = srv.do(t, http.MethodGet, "/api/deliveries/admin/approved", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	queue := decodeData[pagination.Page[deliveries.DeliveryDTO]](t, resp)
	require.Len(t, queue.Items, 1)
	require.Equal(t, enums.DeliveryStatusApproved, queue.Items[0].Status)

	resp = srv.do(t, http.MethodPut, verifyPath, adminToken, map[string]any{"pin": pin, "shopId": shop.ID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.Equal(t, enums.DeliveryStatusDelivered, decodeData[deliveries.DeliveryDTO](t, resp).Status)
}

func TestAdminQueueSkipsSelfDeliveryShops(t *testing.T) {
	srv := newTestServer(t)
	_, own := srv.seedShop(t, 56400, true)
	_, platform := srv.seedShop(t, 56401, false)
	adminToken := srv.token(t, srv.seedUser(t, enums.UserRoleAdmin))

	resp := srv.do(t, http.MethodPost, "/api/deliveries", "", orderBody(own.ID, "guest-own"))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	mine := decodeData[deliveries.DeliveryDTO](t, resp)
	resp = srv.do(t, http.MethodPost, "/api/deliveries", "", orderBody(platform.ID, "guest-platform"))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	theirs := decodeData[deliveries.DeliveryDTO](t, resp)

	resp = srv.do(t, http.MethodGet, "/api/deliveries/admin/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	queue := decodeData[pagination.Page[deliveries.DeliveryDTO]](t, resp)
	require.Len(t, queue.Items, 1)
	require.Equal(t, theirs.ID, queue.Items[0].ID)

	resp = srv.do(t, http.MethodPut, "/api/deliveries/admin/"+mine.ID.String()+"/approve", adminToken, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeliveryRoutesEnforceRoles(t *testing.T) {
	srv := newTestServer(t)
	customer := srv.seedUser(t, enums.UserRoleUser)
	courier := srv.seedUser(t, enums.UserRoleDeliveryMan)

	resp := srv.do(t, http.MethodGet, "/api/deliveries/admin/pending", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = srv.do(t, http.MethodGet, "/api/deliveries/admin/pending", srv.token(t, customer), nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = srv.do(t, http.MethodGet, "/api/deliveries/admin/pending?sort=oldest", srv.token(t, courier), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	page := decodeData[struct {
		Items []deliveries.DeliveryDTO `json:"items"`
		Limit int                      `json:"limit"`
	}](t, resp)
	require.Empty(t, page.Items)
	require.Equal(t, 25, page.Limit)

	// An owner account without an approved shop cannot reach shop routes.
	pendingOwner := srv.seedUser(t, enums.UserRoleShopOwner)
	resp = srv.do(t, http.MethodGet, "/api/deliveries/pending", srv.token(t, pendingOwner), nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestPinLookupValidatesFormat(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/deliveries/pin/12a4", "", nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Equal(t, "VALIDATION_ERROR", errorCode(t, resp))

	resp = srv.do(t, http.MethodGet, "/api/deliveries/pin/4321", "", nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCourierOnboardingOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	applicant := srv.seedUser(t, enums.UserRoleUser)
	admin := srv.seedUser(t, enums.UserRoleAdmin)

	body := map[string]any{
		"phone":      "01733333333",
		"address":    "Azimpur",
		"workArea":   "Dhaka University",
		"age":        22,
		"profession": "Student",
	}
	resp := srv.do(t, http.MethodPost, "/api/delivery-man/request", srv.token(t, applicant), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	request := decodeData[deliverymen.RequestDTO](t, resp)

	resp = srv.do(t, http.MethodGet, "/api/delivery-man/requests", srv.token(t, applicant), nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = srv.do(t, http.MethodPut, "/api/delivery-man/requests/"+request.ID.String(), srv.token(t, admin), map[string]any{"status": "approved"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The role is reloaded per request, so the old token now carries courier rights.
	resp = srv.do(t, http.MethodGet, "/api/delivery-man/"+applicant.ID.String(), srv.token(t, applicant), nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = srv.do(t, http.MethodGet, "/api/user/user-data", srv.token(t, applicant), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), string(enums.UserRoleDeliveryMan))
}

func TestMetricsEndpointExposesRequestCounter(t *testing.T) {
	srv := newTestServer(t)
	srv.do(t, http.MethodGet, "/api/public/ping", "", nil)

	resp := srv.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.True(t, strings.Contains(resp.Body.String(), "localdrop_http_requests_total"))
}

func TestPingEchoesCaller(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, http.MethodGet, "/api/public/ping", "", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "anonymous", decodeData[map[string]any](t, resp)["caller"])

	owner, shop := srv.seedOwnerWithShop(t)
	resp = srv.do(t, http.MethodGet, "/api/public/ping", srv.token(t, owner), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeData[map[string]any](t, resp)
	require.Equal(t, owner.ID.String(), got["caller"])
	require.Equal(t, string(enums.UserRoleShopOwner), got["role"])
	require.Equal(t, shop.ID.String(), got["shopId"])
}
