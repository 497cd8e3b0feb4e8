package handlers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easypayhq/easypay/internal/application"
	"github.com/easypayhq/easypay/internal/domain/entity"
	repo "github.com/easypayhq/easypay/internal/domain/repository"
	"github.com/easypayhq/easypay/internal/infrastructure/secrets"
	"github.com/easypayhq/easypay/pkg/helpers"
	"github.com/easypayhq/easypay/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

// memAccounts is a minimal in-memory AccountRepository for handler tests.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: make(map[string]*entity.Account)}
}

func (m *memAccounts) Create(_ context.Context, a *entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.accounts[a.Username] = &cp
	return nil
}

func (m *memAccounts) GetByUsername(_ context.Context, username string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) Exists(_ context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.accounts[username]
	return ok, nil
}

func (m *memAccounts) UpdateEmail(_ context.Context, username, newEmail string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return repo.ErrNotFound
	}
	a.Email = newEmail
	return nil
}

func (m *memAccounts) UpdatePassword(_ context.Context, username, ciphertext string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return repo.ErrNotFound
	}
	a.Password = ciphertext
	return nil
}

func (m *memAccounts) UpdateProviderKey(_ context.Context, username, ciphertext string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[username]
	if !ok {
		return repo.ErrNotFound
	}
	a.ProviderKey = ciphertext
	return nil
}

func (m *memAccounts) Rename(_ context.Context, currentUsername, newUsername string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[currentUsername]
	if !ok {
		return repo.ErrNotFound
	}
	delete(m.accounts, currentUsername)
	a.Username = newUsername
	m.accounts[newUsername] = a
	return nil
}

var _ repo.AccountRepository = (*memAccounts)(nil)

// memCatalog is a minimal in-memory CatalogRepository for handler tests.
type memCatalog struct {
	mu     sync.Mutex
	nextID int64
	items  []entity.CatalogItem
}

func newMemCatalog() *memCatalog {
	return &memCatalog{nextID: 1}
}

func (m *memCatalog) Insert(_ context.Context, item *entity.CatalogItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = m.nextID
	m.nextID++
	m.items = append(m.items, *item)
	return nil
}

func (m *memCatalog) ListByOwner(_ context.Context, username string) ([]entity.CatalogItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.CatalogItem, 0)
	for i := len(m.items) - 1; i >= 0; i-- {
		if m.items[i].OwnerUsername == username {
			out = append(out, m.items[i])
		}
	}
	return out, nil
}

func (m *memCatalog) Delete(_ context.Context, id int64, ownerUsername string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id && m.items[i].OwnerUsername == ownerUsername {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

var _ repo.CatalogRepository = (*memCatalog)(nil)

var (
	handlerCipherOnce sync.Once
	handlerCipher     *secrets.Cipher
)

func testAccountService(t *testing.T) *application.AccountService {
	t.Helper()
	handlerCipherOnce.Do(func() {
		priv, pub, err := secrets.GenerateKeys(2048)
		if err != nil {
			t.Fatalf("generate test keys: %v", err)
		}
		handlerCipher = secrets.New(pub, priv)
	})
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
	return application.NewAccountService(newMemAccounts(), handlerCipher, jwt, nil, nil, nil)
}

func testRouter(h *AccountHandler) *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRegisterEndpoint(t *testing.T) {
	svc := testAccountService(t)
	h := NewAccountHandler(svc, helpers.NewLogger("test", "test"), "localhost", false)
	r := testRouter(h)

	payload := gin.H{
		"email":        "alice@example.com",
		"username":     "alice1",
		"password":     "longenoughpw",
		"provider_key": "sk_test_abc",
	}

	t.Run("creates the account", func(t *testing.T) {
		w := postJSON(t, r, "/api/register", payload)
		assert.Equal(t, http.StatusCreated, w.Code)

		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		var data struct {
			User struct {
				Email    string `json:"email"`
				Username string `json:"username"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "alice1", data.User.Username)
		assert.Equal(t, "alice@example.com", data.User.Email)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		w := postJSON(t, r, "/api/register", payload)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password rejected", func(t *testing.T) {
		bad := gin.H{"email": "b@example.com", "username": "bob1", "password": "short", "provider_key": "sk_test"}
		w := postJSON(t, r, "/api/register", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	svc := testAccountService(t)
	h := NewAccountHandler(svc, helpers.NewLogger("test", "test"), "localhost", false)
	r := testRouter(h)

	w := postJSON(t, r, "/api/register", gin.H{
		"email": "carol@example.com", "username": "carol1", "password": "carolspassword", "provider_key": "sk_test_c",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Run("sets session cookies", func(t *testing.T) {
		w := postJSON(t, r, "/api/login", gin.H{"username": "carol1", "password": "carolspassword"})
		assert.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		names := make([]string, 0, len(cookies))
		for _, c := range cookies {
			names = append(names, c.Name)
		}
		assert.Contains(t, names, "access_token")
		assert.Contains(t, names, "refresh_token")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := postJSON(t, r, "/api/login", gin.H{"username": "carol1", "password": "wrongpassword"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown user gets the same answer", func(t *testing.T) {
		w := postJSON(t, r, "/api/login", gin.H{"username": "nobody", "password": "carolspassword"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func signWebhookPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestWebhookEndpoint(t *testing.T) {
	const secret = "whsec_testsecret"
	h := NewWebhookHandler(secret, helpers.NewLogger("test", "test"))
	r := gin.New()
	r.POST("/api/webhook", h.Receive)

	send := func(t *testing.T, payload []byte, sig string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader(payload))
		req.Header.Set("Stripe-Signature", sig)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("completed checkout acknowledged", func(t *testing.T) {
		payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"username":"alice","name":"Poster"}}}}`)
		w := send(t, payload, signWebhookPayload(payload, secret, time.Now()))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unrecognized event type still acknowledged", func(t *testing.T) {
		payload := []byte(`{"id":"evt_2","type":"invoice.created","data":{"object":{}}}`)
		w := send(t, payload, signWebhookPayload(payload, secret, time.Now()))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wrong secret rejected", func(t *testing.T) {
		payload := []byte(`{"id":"evt_3","type":"checkout.session.completed","data":{"object":{}}}`)
		w := send(t, payload, signWebhookPayload(payload, "whsec_other", time.Now()))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		payload := []byte(`{}`)
		w := send(t, payload, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteItemEndpoint(t *testing.T) {
	svc := application.NewCatalogService(newMemCatalog(), helpers.NewLogger("test", "test"), nil, "")
	h := NewCatalogHandler(svc, helpers.NewLogger("test", "test"))
	r := gin.New()
	api := r.Group("/api")
	api.POST("/catalog/add", h.AddItem)
	api.POST("/catalog/delete", h.DeleteItem)

	w := postJSON(t, r, "/api/catalog/add", gin.H{
		"username": "alice1", "name": "Poster", "price": 14.5, "currency": "usd",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	type catalogData struct {
		Catalog []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"catalog"`
	}
	var created catalogData
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &created))
	require.Len(t, created.Catalog, 1)
	id := created.Catalog[0].ID

	t.Run("unknown id reports failure with the unchanged catalog", func(t *testing.T) {
		w := postJSON(t, r, "/api/catalog/delete", gin.H{"username": "alice1", "id": id + 99})
		assert.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		assert.False(t, env.Success)
		var data catalogData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		require.Len(t, data.Catalog, 1)
		assert.Equal(t, "Poster", data.Catalog[0].Name)
	})

	t.Run("matching id deletes and returns the remaining catalog", func(t *testing.T) {
		w := postJSON(t, r, "/api/catalog/delete", gin.H{"username": "alice1", "id": id})
		assert.Equal(t, http.StatusOK, w.Code)

		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		var data catalogData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Empty(t, data.Catalog)
	})
}

func TestChangePasswordEndpoint(t *testing.T) {
	svc := testAccountService(t)
	h := NewAccountHandler(svc, helpers.NewLogger("test", "test"), "localhost", false)
	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.PUT("/account/password", h.ChangePassword)

	w := postJSON(t, r, "/api/register", gin.H{
		"email": "dave@example.com", "username": "dave1", "password": "davespassword", "provider_key": "sk_test_d",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	putJSON := func(t *testing.T, body any) *httptest.ResponseRecorder {
		t.Helper()
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPut, "/api/account/password", strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("wrong current password", func(t *testing.T) {
		w := putJSON(t, gin.H{"username": "dave1", "current_password": "wrongpassword", "new_password": "freshpassword"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("updates with correct password", func(t *testing.T) {
		w := putJSON(t, gin.H{"username": "dave1", "current_password": "davespassword", "new_password": "freshpassword"})
		assert.Equal(t, http.StatusOK, w.Code)

		_, err := svc.Authenticate(context.Background(), "dave1", "freshpassword")
		assert.NoError(t, err)
	})
}
