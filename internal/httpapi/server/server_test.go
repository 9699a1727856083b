package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/BBQAnChang/SBHomework/internal/httpapi/handlers"
	"github.com/BBQAnChang/SBHomework/internal/httpapi/middleware"
	"github.com/BBQAnChang/SBHomework/pkg/api"
	"github.com/BBQAnChang/SBHomework/pkg/cache/inmemory"
	"github.com/BBQAnChang/SBHomework/pkg/config"
	"github.com/BBQAnChang/SBHomework/pkg/store"
	"github.com/BBQAnChang/SBHomework/pkg/telemetry"
	"github.com/BBQAnChang/SBHomework/pkg/types"
	"github.com/BBQAnChang/SBHomework/pkg/usermanager"
	"github.com/BBQAnChang/SBHomework/pkg/usermanager/mocks"
)

const validAPIKey = "test-key"

func echoCreate(_ context.Context, req api.Request, out interface{}) error {
	p := req.(api.CreateUser).Params
	*out.(*api.UserResponse) = api.UserResponse{UserID: p.UserID, Nickname: p.Nickname, ProfileURL: p.ProfileURL}
	return nil
}

var _ = Describe("APIServer", func() {
	var (
		ctrl    *gomock.Controller
		network *mocks.MockNetworkClient
		manager *usermanager.UserManager
		cfg     *config.AppConfig
		handler http.Handler
	)

	do := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	authed := map[string]string{middleware.APIKeyHeader: validAPIKey}

	BeforeEach(func() {
		ctrl = gomock.NewController(GinkgoT())
		network = mocks.NewMockNetworkClient(ctrl)

		c, err := inmemory.NewCache(&inmemory.Config{})
		Expect(err).NotTo(HaveOccurred())

		manager, err = usermanager.New(network, store.New(c),
			usermanager.WithQueueInterval(5*time.Millisecond),
			usermanager.WithBulkCreateDelay(time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		cfg = &config.AppConfig{
			App: config.App{Name: "usermanager", Version: "test"},
			APIServer: config.APIServer{
				Auth: config.Auth{Enabled: true, APIKeys: []string{validAPIKey}},
				CORS: config.CORS{
					AllowedOrigins: []string{"https://console.example.com"},
					AllowedMethods: []string{"GET", "POST"},
					AllowedHeaders: []string{"Content-Type", "X-API-Key"},
				},
			},
		}
		handler = NewAPIServer(cfg, manager).Handler()
	})

	AfterEach(func() {
		Expect(manager.Close()).To(Succeed())
	})

	Describe("authentication", func() {
		It("rejects requests without an API key", func() {
			rec := do(http.MethodGet, "/api/v1/status", nil, nil)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring("API key required"))
		})

		It("rejects an unknown API key", func() {
			rec := do(http.MethodGet, "/api/v1/status", nil, map[string]string{middleware.APIKeyHeader: "nope"})
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("serves the status with a valid key and tags the request", func() {
			rec := do(http.MethodGet, "/api/v1/status", nil, authed)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get(middleware.RequestIDHeader)).NotTo(BeEmpty())
			Expect(rec.Body.String()).To(ContainSubstring(`"status":"running"`))
		})
	})

	Describe("metrics endpoint", func() {
		It("is not exposed when telemetry is disabled", func() {
			rec := do(http.MethodGet, "/metrics", nil, nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("serves prometheus metrics without an API key when enabled", func() {
			cfg.Telemetry = telemetry.Config{Enabled: true, Exporter: telemetry.ExporterPrometheus}
			handler = NewAPIServer(cfg, manager).Handler()

			rec := do(http.MethodGet, "/metrics", nil, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("go_goroutines"))
		})
	})

	Describe("CORS", func() {
		It("answers preflight requests for allowed origins", func() {
			rec := do(http.MethodOptions, "/api/v1/users", nil, map[string]string{"Origin": "https://console.example.com"})
			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://console.example.com"))
			Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(Equal("GET, POST"))
		})

		It("does not echo unknown origins", func() {
			rec := do(http.MethodOptions, "/api/v1/users", nil, map[string]string{"Origin": "https://evil.example.com"})
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
		})
	})

	Context("before the application is initialized", func() {
		It("reports the service as unavailable", func() {
			rec := do(http.MethodGet, "/api/v1/users/u1", nil, authed)
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		})
	})

	Context("after initialization", func() {
		BeforeEach(func() {
			network.EXPECT().SetCredentials("APP", "token")
			Expect(manager.InitApplication(context.Background(), "APP", "token")).To(Succeed())
		})

		It("creates a user and serves it from the cache", func() {
			network.EXPECT().
				Request(gomock.Any(), gomock.AssignableToTypeOf(api.CreateUser{}), gomock.Any()).
				DoAndReturn(echoCreate).
				Times(1)

			rec := do(http.MethodPost, "/api/v1/users",
				types.UserCreationParams{UserID: "u1", Nickname: "alice"}, authed)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = do(http.MethodGet, "/api/v1/users/u1", nil, authed)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var user types.User
			Expect(json.Unmarshal(rec.Body.Bytes(), &user)).To(Succeed())
			Expect(user).To(Equal(types.User{UserID: "u1", Nickname: "alice"}))

			rec = do(http.MethodGet, "/api/v1/cache/users", nil, authed)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var cached handlers.UsersResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &cached)).To(Succeed())
			Expect(cached.Users).To(ConsistOf(types.User{UserID: "u1", Nickname: "alice"}))
		})

		It("reports bulk overflow as a multi-status", func() {
			params := make([]types.UserCreationParams, 0, usermanager.DefaultMaxCreateCount+1)
			for i := 0; i <= usermanager.DefaultMaxCreateCount; i++ {
				params = append(params, types.UserCreationParams{UserID: string(rune('a' + i)), Nickname: "n"})
			}
			network.EXPECT().
				Request(gomock.Any(), gomock.AssignableToTypeOf(api.CreateUser{}), gomock.Any()).
				DoAndReturn(echoCreate).
				Times(usermanager.DefaultMaxCreateCount)

			rec := do(http.MethodPost, "/api/v1/users/bulk", params, authed)
			Expect(rec.Code).To(Equal(http.StatusMultiStatus))

			var resp handlers.BulkCreateResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Created).To(HaveLen(usermanager.DefaultMaxCreateCount))
			Expect(resp.Failed).To(ConsistOf(params[usermanager.DefaultMaxCreateCount].ToUser()))
		})

		It("updates a user", func() {
			network.EXPECT().
				Request(gomock.Any(), gomock.AssignableToTypeOf(api.UpdateUser{}), gomock.Any()).
				DoAndReturn(func(_ context.Context, req api.Request, out interface{}) error {
					p := req.(api.UpdateUser).Params
					Expect(p.UserID).To(Equal("u1"))
					*out.(*api.UserResponse) = api.UserResponse{UserID: p.UserID, Nickname: *p.Nickname}
					return nil
				})

			rec := do(http.MethodPut, "/api/v1/users/u1", map[string]string{"nickname": "renamed"}, authed)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"nickname":"renamed"`))
		})

		It("rejects an empty nickname filter without a remote call", func() {
			rec := do(http.MethodGet, "/api/v1/users", nil, authed)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("maps a remote not-found error to 404", func() {
			network.EXPECT().
				Request(gomock.Any(), api.GetUser{UserID: "ghost"}, gomock.Any()).
				Return(&api.ErrorResponse{Message: "User not found.", Code: 400201, Err: true})

			rec := do(http.MethodGet, "/api/v1/users/ghost", nil, authed)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("lists users by nickname", func() {
			network.EXPECT().
				Request(gomock.Any(), api.ListUsers{Nickname: "alice", Limit: usermanager.DefaultPageLimit}, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ api.Request, out interface{}) error {
					*out.(*api.UsersResponse) = api.UsersResponse{Users: []api.UserResponse{{UserID: "u1", Nickname: "alice"}}}
					return nil
				})

			rec := do(http.MethodGet, "/api/v1/users?nickname=alice", nil, authed)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp handlers.UsersResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Users).To(Equal([]types.User{{UserID: "u1", Nickname: "alice"}}))
		})

		It("rejects malformed bodies", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/users", bytes.NewBufferString("{"))
			req.Header.Set(middleware.APIKeyHeader, validAPIKey)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
